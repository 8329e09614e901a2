package assembler

import (
	"fmt"
	"io"
	"sort"
)

// WriteMapFile emits a debug-only, human-readable symbol table: one
// "name = 0xADDR" line per label, in address order, followed by one line
// per .const binding. This adapts the teacher's DULF object-file idea
// (a header plus a binary symbol table alongside the code) down to
// exactly the part a flat §6.1 byte stream can't carry: label and const
// bindings, with no section/relocation machinery, since this toolchain
// has no linker to resolve relocations against.
func (r *Result) WriteMapFile(w io.Writer) error {
	names := make([]string, 0, len(r.Labels))
	for name := range r.Labels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return r.Labels[names[i]] < r.Labels[names[j]] })

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s = 0x%04x\n", name, r.Labels[name]); err != nil {
			return err
		}
	}

	constNames := make([]string, 0, len(r.Consts))
	for name := range r.Consts {
		constNames = append(constNames, name)
	}
	sort.Strings(constNames)
	for _, name := range constNames {
		if _, err := fmt.Fprintf(w, "%s := %d\n", name, r.Consts[name]); err != nil {
			return err
		}
	}
	return nil
}
