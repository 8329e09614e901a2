// Command objdump decodes a flat dubcc16 code file word by word and
// pretty-prints each instruction's fields, the way the teacher's objdump
// read an object file and handed it to pp.Println -- except here there is
// no object-file header to parse, just raw code memory.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/k0kubun/pp/v3"

	"dubcc16/isa"
)

type line struct {
	Addr int
	Raw  uint16
	isa.Word
	Valid bool
}

func main() {
	var r io.Reader = os.Stdin
	if len(os.Args) == 2 {
		raw, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		log.Fatal(err)
	}

	printer := pp.New()
	printer.SetColoringEnabled(isTerminal())

	for addr := 0; addr+2 <= len(raw); addr += 2 {
		word := uint16(raw[addr])<<8 | uint16(raw[addr+1])
		w := isa.Decode(word)
		l := line{
			Addr:  addr / 2,
			Raw:   word,
			Word:  w,
			Valid: isa.Valid(w.Opcode, w.Mode),
		}
		fmt.Printf("%04x: ", l.Addr)
		printer.Println(l)
	}
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	return err == nil && (fi.Mode()&os.ModeCharDevice) != 0
}
