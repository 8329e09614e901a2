// Command asm assembles a dubcc16 source file into the flat big-endian
// byte stream the simulator loads directly as code memory.
package main

import (
	"flag"
	"log"
	"os"

	"dubcc16/assembler"
)

func main() {
	var (
		out     = flag.String("o", "a.out", "output code file")
		mapPath = flag.String("map", "", "optional debug map file (label/const symbol table)")
		verbose = flag.Bool("v", false, "trace each source line as it's assembled")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: asm [-o out] [-map out.map] [-v] <source.asm>")
	}

	src, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("asm: %v", err)
	}
	defer src.Close()

	info := assembler.New()
	info.Verbose = *verbose

	result, err := info.Assemble(src)
	if err != nil {
		log.Fatalf("asm: %v", err)
	}

	if err := os.WriteFile(*out, result.Code, 0o644); err != nil {
		log.Fatalf("asm: writing %s: %v", *out, err)
	}
	log.Printf("asm: wrote %d bytes to %s", len(result.Code), *out)

	if *mapPath != "" {
		mf, err := os.Create(*mapPath)
		if err != nil {
			log.Fatalf("asm: %v", err)
		}
		defer mf.Close()
		if err := result.WriteMapFile(mf); err != nil {
			log.Fatalf("asm: writing map file: %v", err)
		}
		log.Printf("asm: wrote map file %s", *mapPath)
	}
}
