package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/romident"
)

type report struct {
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
	romident.Result
}

func main() {
	romPath := flag.String("rom", "", "path to a cartridge image; further images may follow as arguments")
	asJSON := flag.Bool("json", false, "print one JSON object per image")
	strict := flag.Bool("strict", false, "exit with status 1 unless every header checksum verifies")
	flag.Parse()

	paths := flag.Args()
	if *romPath != "" {
		paths = append([]string{*romPath}, paths...)
	}
	if len(paths) == 0 {
		log.Fatal("-rom is required")
	}

	enc := json.NewEncoder(os.Stdout)
	failed := false
	for _, p := range paths {
		r, err := romident.IdentifyFile(p)
		rep := report{Path: p, Result: r}
		if err != nil {
			rep.Error = err.Error()
			failed = true
		} else if *strict && !r.Verified {
			failed = true
		}

		if *asJSON {
			if err := enc.Encode(rep); err != nil {
				log.Fatalf("encode: %v", err)
			}
			continue
		}
		switch {
		case errors.Is(err, romident.ErrUnknown):
			fmt.Printf("%s: unknown image\n", p)
		case err != nil:
			fmt.Printf("%s: %v\n", p, err)
		default:
			fmt.Printf("%s: system=%s title=%q checksum=%08x verified=%t %s\n",
				p, r.System, r.Title, r.Checksum, r.Verified, r.Detail)
		}
	}
	if failed {
		os.Exit(1)
	}
}
