package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vanshika/claimstream/internal/claims"
	"github.com/vanshika/claimstream/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		count       = flag.Int("count", 1000, "number of claims to generate")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "data", "directory to write claims.ndjson")
		writeStdout = flag.Bool("stdout", false, "write claims to stdout instead of a file")
	)
	flag.Parse()

	if *count <= 0 {
		fmt.Fprintf(os.Stderr, "count must be positive, got %d\n", *count)
		os.Exit(1)
	}

	gen := generator.New(generator.Config{Seed: *seed})
	records := make([]claims.Record, *count)
	var denied int
	for i := range records {
		records[i] = gen.Generate()
		if records[i].Denied() {
			denied++
		}
	}

	if *writeStdout {
		if err := generator.WriteNDJSON(os.Stdout, records); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write claims to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := generator.WriteDataset(records, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d claims (%d denied) into %s\n", len(records), denied, path)
}
