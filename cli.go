package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ocupoint/linksim/pkg/dfe"
	"github.com/ocupoint/linksim/pkg/pipeline"
	"github.com/ocupoint/linksim/report"
)

// runCLI executes one pipeline pass and prints/saves the result: load
// config, run, print results, optionally save.
func runCLI(configFile, outputFile, dfeAddr string) {
	cfg := pipeline.DefaultConfig()

	if configFile != "" {
		fmt.Printf(">>> Loading config from %s\n", configFile)
		data, err := os.ReadFile(configFile)
		if err != nil {
			log.Fatalf("failed to read config file: %v", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("failed to parse config file: %v", err)
		}
	}

	var runner dfe.Runner
	if dfeAddr != "" {
		fmt.Printf(">>> Using remote DFE/CDR at %s\n", dfeAddr)
		runner = dfe.NewRemoteClient(dfeAddr, cfg.DFEConfig(cfg.DerivedTiming()))
	}

	fmt.Println("--- link simulator run start ---")
	result, err := pipeline.Run(cfg, runner)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	report.PrintSummary(os.Stdout, result)

	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			log.Fatalf("failed to create output file: %v", err)
		}
		defer f.Close()

		if err := report.WriteResult(f, result); err != nil {
			log.Fatalf("failed to write parquet output: %v", err)
		}
		fmt.Printf(">>> wrote waveform data to %s\n", outputFile)

		metaFilename := outputFile + ".json"
		metaBytes, err := json.MarshalIndent(map[string]interface{}{
			"run_id": result.RunID,
			"config": result.Config,
			"timing": result.Timing,
		}, "", "  ")
		if err == nil {
			os.WriteFile(metaFilename, metaBytes, 0644)
			fmt.Printf(">>> metadata saved to %s\n", metaFilename)
		}
	}
}
