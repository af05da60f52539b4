package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/apexsim/apexsim-golang/internal/ai"
	"github.com/apexsim/apexsim-golang/internal/config"
	"github.com/apexsim/apexsim-golang/internal/logger"
	"github.com/apexsim/apexsim-golang/internal/wpimport"
)

func main() {
	concurrency := flag.Int("concurrency", wpimport.DefaultConcurrency, "max variable products transformed at once")
	noAI := flag.Bool("no-ai", false, "disable AI-assisted attribute inference even if a key is configured")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input.csv> [output.csv]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)
	outputPath := flag.Arg(1)
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath)
	}

	cfg := config.Load()
	logger.Initialize(cfg.Env)
	log := logger.Log
	defer log.Sync()

	ctx := context.Background()

	var inferrer wpimport.Inferrer
	if *noAI {
		log.Info("ai inference disabled by flag")
	} else if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, running without ai inference")
	} else {
		svc, err := ai.NewService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Warn("failed to initialize ai service, continuing without it", zap.Error(err))
		} else {
			defer svc.Close()
			inferrer = svc
		}
	}

	t := wpimport.New(inferrer, cfg.Bundle, log)
	t.Concurrency = *concurrency

	fmt.Printf("Transforming %s -> %s\n", inputPath, outputPath)
	stats, err := t.Run(ctx, inputPath, outputPath)
	if err != nil {
		log.Error("transformation failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(stats.Summary())
	fmt.Printf("Wrote %s\n", outputPath)
}

// defaultOutputPath inserts "_transformed" before the extension:
// products.csv -> products_transformed.csv.
func defaultOutputPath(input string) string {
	if idx := strings.LastIndex(input, "."); idx > 0 {
		return input[:idx] + "_transformed" + input[idx:]
	}
	return input + "_transformed"
}
