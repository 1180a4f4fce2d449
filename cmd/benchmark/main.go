// ABOUTME: Command-line benchmark runner for RAGAS tests
// ABOUTME: Runs the scenarios against the configured OpenAI models and writes JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harper/docchat/benchmarks/ragas"
	"github.com/harper/docchat/internal/config"
)

func main() {
	testID := flag.String("test", "", "Run specific test (1a, 2a, 3a). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found (continuing anyway)", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}
	if err := cfg.RequireOpenAIKey(); err != nil {
		log.Fatal("OPENAI_API_KEY environment variable is required for benchmarks")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("========================================")
	fmt.Println("docchat RAGAS Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner, err := ragas.NewOpenAIBenchmarkRunner(cfg.ClientConfig(), *verbose)
	if err != nil {
		log.Fatal("Failed to create benchmark runner", "err", err)
	}

	var results []ragas.TestResult

	if *testID == "" {
		fmt.Println("Running all RAGAS benchmark tests...")
		fmt.Println()

		results, err = runner.RunAllTests(ctx)
		if err != nil {
			log.Fatal("Benchmark failed", "err", err)
		}
	} else {
		scenario, ok := ragas.GetTest(*testID)
		if !ok {
			log.Fatal("Unknown test ID (valid options: 1a, 2a, 3a)", "test", *testID)
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)

		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			log.Fatal("Test failed", "err", err)
		}
		results = []ragas.TestResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	summary := ragas.Summarize(results)
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", summary.TotalTests)
	fmt.Printf("Passed: %d\n", summary.Passed)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatal("Failed to export results", "err", err)
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
