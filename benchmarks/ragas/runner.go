// ABOUTME: Test runner for RAGAS benchmarks - executes scenarios and collects results
// ABOUTME: Each scenario runs in a fresh session: index the corpus, ask every question, score the last answer

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/llm"
)

// BenchmarkRunner executes RAGAS benchmark tests
type BenchmarkRunner struct {
	embedder  core.Embedder
	generator core.Generator
	metrics   *MetricsCalculator
	out       io.Writer
	verbose   bool
}

// NewBenchmarkRunner creates a runner over the given providers
func NewBenchmarkRunner(embedder core.Embedder, generator core.Generator, out io.Writer, verbose bool) *BenchmarkRunner {
	if out == nil {
		out = io.Discard
	}
	return &BenchmarkRunner{
		embedder:  embedder,
		generator: generator,
		metrics:   NewMetricsCalculator(),
		out:       out,
		verbose:   verbose,
	}
}

// NewOpenAIBenchmarkRunner creates a runner backed by the OpenAI client
func NewOpenAIBenchmarkRunner(cfg *llm.ClientConfig, verbose bool) (*BenchmarkRunner, error) {
	client, err := llm.NewOpenAIClientWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	return NewBenchmarkRunner(client, client, os.Stdout, verbose), nil
}

func (r *BenchmarkRunner) logf(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.out, format, args...)
	}
}

// newSession builds an isolated session sized for the scenario
func (r *BenchmarkRunner) newSession(scenario TestScenario) (*core.Session, error) {
	opts := []core.SessionOption{core.WithSessionID("bench-" + scenario.ID)}
	if scenario.ChunkSize > 0 {
		opts = append(opts, core.WithChunking(scenario.ChunkSize, scenario.Overlap))
	}
	if scenario.TopK > 0 {
		opts = append(opts, core.WithTopK(scenario.TopK))
	}
	return core.NewSession(r.embedder, r.generator, opts...)
}

// RunTest executes a single benchmark test
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	r.logf("\n========================================\n")
	r.logf("RUNNING: %s\n", scenario.Name)
	r.logf("========================================\n")
	r.logf("Description: %s\n\n", scenario.Description)

	session, err := r.newSession(scenario)
	if err != nil {
		return TestResult{}, fmt.Errorf("setup failed: %w", err)
	}

	stats, err := session.Process(ctx, core.NormalizeText(scenario.Corpus...))
	if err != nil {
		return TestResult{}, fmt.Errorf("indexing failed: %w", err)
	}
	r.logf("✓ Indexed %d chunk(s)\n", stats.Chunks)

	var finalResponse string
	var retrievedContext []string

	for _, turn := range scenario.Turns {
		r.logf("[Turn %d] User: %s\n", turn.TurnNumber, turn.Question)

		result, err := session.Ask(ctx, turn.Question)
		if err != nil {
			return TestResult{}, fmt.Errorf("turn %d failed: %w", turn.TurnNumber, err)
		}

		r.logf("[Turn %d] AI: %s\n\n", turn.TurnNumber, preview(result.Answer, 150))

		if turn.TurnNumber == scenario.GroundTruth.FinalQueryTurn {
			finalResponse = result.Answer
			retrievedContext = make([]string, len(result.RetrievedChunks))
			for i, sc := range result.RetrievedChunks {
				retrievedContext[i] = sc.Chunk.Text
			}
		}
	}

	result := r.metrics.EvaluateTest(scenario, finalResponse, retrievedContext)

	r.logf("\n========================================\n")
	r.logf("RESULTS: %s\n", scenario.Name)
	r.logf("========================================\n")
	r.logf("Faithfulness: %.2f\n", result.FaithfulnessScore)
	r.logf("Context Recall: %.2f\n", result.ContextRecallScore)
	r.logf("Overall Score: %.2f\n", result.OverallScore)
	r.logf("Status: %s\n", result.Status)
	r.logf("========================================\n\n")

	return result, nil
}

// RunAllTests executes all benchmark tests
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	scenarios := GetAllTests()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("test %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Summary is the exported benchmark report
type Summary struct {
	Timestamp  string       `json:"timestamp"`
	TotalTests int          `json:"total_tests"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Results    []TestResult `json:"results"`
}

// Summarize counts passes and failures
func Summarize(results []TestResult) Summary {
	s := Summary{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}
	for _, result := range results {
		if result.Status == "PASS" {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// ExportResults exports test results to JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}
