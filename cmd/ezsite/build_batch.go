package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-ezsite"
	"github.com/alnah/go-ezsite/internal/fileutil"
)

// Sentinel errors for batch operations.
var (
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteHTML    = errors.New("failed to write HTML file")
)

// PageConverter is the interface for the conversion service.
type PageConverter interface {
	Convert(ctx context.Context, input ezsite.Input) (*ezsite.Result, error)
}

// Compile-time interface implementation check.
var _ PageConverter = (*ezsite.Converter)(nil)

// BuildResult holds the outcome of a single page build.
type BuildResult struct {
	InputPath   string
	OutputPath  string
	Err         error
	Diagnostics int
	Duration    time.Duration
}

// buildBatch builds files concurrently. The converter is shared by all
// workers.
func buildBatch(ctx context.Context, conv PageConverter, files []FileToBuild, workers int, logger *zap.Logger) []BuildResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := workers
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]BuildResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = BuildResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = buildFile(ctx, conv, files[idx], logger)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// buildFile builds a single page and returns the result.
func buildFile(ctx context.Context, conv PageConverter, f FileToBuild, logger *zap.Logger) BuildResult {
	start := time.Now()
	result := BuildResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	res, err := conv.Convert(ctx, ezsite.Input{
		Markdown: string(content),
		Path:     f.InputPath,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if res.Report != nil {
		result.Diagnostics = len(res.Report.Diagnostics)
		for _, d := range res.Report.Diagnostics {
			logger.Warn("Page diagnostic", zap.String("path", f.InputPath), zap.Error(d))
		}
	}

	if err := fileutil.WriteFileAtomic(f.OutputPath, string(res.HTML)); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteHTML, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed builds.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed builds.
func countResults(results []BuildResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs build results using the provided writers.
func printResultsWithWriter(results []BuildResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v, %d diagnostics)\n",
				r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond), r.Diagnostics)
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
