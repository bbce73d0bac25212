package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cfliu/paycheck/internal/model"
)

// Validator validates one document file and produces a report
type Validator interface {
	ValidateFile(ctx context.Context, path string) (*model.Report, error)
}

// ValidateJob validates a single document file
type ValidateJob struct {
	Index     int // Position in the input list, for ordered output
	Path      string
	Validator Validator
}

// Execute runs the validation
func (j *ValidateJob) Execute(ctx context.Context) Result {
	report, err := j.Validator.ValidateFile(ctx, j.Path)
	return &ValidateResult{
		Index:  j.Index,
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// ValidateResult is the outcome of a document validation job
type ValidateResult struct {
	Index  int
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the job error, if any
func (r *ValidateResult) GetError() error {
	return r.Error
}

// BatchProcessor validates many document files concurrently. One bad
// record never aborts the batch: each failure is carried in its result.
type BatchProcessor struct {
	validator   Validator
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(validator Validator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
	}
}

// ProcessPaths validates the given document files concurrently and
// returns the results in input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ValidateResult {
	if len(paths) == 0 {
		return []*ValidateResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit from a separate goroutine: the queue and result channels
	// are bounded, so Wait must already be draining for batches larger
	// than the channel capacity to make progress.
	go func() {
		for i, path := range paths {
			pool.Submit(&ValidateJob{
				Index:     i,
				Path:      path,
				Validator: b.validator,
			})
		}
		pool.Done()
	}()

	raw := pool.Wait()

	results := make([]*ValidateResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, r.(*ValidateResult))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	return results
}

// ProcessFile reads document paths from a manifest file and validates
// them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, manifestPath string) ([]*ValidateResult, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file, one per line.
// Empty lines and # comments are skipped; duplicates are dropped.
func ReadPathsFromFile(manifestPath string) ([]string, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
