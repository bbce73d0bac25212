package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cfliu/paycheck/internal/model"
)

// mockValidator implements Validator
type mockValidator struct {
	failOn map[string]bool
}

func (v *mockValidator) ValidateFile(ctx context.Context, path string) (*model.Report, error) {
	if v.failOn[path] {
		return nil, fmt.Errorf("boom: %s", path)
	}
	return &model.Report{
		DocumentID: strings.TrimSuffix(filepath.Base(path), ".json"),
		Status:     model.StatusPass,
	}, nil
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	b := NewBatchProcessor(&mockValidator{}, 3)

	paths := []string{"a.json", "b.json", "c.json", "d.json"}
	results := b.ProcessPaths(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}

	// Input order is preserved regardless of which worker finished first
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d: path = %s, want %s", i, r.Path, paths[i])
		}
		if r.Error != nil {
			t.Errorf("result %d: unexpected error: %v", i, r.Error)
		}
	}
}

func TestBatchProcessor_OneFailureDoesNotAbort(t *testing.T) {
	b := NewBatchProcessor(&mockValidator{failOn: map[string]bool{"b.json": true}}, 2)

	results := b.ProcessPaths(context.Background(), []string{"a.json", "b.json", "c.json"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[1].Error == nil {
		t.Error("expected error for b.json")
	}
	if results[0].Error != nil || results[2].Error != nil {
		t.Error("other documents must be unaffected")
	}
}

func TestBatchProcessor_LargeBatchCompletes(t *testing.T) {
	b := NewBatchProcessor(&mockValidator{}, 2)

	paths := make([]string, 50)
	for i := range paths {
		paths[i] = fmt.Sprintf("doc-%02d.json", i)
	}

	done := make(chan []*ValidateResult, 1)
	go func() { done <- b.ProcessPaths(context.Background(), paths) }()

	select {
	case results := <-done:
		if len(results) != len(paths) {
			t.Fatalf("expected %d results, got %d", len(paths), len(results))
		}
		for i, r := range results {
			if r.Path != paths[i] {
				t.Errorf("result %d: path = %s, want %s", i, r.Path, paths[i])
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch stalled with more documents than the worker queue holds")
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	b := NewBatchProcessor(&mockValidator{}, 2)
	results := b.ProcessPaths(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "docs.txt")

	content := `# progress payment documents
doc1.json

doc2.json
doc1.json
doc3.json
`
	if err := os.WriteFile(manifest, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(manifest)
	if err != nil {
		t.Fatalf("ReadPathsFromFile: %v", err)
	}

	want := []string{"doc1.json", "doc2.json", "doc3.json"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %d: %v", len(want), len(paths), paths)
	}
	for i, p := range paths {
		if p != want[i] {
			t.Errorf("path %d = %s, want %s", i, p, want[i])
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadPathsFromFile("/nonexistent/docs.txt"); err == nil {
		t.Error("expected an error")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "docs.txt")
	if err := os.WriteFile(manifest, []byte("x.json\ny.json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBatchProcessor(&mockValidator{}, 2)
	results, err := b.ProcessFile(context.Background(), manifest)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
