package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// BatchRunner fans one brief across many submissions with a bounded worker
// pool. Each submission gets its own run ID and timeout; one failure never
// stops the batch.
type BatchRunner struct {
	proc    *Processor
	workers int
	timeout time.Duration
}

type BatchOption func(*BatchRunner)

func WithWorkers(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithRunTimeout(d time.Duration) BatchOption {
	return func(b *BatchRunner) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func NewBatchRunner(proc *Processor, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		proc:    proc,
		workers: 4,
		timeout: 3 * time.Minute,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// BatchResult pairs one submission with its report or error.
type BatchResult struct {
	SubmissionPath string
	Report         Report
	Err            error
}

// Run grades every submission and returns results in input order.
func (b *BatchRunner) Run(ctx context.Context, base Request, submissions []string) []BatchResult {
	results := make([]BatchResult, len(submissions))

	type job struct {
		idx  int
		path string
	}
	ch := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range ch {
				req := base
				req.SubmissionPath = j.path

				runCtx, cancel := context.WithTimeout(ctx, b.timeout)
				rep, err := b.proc.Run(runCtx, req)
				cancel()

				results[j.idx] = BatchResult{SubmissionPath: j.path, Report: rep, Err: err}
				if err != nil {
					b.proc.Logger.Error("batch.run.failed", "worker_id", workerID, "path", j.path, "error", err)
				} else {
					b.proc.Logger.Info("batch.run.ok", "worker_id", workerID, "path", j.path, "state", rep.State)
				}
			}
		}(i + 1)
	}

	for i, path := range submissions {
		ch <- job{idx: i, path: path}
	}
	close(ch)
	wg.Wait()
	return results
}

// Reports returns the successful reports from a batch, in order.
func Reports(results []BatchResult) []Report {
	out := make([]Report, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Report)
		}
	}
	return out
}

// ScanSubmissions walks root and collects submission files by extension.
// Hidden files and directories are skipped.
func ScanSubmissions(root string, includeExts []string) ([]string, error) {
	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		exts = map[string]struct{}{"txt": {}, "md": {}, "text": {}}
	} else {
		for _, e := range includeExts {
			e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
			if e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		if _, ok := exts[ext]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
