// Package executor runs batches of independent work items against the
// database with bounded parallelism. Items in a batch must not write-lock
// the same table range; the partitioner and discovery guarantee that
// before a batch is submitted.
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/minus34/gnaf-loader-go/database"
	"github.com/minus34/gnaf-loader-go/discovery"
)

// Result is the outcome of one work item.
type Result struct {
	Item string
	Err  error
}

// BatchResult collects per-item outcomes. A batch is best effort: one
// item's failure never cancels its siblings.
type BatchResult struct {
	Results []Result
}

func (b *BatchResult) Succeeded() int {
	return len(b.Results) - b.Failed()
}

func (b *BatchResult) Failed() int {
	failed := 0
	for _, r := range b.Results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}

// Errors returns the per-item failures, if any.
func (b *BatchResult) Errors() []error {
	var errs []error
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// RunSQL executes a batch of independent SQL statements concurrently, up
// to workers at a time. Each statement runs on its own pooled connection
// in autocommit mode and commits independently. Failures are logged as
// warnings and collected; the call itself only errors when the worker pool
// can't be created.
func RunSQL(ctx context.Context, db database.Execer, stmts []string, workers int) (*BatchResult, error) {
	if len(stmts) == 0 {
		return &BatchResult{}, nil
	}
	if workers > len(stmts) {
		workers = len(stmts)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create worker pool")
	}
	defer pool.Release()

	batch := &BatchResult{Results: make([]Result, len(stmts))}

	var wg sync.WaitGroup
	for i, stmt := range stmts {
		i, stmt := i, stmt
		wg.Add(1)

		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					batch.Results[i] = Result{Item: stmt, Err: fmt.Errorf("panic: %v", r)}
				}
			}()

			_, execErr := db.Exec(ctx, stmt)
			if execErr != nil {
				log.Warnf("SQL failed : %v : %s", execErr, truncate(stmt, 120))
			}
			batch.Results[i] = Result{Item: stmt, Err: execErr}
		})
		if submitErr != nil {
			wg.Done()
			batch.Results[i] = Result{Item: stmt, Err: submitErr}
		}
	}
	wg.Wait()

	return batch, nil
}

// ShapefileImporter is the external geometry import collaborator. Any
// result other than "SUCCESS" is a recoverable per-file warning.
type ShapefileImporter interface {
	Import(ctx context.Context, item discovery.ShapefileItem) string
}

// RunShapefileCreates imports replace-mode shapefiles concurrently. Each
// targets a distinct new table, so they can't contend.
func RunShapefileCreates(ctx context.Context, imp ShapefileImporter, items []discovery.ShapefileItem, workers int) (*BatchResult, error) {
	if len(items) == 0 {
		return &BatchResult{}, nil
	}
	if workers > len(items) {
		workers = len(items)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create worker pool")
	}
	defer pool.Release()

	batch := &BatchResult{Results: make([]Result, len(items))}

	var wg sync.WaitGroup
	for i, item := range items {
		i, item := i, item
		wg.Add(1)

		submitErr := pool.Submit(func() {
			defer wg.Done()
			batch.Results[i] = importResult(imp.Import(ctx, item), item)
		})
		if submitErr != nil {
			wg.Done()
			batch.Results[i] = Result{Item: item.FilePath, Err: submitErr}
		}
	}
	wg.Wait()

	return batch, nil
}

// RunShapefileAppends imports append-mode shapefiles strictly one at a
// time. Parallel INSERT transactions into the same destination table can
// deadlock the database, so these are never run concurrently.
func RunShapefileAppends(ctx context.Context, imp ShapefileImporter, items []discovery.ShapefileItem) *BatchResult {
	batch := &BatchResult{Results: make([]Result, len(items))}

	for i, item := range items {
		batch.Results[i] = importResult(imp.Import(ctx, item), item)
	}

	return batch
}

func importResult(result string, item discovery.ShapefileItem) Result {
	if result != "SUCCESS" {
		log.Warn(result)
		return Result{Item: item.FilePath, Err: errors.New(result)}
	}
	return Result{Item: item.FilePath}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
