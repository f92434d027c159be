// Package taskid hands out human-readable sequential task identifiers
// (TSK001, TSK002, ...) backed by a single counter row.
package taskid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Prefix is prepended to every generated identifier.
const Prefix = "TSK"

const (
	defaultMaxAttempts = 10
	defaultBackoff     = 5 * time.Millisecond
)

var errConflict = errors.New("task counter changed concurrently")

// Format renders n as Prefix followed by at least three digits.
func Format(n int64) string {
	return fmt.Sprintf("%s%03d", Prefix, n)
}

// Options tunes the retry loop.
type Options struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Generator increments the counter with a compare-and-set inside a
// transaction. A lost race rolls back and retries the whole
// read-modify-write, so concurrent callers (in this process or another
// instance sharing the database) never observe the same number.
type Generator struct {
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration

	// beforeWrite runs between the read and the conditional write.
	beforeWrite func(tx *gorm.DB)
}

// NewGenerator returns a Generator over db.
func NewGenerator(db *gorm.DB, opts Options) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	} else if opts.Backoff == 0 {
		opts.Backoff = defaultBackoff
	}
	return &Generator{db: db, maxAttempts: opts.MaxAttempts, backoff: opts.Backoff}
}

// Next reserves the next number and returns its formatted identifier.
func (g *Generator) Next(ctx context.Context) (string, error) {
	n, err := g.NextNumber(ctx)
	if err != nil {
		return "", err
	}
	return Format(n), nil
}

// NextNumber reserves the next number.
func (g *Generator) NextNumber(ctx context.Context) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		var next int64
		err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			next, err = g.increment(tx)
			return err
		})
		if err == nil {
			return next, nil
		}
		if !retryable(err) {
			return 0, apperrors.Transient("Task ID generation failed, please retry", err)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return 0, apperrors.Transient("Task ID generation cancelled", ctx.Err())
		case <-time.After(time.Duration(attempt) * g.backoff):
		}
	}
	return 0, apperrors.Transient(
		"Task ID generation is busy, please retry",
		fmt.Errorf("giving up after %d attempts: %w", g.maxAttempts, lastErr),
	)
}

func (g *Generator) increment(tx *gorm.DB) (int64, error) {
	// A missing counter counts as zero.
	seed := models.TaskCounter{Name: models.TaskCounterKey, LastTaskNumber: 0}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("seeding task counter: %w", err)
	}

	var counter models.TaskCounter
	if err := tx.Where("name = ?", models.TaskCounterKey).First(&counter).Error; err != nil {
		return 0, fmt.Errorf("reading task counter: %w", err)
	}

	if g.beforeWrite != nil {
		g.beforeWrite(tx)
	}

	next := counter.LastTaskNumber + 1
	res := tx.Model(&models.TaskCounter{}).
		Where("name = ? AND last_task_number = ?", models.TaskCounterKey, counter.LastTaskNumber).
		Update("last_task_number", next)
	if res.Error != nil {
		return 0, fmt.Errorf("writing task counter: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return 0, errConflict
	}
	return next, nil
}

// retryable reports whether err is a lost race rather than a store fault.
func retryable(err error) bool {
	if errors.Is(err, errConflict) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked")
}
