package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.uber.org/zap"
)

// ResultItem carries the recorded samples of one training block.
type ResultItem struct {
	ID     string                `json:"_id" binding:"required"`
	Result []domain.ResultSample `json:"result"`
}

// BlockOutcome reports the result write of one block.
type BlockOutcome struct {
	ID      string `json:"_id"`
	Written bool   `json:"written"`
	Error   string `json:"error,omitempty"`

	err error
}

// Submission is the report of a result submission. It is returned on failure
// too, so callers can see which block results were written anyway.
type Submission struct {
	Blocks []BlockOutcome `json:"blocks"`
	// MatchedTrainings counts trainings whose block list equals the submitted
	// set. Zero when the completion step was not reached.
	MatchedTrainings int64 `json:"matchedTrainings"`
	Completed        bool  `json:"completed"`
	Transactional    bool  `json:"transactional"`
}

func (s *Submission) failedBlocks() int {
	n := 0
	for _, b := range s.Blocks {
		if !b.Written {
			n++
		}
	}
	return n
}

// firstError is the storage error of the first failed block write, so the
// transaction runner can inspect the driver error behind a failed submission.
func (s *Submission) firstError() error {
	for _, b := range s.Blocks {
		if b.err != nil {
			return b.err
		}
	}
	return nil
}

// ResultCoordinator writes the results of a performed training and marks the
// training completed. By default the block writes run concurrently and are
// not rolled back when the completion step fails.
type ResultCoordinator struct {
	blocks        repository.TrainingBlockRepository
	trainings     repository.TrainingRepository
	tx            repository.TxRunner
	transactional bool
	log           *zap.Logger
}

// NewResultCoordinator builds a coordinator. With transactional set the steps
// run sequentially inside tx and a failed completion discards the block writes.
func NewResultCoordinator(repos repository.Repositories, transactional bool, log *zap.Logger) *ResultCoordinator {
	return &ResultCoordinator{
		blocks:        repos.Blocks,
		trainings:     repos.Trainings,
		tx:            repos.Tx,
		transactional: transactional && repos.Tx != nil,
		log:           log,
	}
}

// Submit stores every item's samples on its block, then flips completed on
// the one training whose block list is exactly the submitted set. Any
// failure is reported as ErrPartialFailure together with the report.
func (c *ResultCoordinator) Submit(ctx context.Context, items []ResultItem) (*Submission, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var (
		report *Submission
		err    error
	)
	if c.transactional {
		err = c.tx.RunInTransaction(ctx, func(ctx context.Context) error {
			report, err = c.submit(ctx, items, c.writeSequential)
			return err
		})
	} else {
		report, err = c.submit(ctx, items, c.writeConcurrent)
	}
	if report == nil {
		return nil, err
	}
	report.Transactional = c.transactional

	if err != nil {
		// a failed commit leaves nothing completed either
		report.Completed = false
		if !errors.Is(err, ErrPartialFailure) {
			err = fmt.Errorf("%w: %w", ErrPartialFailure, err)
		}

		c.log.Warn("result submission not completed",
			zap.Int("blocks", len(items)),
			zap.Int("failed_blocks", report.failedBlocks()),
			zap.Int64("matched_trainings", report.MatchedTrainings),
			zap.Bool("transactional", c.transactional),
			zap.Error(err))
	}
	return report, err
}

type blockWriter func(ctx context.Context, items []ResultItem) []BlockOutcome

func (c *ResultCoordinator) submit(ctx context.Context, items []ResultItem, write blockWriter) (*Submission, error) {
	report := &Submission{Blocks: write(ctx, items)}
	if n := report.failedBlocks(); n > 0 {
		return report, fmt.Errorf("%w: %d of %d block results not written: %w",
			ErrPartialFailure, n, len(items), report.firstError())
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrPartialFailure, err)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	matched, modified, err := c.trainings.CompleteByBlockSet(ctx, ids)
	report.MatchedTrainings = matched
	switch {
	case err != nil:
		return report, fmt.Errorf("%w: complete training: %w", ErrPartialFailure, err)
	case matched != 1:
		return report, fmt.Errorf("%w: submitted blocks match %d trainings, want exactly one", ErrPartialFailure, matched)
	case modified != 1:
		return report, fmt.Errorf("%w: training already completed", ErrPartialFailure)
	}
	report.Completed = true
	return report, nil
}

// writeConcurrent dispatches every block write at once and waits for all.
func (c *ResultCoordinator) writeConcurrent(ctx context.Context, items []ResultItem) []BlockOutcome {
	outcomes := make([]BlockOutcome, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item ResultItem) {
			defer wg.Done()
			outcomes[i] = c.writeOne(ctx, item)
		}(i, item)
	}
	wg.Wait()
	return outcomes
}

// writeSequential is used inside a transaction, whose session context cannot
// be shared between goroutines. It stops at the first failure.
func (c *ResultCoordinator) writeSequential(ctx context.Context, items []ResultItem) []BlockOutcome {
	outcomes := make([]BlockOutcome, len(items))
	failed := false
	for i, item := range items {
		if failed {
			outcomes[i] = BlockOutcome{ID: item.ID, Error: "skipped"}
			continue
		}
		outcomes[i] = c.writeOne(ctx, item)
		failed = !outcomes[i].Written
	}
	return outcomes
}

func (c *ResultCoordinator) writeOne(ctx context.Context, item ResultItem) BlockOutcome {
	result := item.Result
	if result == nil {
		result = []domain.ResultSample{}
	}
	err := c.blocks.SetResult(ctx, item.ID, result)
	switch {
	case err == nil:
		return BlockOutcome{ID: item.ID, Written: true}
	case errors.Is(err, repository.ErrNotFound):
		return BlockOutcome{ID: item.ID, Error: "block not found", err: err}
	default:
		return BlockOutcome{ID: item.ID, Error: err.Error(), err: err}
	}
}

func validateItems(items []ResultItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no results submitted", ErrValidation)
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("%w: block id is required", ErrValidation)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: block %s submitted twice", ErrValidation, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
