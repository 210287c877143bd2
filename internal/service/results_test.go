package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func samples(hr float64) []domain.ResultSample {
	return []domain.ResultSample{{Date: time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC), HR: hr}}
}

func items(ids ...string) []ResultItem {
	out := make([]ResultItem, len(ids))
	for i, id := range ids {
		out[i] = ResultItem{ID: id, Result: samples(float64(120 + i))}
	}
	return out
}

func completed(t *testing.T, repos repository.Repositories, id string) bool {
	t.Helper()
	tr, err := repos.Trainings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return tr.Completed
}

func storedResult(t *testing.T, repos repository.Repositories, id string) []domain.ResultSample {
	t.Helper()
	blocks, err := repos.Blocks.FindByIDs(context.Background(), []string{id})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	return blocks[0].Result
}

func TestResultCoordinator_CompletesSingleMatch(t *testing.T) {
	repos, _ := newTestRepos(t)
	coordinator := NewResultCoordinator(repos, false, zap.NewNop())

	b1 := seedBlock(t, repos, "c@x.com")
	b2 := seedBlock(t, repos, "c@x.com")
	tr := seedTraining(t, repos, b1.ID, b2.ID)

	report, err := coordinator.Submit(context.Background(), items(b2.ID, b1.ID))
	require.NoError(t, err)
	assert.True(t, report.Completed)
	assert.Equal(t, int64(1), report.MatchedTrainings)
	assert.True(t, completed(t, repos, tr.ID))
	assert.Equal(t, samples(120), storedResult(t, repos, b2.ID))
	assert.Equal(t, samples(121), storedResult(t, repos, b1.ID))
}

// Block results are written even when the completion step finds no single
// training to complete, and no training changes.
func TestResultCoordinator_NoSingleMatch(t *testing.T) {
	tests := []struct {
		name      string
		trainings int
		wantMatch int64
	}{
		{"zero trainings match", 0, 0},
		{"two trainings match", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, _ := newTestRepos(t)
			coordinator := NewResultCoordinator(repos, false, zap.NewNop())

			b1 := seedBlock(t, repos, "c@x.com")
			b2 := seedBlock(t, repos, "c@x.com")
			other := seedTraining(t, repos, b1.ID)
			var matching []domain.Training
			for i := 0; i < tt.trainings; i++ {
				matching = append(matching, seedTraining(t, repos, b1.ID, b2.ID))
			}

			report, err := coordinator.Submit(context.Background(), items(b1.ID, b2.ID))
			assert.ErrorIs(t, err, ErrPartialFailure)
			require.NotNil(t, report)
			assert.False(t, report.Completed)
			assert.Equal(t, tt.wantMatch, report.MatchedTrainings)

			assert.False(t, completed(t, repos, other.ID))
			for _, m := range matching {
				assert.False(t, completed(t, repos, m.ID))
			}
			assert.Equal(t, samples(120), storedResult(t, repos, b1.ID))
			assert.Equal(t, samples(121), storedResult(t, repos, b2.ID))
		})
	}
}

func TestResultCoordinator_RepeatedBlockInTraining(t *testing.T) {
	repos, _ := newTestRepos(t)
	b1 := seedBlock(t, repos, "c@x.com")
	b2 := seedBlock(t, repos, "c@x.com")
	intervals := seedTraining(t, repos, b1.ID, b2.ID, b1.ID)

	report, err := NewResultCoordinator(repos, false, zap.NewNop()).
		Submit(context.Background(), items(b1.ID, b2.ID))
	require.NoError(t, err)
	assert.True(t, report.Completed)
	assert.Equal(t, int64(1), report.MatchedTrainings)
	assert.True(t, completed(t, repos, intervals.ID))
}

func TestResultCoordinator_AlreadyCompleted(t *testing.T) {
	repos, _ := newTestRepos(t)
	coordinator := NewResultCoordinator(repos, false, zap.NewNop())

	b1 := seedBlock(t, repos, "c@x.com")
	seedTraining(t, repos, b1.ID)

	_, err := coordinator.Submit(context.Background(), items(b1.ID))
	require.NoError(t, err)

	report, err := coordinator.Submit(context.Background(), items(b1.ID))
	assert.ErrorIs(t, err, ErrPartialFailure)
	assert.Equal(t, int64(1), report.MatchedTrainings)
	assert.False(t, report.Completed)
}

func TestResultCoordinator_BlockFailureSkipsCompletion(t *testing.T) {
	repos, _ := newTestRepos(t)
	b1 := seedBlock(t, repos, "c@x.com")
	tr := seedTraining(t, repos, b1.ID, "b-missing")

	report, err := NewResultCoordinator(repos, false, zap.NewNop()).
		Submit(context.Background(), items(b1.ID, "b-missing"))
	assert.ErrorIs(t, err, ErrPartialFailure)
	require.NotNil(t, report)
	assert.True(t, report.Blocks[0].Written)
	assert.False(t, report.Blocks[1].Written)
	assert.Equal(t, "block not found", report.Blocks[1].Error)
	assert.False(t, completed(t, repos, tr.ID))
	assert.Equal(t, samples(120), storedResult(t, repos, b1.ID))
}

func TestResultCoordinator_StorageFailureOnOneBlock(t *testing.T) {
	repos, _ := newTestRepos(t)
	tr := seedTraining(t, repos, "b1", "b2")

	blocks := new(mockBlockRepository)
	blocks.On("SetResult", mock.Anything, "b1", mock.Anything).Return(nil)
	blocks.On("SetResult", mock.Anything, "b2", mock.Anything).Return(repository.ErrStorageUnavailable)
	repos.Blocks = blocks

	report, err := NewResultCoordinator(repos, false, zap.NewNop()).
		Submit(context.Background(), items("b1", "b2"))
	assert.ErrorIs(t, err, ErrPartialFailure)
	// the storage error stays inspectable behind the partial failure
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	require.Len(t, report.Blocks, 2)
	assert.True(t, report.Blocks[0].Written)
	assert.Empty(t, report.Blocks[0].Error)
	assert.False(t, report.Blocks[1].Written)
	assert.Equal(t, repository.ErrStorageUnavailable.Error(), report.Blocks[1].Error)
	assert.False(t, completed(t, repos, tr.ID))
	blocks.AssertNumberOfCalls(t, "SetResult", 2)
}

func TestResultCoordinator_CancelledBeforeCompletion(t *testing.T) {
	repos, _ := newTestRepos(t)
	b1 := seedBlock(t, repos, "c@x.com")
	tr := seedTraining(t, repos, b1.ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResultCoordinator(repos, false, zap.NewNop()).Submit(ctx, items(b1.ID))
	assert.ErrorIs(t, err, ErrPartialFailure)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, completed(t, repos, tr.ID))
}

func TestResultCoordinator_Validation(t *testing.T) {
	repos, _ := newTestRepos(t)
	coordinator := NewResultCoordinator(repos, false, zap.NewNop())

	for name, in := range map[string][]ResultItem{
		"empty":     nil,
		"no id":     {{Result: samples(1)}},
		"duplicate": items("b1", "b1"),
	} {
		report, err := coordinator.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation, name)
		assert.Nil(t, report, name)
	}
}

// recordingTx runs fn once and remembers that it was asked to.
type recordingTx struct {
	calls int
}

func (r *recordingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

func TestResultCoordinator_Transactional(t *testing.T) {
	repos, _ := newTestRepos(t)
	tx := &recordingTx{}
	repos.Tx = tx

	b1 := seedBlock(t, repos, "c@x.com")
	b2 := seedBlock(t, repos, "c@x.com")
	tr := seedTraining(t, repos, b1.ID, b2.ID)

	report, err := NewResultCoordinator(repos, true, zap.NewNop()).
		Submit(context.Background(), items(b1.ID, b2.ID))
	require.NoError(t, err)
	assert.True(t, report.Transactional)
	assert.True(t, report.Completed)
	assert.Equal(t, 1, tx.calls)
	assert.True(t, completed(t, repos, tr.ID))
}

func TestResultCoordinator_TransactionalStopsAtFirstFailure(t *testing.T) {
	repos, _ := newTestRepos(t)
	repos.Tx = &recordingTx{}

	blocks := new(mockBlockRepository)
	errWriteConflict := errors.New("write conflict")
	blocks.On("SetResult", mock.Anything, "b1", mock.Anything).Return(errWriteConflict)
	repos.Blocks = blocks

	report, err := NewResultCoordinator(repos, true, zap.NewNop()).
		Submit(context.Background(), items("b1", "b2"))
	assert.ErrorIs(t, err, ErrPartialFailure)
	assert.Equal(t, "skipped", report.Blocks[1].Error)
	assert.ErrorIs(t, err, errWriteConflict)
	blocks.AssertNotCalled(t, "SetResult", mock.Anything, "b2", mock.Anything)
}
