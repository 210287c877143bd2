package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_UnavailableUntilConnected(t *testing.T) {
	store := NewStore("mongodb://localhost:1", "twatch", zap.NewNop())
	repos := store.Repositories()
	ctx := context.Background()

	assert.False(t, store.Ready())
	assert.False(t, repos.Health.Ready())

	_, err := repos.Users.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	_, err = repos.Trainings.Upsert(ctx, domain.TrainingInput{Type: "run", Coach: "c", User: "u"})
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	_, _, err = repos.Trainings.CompleteByBlockSet(ctx, []string{"b1"})
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	err = repos.Blocks.SetResult(ctx, "b1", nil)
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	_, err = repos.Plans.Find(ctx, repository.PlanFilter{})
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	err = repos.Messages.Create(ctx, &domain.Message{})
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	err = repos.Tx.RunInTransaction(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
}

func TestStore_ConnectAsyncStopsWithContext(t *testing.T) {
	store := NewStore("mongodb://localhost:1/?serverSelectionTimeoutMS=50&connectTimeoutMS=50", "twatch", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	store.ConnectAsync(ctx, 10*time.Millisecond)
	cancel()
	assert.False(t, store.Ready())
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), repository.ErrNotFound)
	assert.ErrorIs(t, translate(mongo.ErrClientDisconnected), repository.ErrStorageUnavailable)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), repository.ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestToPatch(t *testing.T) {
	completed := true
	patch, err := toPatch(domain.TrainingInput{
		ID: "abc", Type: "run", Coach: "c", User: "u", Completed: &completed,
	})
	require.NoError(t, err)
	assert.NotContains(t, patch, fieldID)
	assert.Equal(t, "run", patch["type"])
	assert.Equal(t, true, patch["completed"])

	patch, err = toPatch(domain.TrainingInput{Type: "run"})
	require.NoError(t, err)
	assert.NotContains(t, patch, "completed")

	patch, err = toPatch(domain.Plan{ID: "p", Coach: "c", RegistryDate: time.Now()})
	require.NoError(t, err)
	assert.NotContains(t, patch, fieldRegistryDate)
	assert.NotContains(t, patch, fieldLastModified)
}
