package service

import (
	"context"
	"testing"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/repository/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testClock is a settable time source for the in-memory store.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestRepos(t *testing.T) (repository.Repositories, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)}
	return memory.NewStore(memory.WithClock(clock.now)).Repositories(), clock
}

func seedBlock(t *testing.T, repos repository.Repositories, coach string) domain.TrainingBlock {
	t.Helper()
	b, err := repos.Blocks.Upsert(context.Background(), domain.TrainingBlock{Coach: coach, Result: []domain.ResultSample{}})
	require.NoError(t, err)
	return *b
}

func seedTraining(t *testing.T, repos repository.Repositories, blockIDs ...string) domain.Training {
	t.Helper()
	tr, err := repos.Trainings.Upsert(context.Background(), domain.TrainingInput{
		Type: "run", Coach: "coach@x.com", User: "a@x.com", TrainingBlocks: blockIDs,
	})
	require.NoError(t, err)
	return *tr
}

// mockBlockRepository lets tests fail individual block operations.
type mockBlockRepository struct {
	mock.Mock
}

func (m *mockBlockRepository) Find(ctx context.Context, filter repository.BlockFilter) ([]domain.TrainingBlock, error) {
	args := m.Called(ctx, filter)
	blocks, _ := args.Get(0).([]domain.TrainingBlock)
	return blocks, args.Error(1)
}

func (m *mockBlockRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.TrainingBlock, error) {
	args := m.Called(ctx, ids)
	blocks, _ := args.Get(0).([]domain.TrainingBlock)
	return blocks, args.Error(1)
}

func (m *mockBlockRepository) Upsert(ctx context.Context, block domain.TrainingBlock) (*domain.TrainingBlock, error) {
	args := m.Called(ctx, block)
	b, _ := args.Get(0).(*domain.TrainingBlock)
	return b, args.Error(1)
}

func (m *mockBlockRepository) SetResult(ctx context.Context, id string, result []domain.ResultSample) error {
	return m.Called(ctx, id, result).Error(0)
}

type mockPhotoStorage struct {
	mock.Mock
}

func (m *mockPhotoStorage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockPhotoStorage) PresignDownload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockPhotoStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockPhotoStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
