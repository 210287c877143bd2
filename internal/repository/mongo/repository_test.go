package mongo_test

import (
	"testing"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	mongostore "github.com/T-Watch/T-Watch-Backend/internal/repository/mongo"
	"github.com/T-Watch/T-Watch-Backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRepos(t *testing.T) repository.Repositories {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return mongostore.NewStoreFromDatabase(db, zap.NewNop()).Repositories()
}

func TestUserRepository_EmailIsUnique(t *testing.T) {
	repos := setupRepos(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, repos.Users.Create(ctx, &domain.User{Email: "a@x.com", Type: domain.UserTypeUser, Name: "Ana"}))
	err := repos.Users.Create(ctx, &domain.User{Email: "a@x.com", Type: domain.UserTypeCoach, Name: "Other"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := repos.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	_, err = repos.Users.GetByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_FindCoaches(t *testing.T) {
	repos := setupRepos(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, u := range []domain.User{
		{Email: "marta@x.com", Type: domain.UserTypeCoach, Name: "Marta", District: "Chamberi", Province: "Madrid", Fields: []string{"running", "cycling"}},
		{Email: "luis@x.com", Type: domain.UserTypeCoach, Name: "Luis", District: "Gracia", Province: "Barcelona", Fields: []string{"running"}},
		{Email: "pablo@x.com", Type: domain.UserTypeUser, Name: "Pablo", District: "Chamberi"},
	} {
		u := u
		require.NoError(t, repos.Users.Create(ctx, &u))
	}

	got, err := repos.Users.FindCoaches(ctx, repository.CoachFilter{Search: "chamb MAR"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "marta@x.com", got[0].Email)

	got, err = repos.Users.FindCoaches(ctx, repository.CoachFilter{Fields: []string{"running"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repos.Users.FindCoaches(ctx, repository.CoachFilter{Search: "a.b"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTrainingRepository_UpsertAuditFields(t *testing.T) {
	repos := setupRepos(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := repos.Trainings.Upsert(ctx, domain.TrainingInput{Type: "run", Coach: "c", User: "u"})
	require.NoError(t, err)
	assert.False(t, created.Completed)
	assert.Equal(t, []string{}, created.TrainingBlocks)

	time.Sleep(5 * time.Millisecond)
	updated, err := repos.Trainings.Upsert(ctx, domain.TrainingInput{ID: created.ID, Type: "swim", Coach: "c", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.RegistryDate.Equal(updated.RegistryDate))
	assert.True(t, updated.LastModified.After(created.LastModified))
	assert.Equal(t, "swim", updated.Type)
}

func TestTrainingRepository_CompleteByBlockSet(t *testing.T) {
	repos := setupRepos(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	single, err := repos.Trainings.Upsert(ctx, domain.TrainingInput{Type: "run", Coach: "c", User: "u", TrainingBlocks: []string{"b1", "b2"}})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := repos.Trainings.Upsert(ctx, domain.TrainingInput{Type: "run", Coach: "c", User: "u", TrainingBlocks: []string{"b3", "b4"}})
		require.NoError(t, err)
	}
	// a superset must not match
	_, err = repos.Trainings.Upsert(ctx, domain.TrainingInput{Type: "run", Coach: "c", User: "u", TrainingBlocks: []string{"b1", "b2", "b5"}})
	require.NoError(t, err)

	matched, modified, err := repos.Trainings.CompleteByBlockSet(ctx, []string{"b3", "b4"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), matched)
	assert.Equal(t, int64(0), modified)

	matched, modified, err = repos.Trainings.CompleteByBlockSet(ctx, []string{"b2", "b1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)
	assert.Equal(t, int64(1), modified)

	got, err := repos.Trainings.GetByID(ctx, single.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	_, modified, err = repos.Trainings.CompleteByBlockSet(ctx, []string{"b1", "b2"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), modified)
}

func TestTrainingBlockRepository_SetResult(t *testing.T) {
	repos := setupRepos(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	assert.ErrorIs(t, repos.Blocks.SetResult(ctx, "missing", nil), repository.ErrNotFound)

	block, err := repos.Blocks.Upsert(ctx, domain.TrainingBlock{Coach: "c", Result: []domain.ResultSample{}})
	require.NoError(t, err)

	samples := []domain.ResultSample{{Date: time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC), HR: 150}}
	require.NoError(t, repos.Blocks.SetResult(ctx, block.ID, samples))

	got, err := repos.Blocks.FindByIDs(ctx, []string{block.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Result, 1)
	assert.Equal(t, 150.0, got[0].Result[0].HR)
}
