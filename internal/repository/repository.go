package repository

import (
	"context"
	"strings"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("conflict: duplicate key")
	// ErrStorageUnavailable is returned by every accessor until the storage
	// connection has been established, and whenever the storage stops
	// answering. Callers may retry.
	ErrStorageUnavailable = RepositoryError("storage unavailable")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// CoachFilter narrows the coach directory. Empty fields match everything.
type CoachFilter struct {
	Fields   []string // coach must offer all of them
	Province string
	Search   string // see SearchTokens
}

type TrainingFilter struct {
	User      string
	Coach     string
	Completed *bool
	Since     *time.Time // date >= Since
}

type BlockFilter struct {
	IDs   []string
	Coach string
}

type PlanFilter struct {
	Coach string
}

type MessageFilter struct {
	From string
	To   string
	Type domain.MessageType
}

// UserRepository addresses users by email only.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmails(ctx context.Context, emails []string) ([]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	FindCoaches(ctx context.Context, filter CoachFilter) ([]domain.User, error)
	Update(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, email string) (bool, error)
}

// TrainingRepository stores trainings with their block ids unresolved.
type TrainingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Training, error)
	Find(ctx context.Context, filter TrainingFilter) ([]domain.Training, error)
	// TraineesOf returns the distinct trainee emails that have at least one
	// training with the given coach.
	TraineesOf(ctx context.Context, coach string) ([]string, error)
	Upsert(ctx context.Context, input domain.TrainingInput) (*domain.Training, error)
	Delete(ctx context.Context, id string) (bool, error)
	// CompleteByBlockSet marks completed the training whose block list equals
	// blockIDs as a set. Nothing is modified unless exactly one training matches.
	CompleteByBlockSet(ctx context.Context, blockIDs []string) (matched int64, modified int64, err error)
}

type TrainingBlockRepository interface {
	Find(ctx context.Context, filter BlockFilter) ([]domain.TrainingBlock, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.TrainingBlock, error)
	Upsert(ctx context.Context, block domain.TrainingBlock) (*domain.TrainingBlock, error)
	// SetResult replaces the recorded samples of a block. ErrNotFound when the
	// block does not exist.
	SetResult(ctx context.Context, id string, result []domain.ResultSample) error
}

type PlanRepository interface {
	Find(ctx context.Context, filter PlanFilter) ([]domain.Plan, error)
	Upsert(ctx context.Context, plan domain.Plan) (*domain.Plan, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	Find(ctx context.Context, filter MessageFilter) ([]domain.Message, error)
}

// TxRunner runs fn atomically when the backend supports multi-document
// transactions, and plainly otherwise.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Readiness reports whether the storage connection step has completed.
type Readiness interface {
	Ready() bool
}

// Repositories bundles every accessor of one storage backend.
type Repositories struct {
	Users     UserRepository
	Trainings TrainingRepository
	Blocks    TrainingBlockRepository
	Plans     PlanRepository
	Messages  MessageRepository
	Tx        TxRunner
	Health    Readiness
}

// SearchTokens splits a free-text coach search into lower-cased tokens. A
// coach matches when every token is a substring of at least one of its
// district, name, last name or email.
func SearchTokens(search string) []string {
	fields := strings.Fields(strings.ToLower(search))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// SearchableCoachFields lists the user fields free-text search looks at.
var SearchableCoachFields = []string{"district", "name", "lastName", "email"}

// UniqueIDs drops duplicates while keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
