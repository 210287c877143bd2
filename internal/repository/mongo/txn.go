package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// codeIllegalOperation is returned by a standalone mongod for any command
// carrying a transaction number.
const codeIllegalOperation = 20

// RunInTransaction executes fn inside a multi-document transaction. A
// standalone server rejects the first write of fn; fn is then run again
// without a transaction.
//
// Inside a transaction fn receives a mongo.SessionContext, which must not be
// shared between goroutines.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	db := s.db.Load()
	if db == nil {
		return repository.ErrStorageUnavailable
	}
	return s.withFallback(ctx, func(ctx context.Context) error {
		return runInSession(ctx, db.Client(), fn)
	}, fn)
}

func (s *Store) withFallback(ctx context.Context, tx, fn func(ctx context.Context) error) error {
	err := tx(ctx)
	if err == nil || !transactionsNotSupported(err) {
		return err
	}
	s.log.Warn("deployment has no transactions, writing without one", zap.String("database", s.name), zap.Error(err))
	return fn(ctx)
}

func runInSession(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", translate(err))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func transactionsNotSupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeIllegalOperation {
		return true
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
