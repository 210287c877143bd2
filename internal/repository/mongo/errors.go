package mongo

import (
	"errors"
	"fmt"

	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// translate maps driver errors onto the repository error taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %v", repository.ErrStorageUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, mongo.ErrClientDisconnected) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var selErr topology.ServerSelectionError
	return errors.As(err, &selErr)
}
