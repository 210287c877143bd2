package mongo

import (
	"context"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollectionName = "Messages"

type mongoMessageRepository struct {
	store *Store
}

func NewMongoMessageRepository(store *Store) repository.MessageRepository {
	return &mongoMessageRepository{store: store}
}

// Create inserts a message. Messages are never updated afterwards.
func (r *mongoMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	c, err := r.store.collection(messageCollectionName)
	if err != nil {
		return err
	}
	msg.ID = primitive.NewObjectID().Hex()
	_, err = c.InsertOne(ctx, msg)
	return translate(err)
}

// Find lists messages in the order they were sent.
func (r *mongoMessageRepository) Find(ctx context.Context, filter repository.MessageFilter) ([]domain.Message, error) {
	c, err := r.store.collection(messageCollectionName)
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	if filter.From != "" {
		query["from"] = filter.From
	}
	if filter.To != "" {
		query["to"] = filter.To
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[domain.Message](ctx, c, query, findOptions)
}
