package mongo

import (
	"context"
	"regexp"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "Users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	store *Store
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(store *Store) repository.UserRepository {
	return &mongoUserRepository{store: store}
}

// Create inserts a new user. The unique email index turns a second signup
// with the same address into repository.ErrConflict.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	c, err := r.store.collection(userCollectionName)
	if err != nil {
		return err
	}

	user.ID = primitive.NewObjectID().Hex()
	user.RegistryDate = r.store.now().UTC()

	_, err = c.InsertOne(ctx, user)
	return translate(err)
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	c, err := r.store.collection(userCollectionName)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := c.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByEmails retrieves every user whose email is in the list.
func (r *mongoUserRepository) GetByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	if len(emails) == 0 {
		return []domain.User{}, nil
	}
	c, err := r.store.collection(userCollectionName)
	if err != nil {
		return nil, err
	}
	return findAll[domain.User](ctx, c, bson.M{"email": bson.M{"$in": emails}}, sortByEmail())
}

func (r *mongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	c, err := r.store.collection(userCollectionName)
	if err != nil {
		return nil, err
	}
	return findAll[domain.User](ctx, c, bson.M{}, sortByEmail())
}

// FindCoaches searches the coach directory.
func (r *mongoUserRepository) FindCoaches(ctx context.Context, filter repository.CoachFilter) ([]domain.User, error) {
	c, err := r.store.collection(userCollectionName)
	if err != nil {
		return nil, err
	}

	query := bson.M{"type": domain.UserTypeCoach}
	if len(filter.Fields) > 0 {
		query["fields"] = bson.M{"$all": filter.Fields}
	}
	if filter.Province != "" {
		query["province"] = filter.Province
	}
	if tokens := repository.SearchTokens(filter.Search); len(tokens) > 0 {
		// every token must hit at least one searchable field
		and := make(bson.A, 0, len(tokens))
		for _, tok := range tokens {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(tok), Options: "i"}
			or := make(bson.A, 0, len(repository.SearchableCoachFields))
			for _, field := range repository.SearchableCoachFields {
				or = append(or, bson.M{field: re})
			}
			and = append(and, bson.M{"$or": or})
		}
		query["$and"] = and
	}

	return findAll[domain.User](ctx, c, query, sortByEmail())
}

// Update applies a partial patch to the user with patch.Email and returns
// the updated document.
func (r *mongoUserRepository) Update(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	set := userPatchSet(patch)
	if len(set) == 0 {
		return r.GetByEmail(ctx, patch.Email)
	}

	c, err := r.store.collection(userCollectionName)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user domain.User
	err = c.FindOneAndUpdate(ctx, bson.M{"email": patch.Email}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Delete removes the user with the given email. It reports false when no
// such user exists.
func (r *mongoUserRepository) Delete(ctx context.Context, email string) (bool, error) {
	c, err := r.store.collection(userCollectionName)
	if err != nil {
		return false, err
	}
	result, err := c.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, translate(err)
	}
	return result.DeletedCount > 0, nil
}

func userPatchSet(p domain.UserPatch) bson.M {
	set := bson.M{}
	put := func(key string, isSet bool, v any) {
		if isSet {
			set[key] = v
		}
	}
	put("type", p.Type != nil, deref(p.Type))
	put("password", p.Password != nil, deref(p.Password))
	put("name", p.Name != nil, deref(p.Name))
	put("lastName", p.LastName != nil, deref(p.LastName))
	put("birthday", p.Birthday != nil, p.Birthday)
	put("address", p.Address != nil, deref(p.Address))
	put("phoneNumber", p.PhoneNumber != nil, deref(p.PhoneNumber))
	put("gender", p.Gender != nil, deref(p.Gender))
	put("photo", p.Photo != nil, deref(p.Photo))
	put("weight", p.Weight != nil, deref(p.Weight))
	put("height", p.Height != nil, deref(p.Height))
	put("diseases", p.Diseases != nil, deref(p.Diseases))
	put("allergies", p.Allergies != nil, deref(p.Allergies))
	put("surgeries", p.Surgeries != nil, deref(p.Surgeries))
	put("plan", p.Plan != nil, p.Plan)
	put("testResults", p.TestResults != nil, p.TestResults)
	put("fields", p.Fields != nil, p.Fields)
	put("province", p.Province != nil, deref(p.Province))
	put("district", p.District != nil, deref(p.District))
	return set
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func sortByEmail() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "email", Value: 1}})
}

// findAll runs a query and decodes every document. It never returns a nil
// slice on success.
func findAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}
