package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Audit field names shared by every upserted collection.
const (
	fieldID           = "_id"
	fieldRegistryDate = "registryDate"
	fieldLastModified = "lastModified"
)

// upsertAudited inserts or replaces the document with the given id (a new
// ObjectID hex when empty). Every field of doc is written except the id and
// the audit fields; lastModified is stamped on every call, registryDate and
// the entries of defaults missing from doc only when the document is created.
// The post-write document is decoded into out.
func upsertAudited(ctx context.Context, s *Store, collName, id string, doc any, defaults bson.M, out any) error {
	c, err := s.collection(collName)
	if err != nil {
		return err
	}

	set, err := toPatch(doc)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	set[fieldLastModified] = now

	onInsert := bson.M{fieldRegistryDate: now}
	for k, v := range defaults {
		if _, ok := set[k]; !ok {
			onInsert[k] = v
		}
	}

	if id == "" {
		id = primitive.NewObjectID().Hex()
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	return translate(c.FindOneAndUpdate(ctx, bson.M{fieldID: id}, update, opts).Decode(out))
}

// toPatch flattens doc into its top-level bson fields, dropping the ones an
// upsert must never overwrite.
func toPatch(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("empty upsert document")
	}
	delete(m, fieldID)
	delete(m, fieldRegistryDate)
	delete(m, fieldLastModified)
	return m, nil
}
