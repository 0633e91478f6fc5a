package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pokerphase/internal/model"
)

// MongoStore keeps one document per room in the rooms collection, keyed by
// room code.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a mongo-backed room store.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("rooms"),
	}
}

func (s *MongoStore) Get(ctx context.Context, code string) (*model.Room, error) {
	var room model.Room
	err := s.collection.FindOne(ctx, bson.M{"code": code}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *MongoStore) Put(ctx context.Context, code string, room *model.Room) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"code": code}, room, opts)
	return err
}

func (s *MongoStore) Delete(ctx context.Context, code string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"code": code})
	return err
}
