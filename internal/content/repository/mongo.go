package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/scholarfolio/backend/internal/content"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection. Records keep the
// driver's ObjectID as _id so documents written by earlier tooling load as is.
type MongoRepo[T content.Record] struct {
	col       *mongo.Collection
	sortField string
}

// NewMongoRepo wraps col and ensures the {userId, <sort field>} index used
// by List.
func NewMongoRepo[T content.Record](ctx context.Context, col *mongo.Collection) (*MongoRepo[T], error) {
	var zero T
	field := zero.SortField()
	idx := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: field, Value: -1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("ensure index on %s: %w", col.Name(), err)
	}
	return &MongoRepo[T]{col: col, sortField: field}, nil
}

func ownedBy(owner string, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "userId": owner}
}

func (m *MongoRepo[T]) Create(ctx context.Context, rec T) error {
	if _, err := m.col.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert into %s: %w", m.col.Name(), err)
	}
	return nil
}

func (m *MongoRepo[T]) Get(ctx context.Context, owner string, id primitive.ObjectID) (T, error) {
	var rec T
	err := m.col.FindOne(ctx, ownedBy(owner, id)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("find in %s: %w", m.col.Name(), err)
	}
	return rec, nil
}

func (m *MongoRepo[T]) List(ctx context.Context, owner string) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: m.sortField, Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"userId": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.col.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.col.Name(), err)
	}
	return out, nil
}

func (m *MongoRepo[T]) Replace(ctx context.Context, owner string, id primitive.ObjectID, rec T) error {
	res, err := m.col.ReplaceOne(ctx, ownedBy(owner, id), rec)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", m.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo[T]) Delete(ctx context.Context, owner string, id primitive.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, ownedBy(owner, id))
	if err != nil {
		return fmt.Errorf("delete from %s: %w", m.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the connection behind the collection.
func (m *MongoRepo[T]) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}
