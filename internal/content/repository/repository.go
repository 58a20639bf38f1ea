package repository

import (
	"context"
	"errors"

	"github.com/scholarfolio/backend/internal/content"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository persists records of one content type. Every lookup is scoped
// to an owner; a record owned by someone else is reported as ErrNotFound.
type Repository[T content.Record] interface {
	Create(ctx context.Context, rec T) error
	Get(ctx context.Context, owner string, id primitive.ObjectID) (T, error)
	List(ctx context.Context, owner string) ([]T, error)
	Replace(ctx context.Context, owner string, id primitive.ObjectID, rec T) error
	Delete(ctx context.Context, owner string, id primitive.ObjectID) error
}
