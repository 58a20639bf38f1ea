package service

import (
	"context"
	"time"

	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/content/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when the id is unknown, malformed, or owned by
// another owner.
var ErrNotFound = repository.ErrNotFound

// Service implements the record operations used by the handler layer for
// one content type. T is the stored record, I the request payload.
type Service[T content.Record, I content.Input[T]] struct {
	repo repository.Repository[T]
	now  func() time.Time
}

func New[T content.Record, I content.Input[T]](repo repository.Repository[T]) *Service[T, I] {
	return &Service[T, I]{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// NewMemory returns a Service backed by the in-memory repository.
func NewMemory[T content.Record, I content.Input[T]]() *Service[T, I] {
	return New[T, I](repository.NewMemoryRepo[T]())
}

// List returns the owner's records, newest first by the type's date field.
func (s *Service[T, I]) List(ctx context.Context, owner string) ([]T, error) {
	return s.repo.List(ctx, owner)
}

func (s *Service[T, I]) Get(ctx context.Context, owner, id string) (T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		var zero T
		return zero, ErrNotFound
	}
	return s.repo.Get(ctx, owner, oid)
}

// Create validates in and persists it under a fresh id. A *content.ValidationError
// is returned unchanged so callers can show its message.
func (s *Service[T, I]) Create(ctx context.Context, owner string, in I) (T, error) {
	now := s.now()
	rec, err := in.Build(content.Meta{ID: primitive.NewObjectID(), UserID: owner, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return rec, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Update replaces every content field of the record with in. Id, owner and
// createdAt are kept. There is no version check: the last writer wins.
func (s *Service[T, I]) Update(ctx context.Context, owner, id string, in I) (T, error) {
	var zero T
	cur, err := s.Get(ctx, owner, id)
	if err != nil {
		return zero, err
	}
	meta := cur.RecordMeta()
	meta.UpdatedAt = s.now()
	rec, err := in.Build(meta)
	if err != nil {
		return zero, err
	}
	if err := s.repo.Replace(ctx, owner, meta.ID, rec); err != nil {
		return zero, err
	}
	return rec, nil
}

func (s *Service[T, I]) Delete(ctx context.Context, owner, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, owner, oid)
}

// Ping reports whether the backing store is reachable, when it can tell.
func (s *Service[T, I]) Ping(ctx context.Context) error {
	if p, ok := s.repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Papers, Posts and Teaching are the concrete services the router wires.
type (
	Papers   = Service[content.ResearchPaper, content.PaperInput]
	Posts    = Service[content.BlogPost, content.PostInput]
	Teaching = Service[content.TeachingExperience, content.TeachingInput]
)
