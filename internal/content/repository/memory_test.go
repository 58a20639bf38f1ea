package repository

import (
	"context"
	"testing"
	"time"

	"github.com/scholarfolio/backend/internal/content"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func experience(owner, subject string, start time.Time) content.TeachingExperience {
	return content.TeachingExperience{
		Meta:        content.Meta{ID: primitive.NewObjectID(), UserID: owner, CreatedAt: time.Now()},
		Subject:     subject,
		Institution: "Uni",
		StartDate:   start,
	}
}

func TestMemoryRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo[content.TeachingExperience]()
	rec := experience("owner", "Math", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, r.Create(ctx, rec))
	require.Error(t, r.Create(ctx, rec), "duplicate ids are rejected")

	got, err := r.Get(ctx, "owner", rec.ID)
	require.NoError(t, err)
	require.Equal(t, "Math", got.Subject)

	rec.Subject = "Physics"
	require.NoError(t, r.Replace(ctx, "owner", rec.ID, rec))
	got, err = r.Get(ctx, "owner", rec.ID)
	require.NoError(t, err)
	require.Equal(t, "Physics", got.Subject)

	require.NoError(t, r.Delete(ctx, "owner", rec.ID))
	_, err = r.Get(ctx, "owner", rec.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, "owner", rec.ID), ErrNotFound)
}

func TestMemoryRepoOwnerScoping(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo[content.TeachingExperience]()
	rec := experience("alice", "Math", time.Now())
	require.NoError(t, r.Create(ctx, rec))

	_, err := r.Get(ctx, "bob", rec.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.Replace(ctx, "bob", rec.ID, rec), ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, "bob", rec.ID), ErrNotFound)

	list, err := r.List(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMemoryRepoListSortedDescending(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo[content.TeachingExperience]()
	for _, y := range []int{2018, 2022, 2015, 2020} {
		rec := experience("owner", "y", time.Date(y, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, r.Create(ctx, rec))
	}

	list, err := r.List(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, list, 4)
	years := []int{}
	for _, rec := range list {
		years = append(years, rec.StartDate.Year())
	}
	require.Equal(t, []int{2022, 2020, 2018, 2015}, years)
}
