// Package repotest holds the behaviour every repository backend must share.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsage/internal/model"
	"mailsage/internal/repository"
)

// Run exercises users, pins and summaries against repos.
func Run(t *testing.T, repos *repository.Repositories) {
	t.Helper()
	t.Run("users", func(t *testing.T) { users(t, repos.Users) })
	t.Run("pins", func(t *testing.T) { pins(t, repos.Pins) })
	t.Run("summaries", func(t *testing.T) { summaries(t, repos.Summaries) })
}

func users(t *testing.T, repo repository.UserRepository) {
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	user := model.NewUser("g-1", "ana@example.com", "Ana", "access", "refresh", expiry)
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByGoogleID(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "access", found.AccessToken)
	assert.True(t, expiry.Equal(found.TokenExpiry))

	assert.Equal(t, "Ana", found.Name)

	found.AccessToken = "rotated"
	require.NoError(t, repo.Update(ctx, found))
	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated", found.AccessToken)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	missing := model.NewUser("g-2", "bob@example.com", "Bob", "", "", time.Time{})
	assert.ErrorIs(t, repo.Update(ctx, missing), repository.ErrNotFound)
}

func pins(t *testing.T, repo repository.PinRepository) {
	ctx := context.Background()

	ids, err := repo.ListPins(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.SetPin(ctx, "u1", "m2", true))
	require.NoError(t, repo.SetPin(ctx, "u1", "m1", true))
	require.NoError(t, repo.SetPin(ctx, "u1", "m1", true))
	require.NoError(t, repo.SetPin(ctx, "u2", "m9", true))

	ids, err = repo.ListPins(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)

	require.NoError(t, repo.SetPin(ctx, "u1", "m2", false))
	require.NoError(t, repo.SetPin(ctx, "u1", "never", false))
	ids, err = repo.ListPins(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)
}

func summaries(t *testing.T, repo repository.SummaryRepository) {
	ctx := context.Background()

	_, err := repo.FindSummary(ctx, "u1", "m1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	record := &model.SummaryRecord{UserID: "u1", MessageID: "m1", Summary: "first", UpdatedAt: time.Now()}
	require.NoError(t, repo.SaveSummary(ctx, record))
	record.Summary = "second"
	require.NoError(t, repo.SaveSummary(ctx, record))

	found, err := repo.FindSummary(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.Equal(t, "second", found.Summary)

	_, err = repo.FindSummary(ctx, "u2", "m1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.DeleteSummary(ctx, "u1", "m1"))
	_, err = repo.FindSummary(ctx, "u1", "m1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
