package rsvp

import (
	"context"
	"testing"
	"time"

	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"github.com/sharath018/invitation-rsvp-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryArrivalOrder(t *testing.T) {
	db := testutil.OpenDB(t, &Response{}, &survey.Answer{})
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"Cleo", "Ana", "Ana"} {
		require.NoError(t, repo.Create(ctx, &Response{
			ID:           string(rune('c'-i)) + "-id",
			InvitationID: "inv-1",
			Name:         name,
			Accept:       true,
			NumAttendees: 1,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &Response{ID: "z-id", InvitationID: "inv-2", Name: "Other", CreatedAt: base}))

	list, err := repo.ListByInvitation(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, list, 3, "duplicate names are kept")
	assert.Equal(t, []string{"c-id", "b-id", "a-id"}, []string{list[0].ID, list[1].ID, list[2].ID})

	_, err = repo.GetByID(ctx, "inv-2", "c-id")
	assert.ErrorIs(t, err, ErrResponseNotFound)

	assert.ErrorIs(t, repo.Update(ctx, &Response{ID: "nope", InvitationID: "inv-1", Name: "x"}), ErrResponseNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "inv-1", "nope"), ErrResponseNotFound)
}
