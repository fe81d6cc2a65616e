package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushbhandari/event-tickets/internal/apperr"
	"github.com/ayushbhandari/event-tickets/internal/events"
)

func newEvent(t *testing.T, s *Store) *events.Event {
	t.Helper()
	e, err := s.CreateEvent(context.Background(), &events.Event{Title: "Launch party", Likes: 7, LikedBy: []string{"ghost"}})
	require.NoError(t, err)
	return e
}

func TestCreateEvent_StartsWithNoLikes(t *testing.T) {
	s := New()
	e := newEvent(t, s)

	assert.False(t, e.ID.IsZero())
	assert.Equal(t, 0, e.Likes)
	assert.Empty(t, e.LikedBy)
	assert.NotNil(t, e.LikedBy)
}

func TestCreateEvent_RejectsNegativeCounters(t *testing.T) {
	s := New()
	_, err := s.CreateEvent(context.Background(), &events.Event{Title: "x", Quantity: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, err := s.ListEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestToggleLike_Scenario(t *testing.T) {
	ctx := context.Background()
	s := New()
	e := newEvent(t, s)
	id := e.ID.Hex()

	got, err := s.ToggleLike(ctx, id, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, []string{"u1"}, got.LikedBy)

	got, err = s.ToggleLike(ctx, id, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
	assert.Empty(t, got.LikedBy)

	got, err = s.ToggleLike(ctx, id, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, []string{"u2"}, got.LikedBy)
}

func TestToggleLike_AlternatingKeepsCounterInSync(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := newEvent(t, s).ID.Hex()

	users := []string{"a", "b", "c"}
	for i := 0; i < 31; i++ {
		got, err := s.ToggleLike(ctx, id, users[i%len(users)])
		require.NoError(t, err)
		require.Equal(t, len(got.LikedBy), got.Likes, "after toggle %d", i)
	}
}

func TestToggleLike_UnknownEvent(t *testing.T) {
	s := New()
	for _, id := range []string{"not-an-id", "64b7f0c2a1b2c3d4e5f60718"} {
		_, err := s.ToggleLike(context.Background(), id, "u1")
		assert.ErrorIs(t, err, events.ErrEventNotFound, id)
	}
}

func TestToggleLike_RejectsBrokenCounter(t *testing.T) {
	s := New()
	e := newEvent(t, s)

	s.mu.Lock()
	s.events[0].LikedBy = []string{"u1"}
	s.events[0].Likes = 0
	s.mu.Unlock()

	_, err := s.ToggleLike(context.Background(), e.ID.Hex(), "u1")
	assert.ErrorIs(t, err, events.ErrLikeCounterInvalid)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestToggleLike_UnlikeRemovesOneDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()
	e := newEvent(t, s)

	s.mu.Lock()
	s.events[0].LikedBy = []string{"u1", "u2", "u1"}
	s.events[0].Likes = 3
	s.mu.Unlock()

	got, err := s.ToggleLike(ctx, e.ID.Hex(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Likes)
	assert.Equal(t, []string{"u2", "u1"}, got.LikedBy)

	got, err = s.ToggleLike(ctx, e.ID.Hex(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, []string{"u2"}, got.LikedBy)
}

func TestToggleLike_ConcurrentDistinctUsers(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := newEvent(t, s).ID.Hex()

	const users = 50
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.ToggleLike(ctx, id, fmt.Sprintf("user-%02d", n))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, users, got.Likes)
	assert.Len(t, got.LikedBy, users)
}

func TestGetEvent_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := newEvent(t, s).ID.Hex()

	got, err := s.GetEvent(ctx, id)
	require.NoError(t, err)
	got.LikedBy = append(got.LikedBy, "intruder")
	got.Likes = 99

	again, err := s.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Likes)
	assert.Empty(t, again.LikedBy)
}

func TestGetEvent_Missing(t *testing.T) {
	s := New()
	got, err := s.GetEvent(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, err := s.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "Other Ann", "ann@example.com", "hash2")
	assert.ErrorIs(t, err, events.ErrEmailTaken)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	byID, err := s.GetUserByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name)

	missing, err := s.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTickets(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.CreateTicket(ctx, events.NewTicket(map[string]any{"_id": "mine", "seat": "A1"}, "u1"))
	require.NoError(t, err)
	_, err = s.CreateTicket(ctx, events.NewTicket(map[string]any{"seat": "B2"}, "u2"))
	require.NoError(t, err)

	assert.False(t, first.ID().IsZero())
	assert.Equal(t, "A1", first["seat"])

	all, err := s.ListTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byUser, err := s.ListTicketsByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "B2", byUser[0]["seat"])

	byID, err := s.ListTicketsByID(ctx, first.ID().Hex())
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "u1", byID[0].UserID())

	require.NoError(t, s.DeleteTicket(ctx, first.ID().Hex()))
	require.NoError(t, s.DeleteTicket(ctx, first.ID().Hex()))
	require.NoError(t, s.DeleteTicket(ctx, "garbage"))

	all, err = s.ListTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
