package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onenight/game"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{HistoryPath: ""})
	require.NoError(t, err)
	return s
}

func TestCreateAndPollRoom(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	sess, err := s.CreateRoom(ctx, "Ann")
	require.NoError(t, err)
	assert.Len(t, sess.RoomCode, 6)
	assert.Len(t, sess.Players, 1)
	assert.Equal(t, "Ann", sess.Players[0].Name)
	assert.True(t, sess.Players[0].IsHost)

	got, err := s.Session(ctx, sess.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, sess.RoomCode, got.RoomCode)

	_, err = s.Session(ctx, "NOSUCH")
	assert.ErrorIs(t, err, game.ErrSessionNotFound)
}

func TestJoinPersists(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	sess, err := s.CreateRoom(ctx, "Ann")
	require.NoError(t, err)

	err = s.mutate(ctx, sess.RoomCode, func(e *game.Engine) error {
		_, err := e.AddPlayer("Ben")
		return err
	})
	require.NoError(t, err)

	stored, err := s.store.Get(ctx, sess.RoomCode)
	require.NoError(t, err)
	assert.Len(t, stored.Players, 2)
	assert.Greater(t, stored.Revision, sess.Revision)
}

func TestRoomRevivedFromStore(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	sess, err := s.CreateRoom(ctx, "Ann")
	require.NoError(t, err)
	err = s.mutate(ctx, sess.RoomCode, func(e *game.Engine) error {
		_, err := e.AddBot(sess.HostID)
		return err
	})
	require.NoError(t, err)

	// simulate a restart: the engine is gone, the blob is not
	s.mu.Lock()
	s.rooms[sess.RoomCode].engine.Close()
	delete(s.rooms, sess.RoomCode)
	s.mu.Unlock()

	got, err := s.Session(ctx, sess.RoomCode)
	require.NoError(t, err)
	assert.Len(t, got.Players, 2)
	assert.Equal(t, sess.HostID, got.HostID)

	// the revived engine accepts mutations again
	err = s.mutate(ctx, sess.RoomCode, func(e *game.Engine) error {
		_, err := e.AddPlayer("Cat")
		return err
	})
	require.NoError(t, err)
}

func TestMidGameBlobRevivesToLobby(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	sess, err := s.CreateRoom(ctx, "Ann")
	require.NoError(t, err)

	// a restart caught this room in the middle of the night
	stored, err := s.store.Get(ctx, sess.RoomCode)
	require.NoError(t, err)
	stored.GameStarted = true
	stored.GameState = &game.GameState{Phase: game.PhaseNight}
	stored.Players[0].OriginalRole = "seer"
	stored.Players[0].CurrentRole = "seer"
	stored.Revision++
	require.NoError(t, s.store.Put(ctx, stored))

	s.mu.Lock()
	s.rooms[sess.RoomCode].engine.Close()
	delete(s.rooms, sess.RoomCode)
	s.mu.Unlock()

	got, err := s.Session(ctx, sess.RoomCode)
	require.NoError(t, err)
	assert.False(t, got.GameStarted)
	assert.Nil(t, got.GameState)
	assert.Empty(t, got.Players[0].OriginalRole)
	assert.Len(t, got.Players, 1)

	// the revived room takes lobby mutations and the reset was saved
	err = s.mutate(ctx, sess.RoomCode, func(e *game.Engine) error {
		_, err := e.AddPlayer("Ben")
		return err
	})
	require.NoError(t, err)

	saved, err := s.store.Get(ctx, sess.RoomCode)
	require.NoError(t, err)
	assert.False(t, saved.GameStarted)
	assert.Len(t, saved.Players, 2)
}

func TestDeleteRoomHostOnly(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	sess, err := s.CreateRoom(ctx, "Ann")
	require.NoError(t, err)

	var ben *game.Player
	err = s.mutate(ctx, sess.RoomCode, func(e *game.Engine) error {
		p, err := e.AddPlayer("Ben")
		ben = p
		return err
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteRoom(ctx, sess.RoomCode, ben.ID), game.ErrNotHost)
	require.NoError(t, s.DeleteRoom(ctx, sess.RoomCode, sess.HostID))

	_, err = s.Session(ctx, sess.RoomCode)
	assert.ErrorIs(t, err, game.ErrSessionNotFound)
}

func TestRoomCodesUnique(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		sess, err := s.CreateRoom(ctx, "Ann")
		require.NoError(t, err)
		assert.False(t, seen[sess.RoomCode], "duplicate code %s", sess.RoomCode)
		seen[sess.RoomCode] = true
	}
}
