package room

import (
	"context"
	"testing"
	"time"

	"highcard-server/pkg/highcard"
	"highcard-server/pkg/token"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_CreateSession(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(logrus.StandardLogger(), quartz.NewReal(), time.Minute)
	defer r.Close()

	session, err := r.CreateSession("", highcard.DefaultOptions(), nil)
	a.NoError(err)
	a.NotEmpty(session.Name())
	a.Equal(token.JoinCodeLength, len(session.JoinCode()))

	_, err = uuid.Parse(session.UUID())
	a.NoError(err)

	found, ok := r.Session(session.UUID())
	a.True(ok)
	a.Equal(session, found)

	named, err := r.CreateSession("friday night", highcard.DefaultOptions(), nil)
	a.NoError(err)
	a.Equal("friday night", named.Name())

	_, ok = r.Session("no-such-uuid")
	a.False(ok)

	sessions := r.Sessions()
	a.Equal(2, len(sessions))

	badOpts := highcard.DefaultOptions()
	badOpts.NumPlayers = 0
	_, err = r.CreateSession("", badOpts, nil)
	a.EqualError(err, "need at least one player")
}

func TestRegistry_CreateSession_fromState(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(logrus.StandardLogger(), quartz.NewReal(), time.Minute)
	defer r.Close()

	game, err := highcard.New(logrus.StandardLogger(), highcard.DefaultOptions(), nil)
	a.NoError(err)
	a.True(game.PlayRound())
	a.True(game.PlayRound())
	a.True(game.PlayRound())
	state := game.ExportState()

	session, err := r.CreateSession("resumed", highcard.DefaultOptions(), state)
	a.NoError(err)

	data, ok := session.CurrentState()
	a.True(ok)
	a.Equal(3, data.CurrentRound)
	a.Equal(state.Players, data.Players)
	a.False(data.CanUndo)

	_, err = r.CreateSession("broken", highcard.DefaultOptions(), &highcard.State{})
	a.Equal(highcard.ErrMalformedState, err)
}

func TestRegistry_reap(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	r := NewRegistry(logrus.StandardLogger(), mClock, time.Minute)

	// a session nobody ever joins is reaped after the grace period
	doomed, err := r.CreateSession("doomed", highcard.DefaultOptions(), nil)
	a.NoError(err)

	mClock.Advance(time.Minute).MustWait(ctx)
	_, ok := r.Session(doomed.UUID())
	a.False(ok)

	// a connected client keeps the session alive
	survivor, err := r.CreateSession("survivor", highcard.DefaultOptions(), nil)
	a.NoError(err)

	client := NewClient(nil, 0)
	r.ClientConnected(survivor, client)

	mClock.Advance(time.Minute).MustWait(ctx)
	_, ok = r.Session(survivor.UUID())
	a.True(ok)

	// the grace period starts when the last client leaves
	r.ClientDisconnected(survivor, client)

	mClock.Advance(30 * time.Second).MustWait(ctx)
	_, ok = r.Session(survivor.UUID())
	a.True(ok)

	mClock.Advance(30 * time.Second).MustWait(ctx)
	_, ok = r.Session(survivor.UUID())
	a.False(ok)
}

func TestRegistry_reap_reconnect(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	r := NewRegistry(logrus.StandardLogger(), mClock, time.Minute)

	session, err := r.CreateSession("off and on", highcard.DefaultOptions(), nil)
	a.NoError(err)

	client := NewClient(nil, 0)
	r.ClientConnected(session, client)
	r.ClientDisconnected(session, client)

	// reconnect before the grace period expires
	mClock.Advance(30 * time.Second).MustWait(ctx)
	client2 := NewClient(nil, 0)
	r.ClientConnected(session, client2)

	mClock.Advance(time.Hour).MustWait(ctx)
	_, ok := r.Session(session.UUID())
	a.True(ok)
}

func TestRegistry_Close(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(logrus.StandardLogger(), quartz.NewReal(), time.Minute)

	first, err := r.CreateSession("first", highcard.DefaultOptions(), nil)
	a.NoError(err)
	second, err := r.CreateSession("second", highcard.DefaultOptions(), nil)
	a.NoError(err)

	r.ClientConnected(first, NewClient(nil, 0))

	r.Close()

	_, ok := r.Session(first.UUID())
	a.False(ok)
	_, ok = r.Session(second.UUID())
	a.False(ok)

	a.Equal(ErrSessionClosed, first.ClaimSeat(0, "Alice"))
	a.Equal(0, len(r.Sessions()))
}
