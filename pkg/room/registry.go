package room

import (
	"sort"
	"sync"
	"time"

	"highcard-server/internal/util"
	"highcard-server/pkg/highcard"
	"highcard-server/pkg/token"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry tracks every live game session. A session that has been
// empty for the grace period is stopped and forgotten; connecting a
// client cancels a pending reap.
type Registry struct {
	logger logrus.FieldLogger
	clock  quartz.Clock
	grace  time.Duration

	lock     sync.RWMutex
	sessions map[string]*Session
	timers   map[string]*quartz.Timer
}

// NewRegistry returns a new registry
func NewRegistry(logger logrus.FieldLogger, clock quartz.Clock, grace time.Duration) *Registry {
	return &Registry{
		logger:   logger,
		clock:    clock,
		grace:    grace,
		sessions: make(map[string]*Session),
		timers:   make(map[string]*quartz.Timer),
	}
}

// CreateSession builds a game from the options, optionally primed with a
// previously exported state, and starts a session for it.
// A session with no connected clients only survives for the grace
// period, so the clock starts ticking immediately.
func (r *Registry) CreateSession(name string, opts highcard.Options, state *highcard.State) (*Session, error) {
	if name == "" {
		name = util.GetRandomName()
	}

	gameUUID := uuid.New().String()
	logger := r.logger.WithField("uuid", gameUUID)

	var game *highcard.Game
	var err error
	if state != nil {
		game, err = highcard.NewFromState(logger, opts, nil, state)
	} else {
		game, err = highcard.New(logger, opts, nil)
	}

	if err != nil {
		return nil, err
	}

	session := newSession(logger, gameUUID, name, token.JoinCode(), game)
	session.Start()

	r.lock.Lock()
	r.sessions[gameUUID] = session
	r.scheduleReap(session)
	r.lock.Unlock()

	logger.WithField("name", name).Info("session created")
	return session, nil
}

// Session returns the session with the given UUID
func (r *Registry) Session(uuid string) (*Session, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	session, ok := r.sessions[uuid]
	return session, ok
}

// Sessions returns the live sessions, oldest first
func (r *Registry) Sessions() []*Session {
	r.lock.RLock()
	defer r.lock.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].created.Before(sessions[j].created)
	})

	return sessions
}

// ClientConnected is called when a client connects to the server
func (r *Registry) ClientConnected(session *Session, client *Client) {
	r.lock.Lock()
	if timer, ok := r.timers[session.uuid]; ok {
		timer.Stop()
		delete(r.timers, session.uuid)
	}

	session.AddClient(client)
	r.lock.Unlock()

	r.logger.WithField("client", client.String()).Debug("client connected")
}

// ClientDisconnected is called when a client disconnects from the server
func (r *Registry) ClientDisconnected(session *Session, client *Client) {
	r.logger.WithField("client", client.String()).Debug("client disconnected")
	if !session.RemoveClient(client) {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.sessions[session.uuid]; !ok {
		return
	}

	r.scheduleReap(session)
}

// scheduleReap starts the grace timer for an empty session
// r.lock must be held.
func (r *Registry) scheduleReap(session *Session) {
	if timer, ok := r.timers[session.uuid]; ok {
		timer.Stop()
	}

	r.timers[session.uuid] = r.clock.AfterFunc(r.grace, func() {
		r.reap(session)
	})
}

// reap stops the session unless a client reconnected during the grace period
func (r *Registry) reap(session *Session) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.sessions[session.uuid]; !ok {
		return
	}

	if session.ClientCount() > 0 {
		return
	}

	delete(r.sessions, session.uuid)
	delete(r.timers, session.uuid)
	session.Stop()

	r.logger.WithFields(logrus.Fields{
		"uuid": session.uuid,
		"name": session.name,
	}).Info("session reaped")
}

// Close stops every session
func (r *Registry) Close() {
	r.lock.Lock()
	defer r.lock.Unlock()

	for uuid, session := range r.sessions {
		if timer, ok := r.timers[uuid]; ok {
			timer.Stop()
			delete(r.timers, uuid)
		}

		session.Stop()
		delete(r.sessions, uuid)
	}
}
