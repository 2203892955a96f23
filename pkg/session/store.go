// Package session keeps the single authoritative view of who is signed in
// for a client process. It listens to the identity service, refetches the
// profile on every change, and hands snapshots to the access gate.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/logger"
)

type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

type ChangeEvent struct {
	Kind     EventKind
	Identity *access.Identity
}

type IdentityService interface {
	CurrentSession(ctx context.Context) (*access.Identity, error)
	OnSessionChange(fn func(ChangeEvent)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

type Profile struct {
	ID       string        `json:"id"`
	FullName string        `json:"full_name"`
	Phone    string        `json:"phone"`
	Role     access.Role   `json:"role"`
	Status   access.Status `json:"status"`
}

// ProfileFetcher returns (nil, nil) when the identity has no profile row yet.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (*Profile, error)
}

var ErrDisposed = errors.New("session store disposed")

type Store struct {
	identity IdentityService
	profiles ProfileFetcher
	logger   *logger.Logger

	mu          sync.Mutex
	state       access.Session
	seq         uint64
	disposed    bool
	loaded      chan struct{}
	listeners   map[int]func(access.Session)
	nextID      int
	outbox      []access.Session
	delivering  bool
	unsubscribe func()
	initialized bool
}

func NewStore(identity IdentityService, profiles ProfileFetcher, log *logger.Logger) *Store {
	return &Store{
		identity:  identity,
		profiles:  profiles,
		logger:    log,
		state:     access.Session{Loading: true},
		loaded:    make(chan struct{}),
		listeners: make(map[int]func(access.Session)),
	}
}

// Initialize subscribes to identity changes and resolves the current
// session. It returns once the initial read has been applied or superseded
// by a change event that arrived while it was in flight.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	unsubscribe := s.identity.OnSessionChange(s.handleChange)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	seq, ok := s.begin()
	if !ok {
		return ErrDisposed
	}
	current, err := s.identity.CurrentSession(ctx)
	if err != nil {
		s.logger.Warn("Failed to read current session, treating as signed out: %v", err)
		current = nil
	}
	s.finish(ctx, seq, current)
	return nil
}

// handleChange reserves a sequence number on the callback goroutine so
// that event order is initiation order, then fetches asynchronously.
func (s *Store) handleChange(ev ChangeEvent) {
	s.logger.Debug("Session change event: %s", ev.Kind)
	seq, ok := s.begin()
	if !ok {
		return
	}
	if ev.Kind == EventSignedOut || ev.Identity == nil {
		s.apply(seq, access.Anonymous())
		return
	}
	go s.finish(context.Background(), seq, ev.Identity)
}

func (s *Store) resolve(ctx context.Context, identity *access.Identity) {
	seq, ok := s.begin()
	if !ok {
		return
	}
	s.finish(ctx, seq, identity)
}

func (s *Store) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return 0, false
	}
	s.seq++
	return s.seq, true
}

// finish fetches the profile for identity and applies it only if no newer
// resolution was started meanwhile.
func (s *Store) finish(ctx context.Context, seq uint64, identity *access.Identity) {
	if identity == nil {
		s.apply(seq, access.Anonymous())
		return
	}

	next := access.Session{
		Identity: identity,
		Role:     access.RoleMember,
		Status:   access.StatusPending,
	}
	profile, err := s.profiles.FetchProfile(ctx, identity.ID)
	switch {
	case err != nil:
		s.logger.Warn("Failed to fetch profile for %s, using defaults: %v", identity.ID, err)
	case profile == nil:
		s.logger.Debug("No profile row for %s yet, using defaults", identity.ID)
	default:
		next.Role = access.ParseRole(string(profile.Role))
		next.Status = access.ParseStatus(string(profile.Status))
		if identity.FullName == "" && profile.FullName != "" {
			withName := *identity
			withName.FullName = profile.FullName
			next.Identity = &withName
		}
	}
	s.apply(seq, next)
}

func (s *Store) apply(seq uint64, next access.Session) {
	s.mu.Lock()
	if s.disposed || seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("Dropping stale session snapshot (seq %d)", seq)
		return
	}
	next.Loading = false
	s.state = next
	wasLoading := false
	select {
	case <-s.loaded:
	default:
		wasLoading = true
		close(s.loaded)
	}
	s.outbox = append(s.outbox, next)
	owner := !s.delivering
	s.delivering = true
	s.mu.Unlock()

	if wasLoading {
		s.logger.Debug("Session resolved")
	}
	if owner {
		s.deliver()
	}
}

// deliver drains the outbox on one goroutine at a time, so every listener
// sees snapshots in the order they were applied. Snapshots applied from
// inside a listener are queued and delivered after the current one.
func (s *Store) deliver() {
	for {
		s.mu.Lock()
		if len(s.outbox) == 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		next := s.outbox[0]
		s.outbox = s.outbox[1:]
		ids := make([]int, 0, len(s.listeners))
		for id := range s.listeners {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		listeners := make([]func(access.Session), 0, len(ids))
		for _, id := range ids {
			listeners = append(listeners, s.listeners[id])
		}
		s.mu.Unlock()

		for _, fn := range listeners {
			fn(next)
		}
	}
}

func (s *Store) Snapshot() access.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// WaitLoaded blocks until the first resolution or ctx is done.
func (s *Store) WaitLoaded(ctx context.Context) (access.Session, error) {
	select {
	case <-s.loaded:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Decide evaluates the gate against the current snapshot.
func (s *Store) Decide(requirement access.Requirement) access.Decision {
	return access.Decide(s.Snapshot(), requirement)
}

func (s *Store) Subscribe(fn func(access.Session)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) SignOut(ctx context.Context) error {
	if err := s.identity.SignOut(ctx); err != nil {
		return err
	}
	s.resolve(ctx, nil)
	return nil
}

// Dispose detaches from the identity service. Fetches still in flight are
// discarded when they complete.
func (s *Store) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	unsubscribe := s.unsubscribe
	s.listeners = map[int]func(access.Session){}
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
