package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	mu         sync.Mutex
	current    *access.Identity
	currentErr error
	signOutErr error
	signOuts   int
	listeners  map[int]func(ChangeEvent)
	next       int
	// duringRead runs inside CurrentSession before it returns.
	duringRead func()
}

func newFakeIdentity(current *access.Identity) *fakeIdentity {
	return &fakeIdentity{current: current, listeners: map[int]func(ChangeEvent){}}
}

func (f *fakeIdentity) CurrentSession(ctx context.Context) (*access.Identity, error) {
	f.mu.Lock()
	current, err := f.current, f.currentErr
	hook := f.duringRead
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return current, err
}

func (f *fakeIdentity) OnSessionChange(fn func(ChangeEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeIdentity) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOuts++
	err := f.signOutErr
	if err == nil {
		f.current = nil
	}
	f.mu.Unlock()
	return err
}

func (f *fakeIdentity) emit(ev ChangeEvent) {
	f.mu.Lock()
	listeners := make([]func(ChangeEvent), 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (f *fakeIdentity) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	err      error
	gates    map[string]chan struct{}
	started  chan string
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]*Profile{}, gates: map[string]chan struct{}{}}
}

func (f *fakeProfiles) set(p *Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
}

func (f *fakeProfiles) block(userID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[userID] = ch
	return ch
}

func (f *fakeProfiles) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	f.mu.Lock()
	gate := f.gates[userID]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- userID
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func TestStore_StartsLoading(t *testing.T) {
	store := NewStore(newFakeIdentity(nil), newFakeProfiles(), logger.New())

	snap := store.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, access.ShowLoadingIndicator, store.Decide(access.AdminOnly).Kind)
}

func TestStore_InitializeSignedOut(t *testing.T) {
	store := NewStore(newFakeIdentity(nil), newFakeProfiles(), logger.New())

	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Identity)
	assert.Equal(t, access.RedirectTo(access.PathLogin), store.Decide(access.Authenticated))
}

func TestStore_InitializeDefaultsWhenProfileMissing(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "u-1", Email: "scout@example.com"})
	store := NewStore(identity, newFakeProfiles(), logger.New())

	require.NoError(t, store.Initialize(context.Background()))

	snap, err := store.WaitLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", snap.Identity.ID)
	assert.Equal(t, access.RoleMember, snap.Role)
	assert.Equal(t, access.StatusPending, snap.Status)
	assert.Equal(t, access.RedirectTo(access.PathPendingApproval), store.Decide(access.RequirementFor("/member")))
}

func TestStore_InitializeUsesProfile(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "admin-1"})
	profiles := newFakeProfiles()
	profiles.set(&Profile{ID: "admin-1", FullName: "Group Leader", Role: access.RoleAdmin, Status: access.StatusRejected})
	store := NewStore(identity, profiles, logger.New())

	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, access.RoleAdmin, snap.Role)
	assert.Equal(t, "Group Leader", snap.Identity.FullName)
	assert.True(t, store.Decide(access.AdminOnly).Allowed())
}

func TestStore_ProfileErrorFallsBackToDefaults(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "u-1"})
	profiles := newFakeProfiles()
	profiles.err = errors.New("connection refused")
	store := NewStore(identity, profiles, logger.New())

	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	assert.NotNil(t, snap.Identity)
	assert.Equal(t, access.StatusPending, snap.Status)
}

func TestStore_CurrentSessionErrorTreatedAsSignedOut(t *testing.T) {
	identity := newFakeIdentity(nil)
	identity.currentErr = errors.New("token expired")
	store := NewStore(identity, newFakeProfiles(), logger.New())

	require.NoError(t, store.Initialize(context.Background()))

	assert.Nil(t, store.Snapshot().Identity)
	assert.False(t, store.Snapshot().Loading)
}

func TestStore_StaleFetchIsDiscarded(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.set(&Profile{ID: "old", Role: access.RoleAdmin, Status: access.StatusApproved})
	profiles.set(&Profile{ID: "new", Role: access.RoleMember, Status: access.StatusApproved})
	store := NewStore(newFakeIdentity(nil), profiles, logger.New())

	oldSeq, ok := store.begin()
	require.True(t, ok)
	newSeq, ok := store.begin()
	require.True(t, ok)

	// The newer request completes first, the older one afterwards.
	store.finish(context.Background(), newSeq, &access.Identity{ID: "new"})
	store.finish(context.Background(), oldSeq, &access.Identity{ID: "old"})

	snap := store.Snapshot()
	assert.Equal(t, "new", snap.Identity.ID)
	assert.Equal(t, access.RoleMember, snap.Role)
}

func TestStore_OutOfOrderEvents(t *testing.T) {
	identity := newFakeIdentity(nil)
	profiles := newFakeProfiles()
	profiles.set(&Profile{ID: "first", Role: access.RoleAdmin, Status: access.StatusApproved})
	profiles.set(&Profile{ID: "second", Role: access.RoleMember, Status: access.StatusApproved})
	store := NewStore(identity, profiles, logger.New())
	require.NoError(t, store.Initialize(context.Background()))

	releaseFirst := profiles.block("first")
	releaseSecond := profiles.block("second")

	applied := make(chan access.Session, 4)
	store.Subscribe(func(s access.Session) { applied <- s })

	identity.emit(ChangeEvent{Kind: EventSignedIn, Identity: &access.Identity{ID: "first"}})
	identity.emit(ChangeEvent{Kind: EventSignedIn, Identity: &access.Identity{ID: "second"}})

	close(releaseSecond)
	select {
	case s := <-applied:
		assert.Equal(t, "second", s.Identity.ID)
	case <-time.After(time.Second):
		t.Fatal("second snapshot was never applied")
	}

	close(releaseFirst)
	assert.Never(t, func() bool {
		return store.Snapshot().Identity.ID == "first"
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestStore_SignOutDuringInitialRead(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "u-1"})
	identity.duringRead = func() {
		identity.emit(ChangeEvent{Kind: EventSignedOut})
	}
	store := NewStore(identity, newFakeProfiles(), logger.New())

	require.NoError(t, store.Initialize(context.Background()))

	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Identity)
}

func TestStore_SignInDuringInitialRead(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "u-1"})
	identity.duringRead = func() {
		identity.emit(ChangeEvent{Kind: EventSignedIn, Identity: &access.Identity{ID: "u-2"}})
	}
	store := NewStore(identity, newFakeProfiles(), logger.New())

	require.NoError(t, store.Initialize(context.Background()))

	require.Eventually(t, func() bool {
		s := store.Snapshot()
		return s.Identity != nil && s.Identity.ID == "u-2"
	}, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool {
		return store.Snapshot().Identity.ID == "u-1"
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestStore_ListenersSeeSnapshotsInApplyOrder(t *testing.T) {
	identity := newFakeIdentity(nil)
	store := NewStore(identity, newFakeProfiles(), logger.New())
	require.NoError(t, store.Initialize(context.Background()))

	// The first listener signs out as soon as it sees a signed-in snapshot,
	// so a newer snapshot is applied while the older one is being delivered.
	var once sync.Once
	store.Subscribe(func(s access.Session) {
		if s.Authenticated() {
			once.Do(func() { identity.emit(ChangeEvent{Kind: EventSignedOut}) })
		}
	})

	var mu sync.Mutex
	var seen []access.Session
	store.Subscribe(func(s access.Session) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	identity.emit(ChangeEvent{Kind: EventSignedIn, Identity: &access.Identity{ID: "u-1"}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, seen[0].Identity)
	assert.Equal(t, "u-1", seen[0].Identity.ID)
	assert.Nil(t, seen[1].Identity)
	assert.Nil(t, store.Snapshot().Identity)
}

func TestStore_SignedOutEventClearsSession(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "u-1"})
	store := NewStore(identity, newFakeProfiles(), logger.New())
	require.NoError(t, store.Initialize(context.Background()))
	require.NotNil(t, store.Snapshot().Identity)

	identity.emit(ChangeEvent{Kind: EventSignedOut})

	assert.Nil(t, store.Snapshot().Identity)
	assert.Empty(t, store.Snapshot().Role)
}

func TestStore_SignOut(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "u-1"})
	store := NewStore(identity, newFakeProfiles(), logger.New())
	require.NoError(t, store.Initialize(context.Background()))

	require.NoError(t, store.SignOut(context.Background()))

	assert.Equal(t, 1, identity.signOuts)
	assert.Nil(t, store.Snapshot().Identity)
}

func TestStore_SignOutFailureKeepsSession(t *testing.T) {
	identity := newFakeIdentity(&access.Identity{ID: "u-1"})
	identity.signOutErr = errors.New("network down")
	store := NewStore(identity, newFakeProfiles(), logger.New())
	require.NoError(t, store.Initialize(context.Background()))

	assert.Error(t, store.SignOut(context.Background()))
	assert.NotNil(t, store.Snapshot().Identity)
}

func TestStore_DisposeDropsInFlightResults(t *testing.T) {
	identity := newFakeIdentity(nil)
	profiles := newFakeProfiles()
	store := NewStore(identity, profiles, logger.New())
	require.NoError(t, store.Initialize(context.Background()))
	require.Equal(t, 1, identity.listenerCount())

	release := profiles.block("u-1")
	profiles.started = make(chan string, 1)
	identity.emit(ChangeEvent{Kind: EventSignedIn, Identity: &access.Identity{ID: "u-1"}})
	<-profiles.started

	store.Dispose()
	close(release)

	assert.Equal(t, 0, identity.listenerCount())
	assert.Never(t, func() bool {
		return store.Snapshot().Identity != nil
	}, 100*time.Millisecond, 10*time.Millisecond)
	assert.ErrorIs(t, store.Initialize(context.Background()), ErrDisposed)
}

func TestStore_ApprovalScenario(t *testing.T) {
	member := &access.Identity{ID: "m-1", Email: "cub@example.com"}
	identity := newFakeIdentity(nil)
	profiles := newFakeProfiles()
	store := NewStore(identity, profiles, logger.New())
	require.NoError(t, store.Initialize(context.Background()))

	identity.emit(ChangeEvent{Kind: EventSignedIn, Identity: member})
	require.Eventually(t, func() bool {
		return store.Snapshot().Identity != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, access.RedirectTo(access.PathPendingApproval), store.Decide(access.RequirementFor("/member")))

	// An administrator approves the member; the next refresh picks it up.
	profiles.set(&Profile{ID: "m-1", Role: access.RoleMember, Status: access.StatusApproved})
	identity.emit(ChangeEvent{Kind: EventTokenRefreshed, Identity: member})

	require.Eventually(t, func() bool {
		return store.Decide(access.RequirementFor("/member")).Allowed()
	}, time.Second, 5*time.Millisecond)
}
