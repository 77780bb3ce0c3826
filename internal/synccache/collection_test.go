package synccache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type item struct {
	ID   int64
	Name string
}

func (i item) EntityID() int64 { return i.ID }

type itemPatch struct {
	Name *string
}

func applyItem(i item, p itemPatch) item {
	if p.Name != nil {
		i.Name = *p.Name
	}
	return i
}

// fakeStore is an in-memory Store with injectable failures and a gate that
// lets tests hold List open to observe in-flight behavior.
type fakeStore struct {
	mu        sync.Mutex
	items     []item
	nextID    int64
	listCalls int32

	listGate  chan struct{}
	insertErr error
	patchErr  error
	removeErr error
}

func newFakeStore(initial ...item) *fakeStore {
	s := &fakeStore{nextID: 100}
	s.items = append(s.items, initial...)
	return s
}

func (s *fakeStore) List(ctx context.Context) ([]item, error) {
	atomic.AddInt32(&s.listCalls, 1)
	if s.listGate != nil {
		<-s.listGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeStore) Insert(ctx context.Context, it item) (item, error) {
	if s.insertErr != nil {
		return item{}, s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	it.ID = s.nextID
	s.items = append(s.items, it)
	return it, nil
}

func (s *fakeStore) Patch(ctx context.Context, id int64, p itemPatch) error {
	if s.patchErr != nil {
		return s.patchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = applyItem(s.items[i], p)
			return nil
		}
	}
	return errors.New("no such item")
}

func (s *fakeStore) Remove(ctx context.Context, id int64) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return errors.New("no such item")
}

func newTestCollection(store *fakeStore) *Collection[item, itemPatch] {
	return New[item, itemPatch]("items", store, applyItem, zerolog.Nop())
}

func TestLoad_PopulatesCache(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"}, item{ID: 2, Name: "b"})
	c := newTestCollection(store)

	items, err := c.Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, c.Loaded())

	got, ok := c.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "b", got.Name)
}

func TestLoad_ConcurrentCallsShareOneFetch(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	store.listGate = make(chan struct{})
	c := newTestCollection(store)

	const n = 5
	var wg sync.WaitGroup
	results := make([][]item, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Load(context.Background())
		}(i)
	}

	// Give every goroutine time to either start the load or join it.
	time.Sleep(50 * time.Millisecond)
	close(store.listGate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&store.listCalls))
	for i := 0; i < n; i++ {
		assert.NoError(t, errs[i])
		assert.Len(t, results[i], 1)
	}
}

func TestCreate_ReplacesOptimisticEntryWithPersisted(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)

	persisted, err := c.Create(context.Background(), item{Name: "new"})
	assert.NoError(t, err)
	assert.NotZero(t, persisted.ID)

	items := c.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, persisted.ID, items[0].ID, "new entry stays at the head with its stored id")
}

func TestCreate_FailureRestoresSnapshot(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)
	before := c.Items()

	store.insertErr = errors.New("connection refused")
	_, err = c.Create(context.Background(), item{Name: "doomed"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Equal(t, before, c.Items())
}

func TestUpdate_FailureRestoresSnapshot(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"}, item{ID: 2, Name: "b"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)

	store.patchErr = errors.New("timeout")
	name := "renamed"
	_, err = c.Update(context.Background(), 1, itemPatch{Name: &name})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	got, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", got.Name, "optimistic rename must be rolled back")
}

func TestUpdate_SuccessKeepsMergedEntity(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)

	name := "renamed"
	merged, err := c.Update(context.Background(), 1, itemPatch{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "renamed", merged.Name)

	got, _ := c.Get(1)
	assert.Equal(t, "renamed", got.Name)
}

func TestUpdate_UnknownID(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)

	name := "x"
	_, err = c.Update(context.Background(), 42, itemPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_FailureRestoresSnapshot(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"}, item{ID: 2, Name: "b"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)

	store.removeErr = errors.New("locked")
	err = c.Delete(context.Background(), 2)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	_, ok := c.Get(2)
	assert.True(t, ok, "deleted entry must reappear after rollback")
}

func TestRollback_RestoresSnapshotTakenAtIssue(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"}, item{ID: 2, Name: "b"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)

	// A successful rename lands first; the failing delete's snapshot was
	// taken after it, so rollback must preserve the rename.
	name := "renamed"
	_, err = c.Update(context.Background(), 1, itemPatch{Name: &name})
	assert.NoError(t, err)

	store.removeErr = errors.New("locked")
	err = c.Delete(context.Background(), 2)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	got, _ := c.Get(1)
	assert.Equal(t, "renamed", got.Name)
	_, ok := c.Get(2)
	assert.True(t, ok)
}

func TestMutation_WaitsForInFlightLoad(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	store.listGate = make(chan struct{})
	c := newTestCollection(store)

	loadDone := make(chan struct{})
	go func() {
		_, _ = c.Load(context.Background())
		close(loadDone)
	}()

	createDone := make(chan struct{})
	go func() {
		// Let the load start first.
		time.Sleep(20 * time.Millisecond)
		_, _ = c.Create(context.Background(), item{Name: "new"})
		close(createDone)
	}()

	select {
	case <-createDone:
		t.Fatal("create completed before the in-flight load finished")
	case <-time.After(80 * time.Millisecond):
	}

	close(store.listGate)
	<-loadDone
	<-createDone

	items := c.Items()
	assert.Len(t, items, 2, "cache holds the loaded entry plus the created one")
}

func TestSubscribe_DeliversAndUnsubscribes(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	c := newTestCollection(store)

	var mu sync.Mutex
	var events []Event
	unsub := c.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	_, err := c.Load(context.Background())
	assert.NoError(t, err)
	_, err = c.Create(context.Background(), item{Name: "new"})
	assert.NoError(t, err)

	mu.Lock()
	n := len(events)
	assert.Equal(t, ActionReload, events[0].Action)
	assert.Equal(t, "items", events[0].Collection)
	mu.Unlock()
	assert.GreaterOrEqual(t, n, 2)

	unsub()
	err = c.Delete(context.Background(), 1)
	assert.NoError(t, err)

	mu.Lock()
	assert.Len(t, events, n, "no events after unsubscribe")
	mu.Unlock()
}

func TestItems_ReturnsCopy(t *testing.T) {
	store := newFakeStore(item{ID: 1, Name: "a"})
	c := newTestCollection(store)
	_, err := c.Load(context.Background())
	assert.NoError(t, err)

	items := c.Items()
	items[0].Name = "mutated"

	got, _ := c.Get(1)
	assert.Equal(t, "a", got.Name)
}
