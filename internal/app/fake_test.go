package app

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// fakeResource counts resets and detects overlapping use.
type fakeResource struct {
	id     string
	resets atomic.Int64
	closed atomic.Bool

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func newFakeResource() *fakeResource {
	return &fakeResource{id: uuid.NewString()}
}

func (f *fakeResource) ID() string { return f.id }

func (f *fakeResource) Reset() { f.resets.Add(1) }

func (f *fakeResource) Close() error {
	f.closed.Store(true)
	return nil
}

// enter marks the start of an operation and records the observed concurrency.
func (f *fakeResource) enter() func() {
	n := f.inFlight.Add(1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

// fakeFactory records every resource it builds.
type fakeFactory struct {
	mu    sync.Mutex
	built []*fakeResource
}

func (ff *fakeFactory) New() *fakeResource {
	r := newFakeResource()
	ff.mu.Lock()
	ff.built = append(ff.built, r)
	ff.mu.Unlock()
	return r
}

func (ff *fakeFactory) Built() []*fakeResource {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return append([]*fakeResource(nil), ff.built...)
}

func newTestWorker(capacity int) (*Worker[*fakeResource], *fakeFactory) {
	ff := &fakeFactory{}
	w := NewWorker[*fakeResource](ff.New, WorkerConfig{QueueCapacity: capacity}, nil, nil)
	return w, ff
}
