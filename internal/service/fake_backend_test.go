package service

import (
	"context"
	"sync"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/repository"
)

// fakeBackend serves fixed items and releases. A gate registered for a
// release name blocks FetchItems for that release until the gate closes.
type fakeBackend struct {
	items    []domain.WorkItem
	releases []domain.Release

	itemErr    error
	releaseErr error

	// honourCancel makes a gated fetch return early when ctx is done.
	honourCancel bool

	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	queries []repository.ItemQuery
}

func newFakeBackend(items []domain.WorkItem, releases ...*domain.Release) *fakeBackend {
	f := &fakeBackend{items: items, gates: make(map[string]chan struct{})}
	for _, r := range releases {
		f.releases = append(f.releases, *r)
	}
	return f
}

func (f *fakeBackend) gate(release string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[release] = ch
	if f.started == nil {
		f.started = make(chan string, 8)
	}
	return ch
}

func (f *fakeBackend) FetchItems(ctx context.Context, q repository.ItemQuery) ([]domain.WorkItem, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gates[q.Release]
	started := f.started
	f.mu.Unlock()

	if gate != nil {
		started <- q.Release
		if f.honourCancel {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			<-gate
		}
	}
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	out := make([]domain.WorkItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeBackend) FetchRelease(ctx context.Context, scope repository.ProjectScope, name string) (*domain.Release, error) {
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	for _, r := range f.releases {
		if r.Name == name {
			r := r
			return &r, nil
		}
	}
	return nil, repository.ErrReleaseNotFound
}

func (f *fakeBackend) ListReleases(ctx context.Context, scope repository.ProjectScope) ([]domain.Release, error) {
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	return f.releases, nil
}

func (f *fakeBackend) lastQuery() repository.ItemQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

// recordingObserver collects use-case events.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}
