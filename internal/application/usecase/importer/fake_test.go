package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
	"github.com/btc-tracker/backend/internal/domain/valueobject"
)

// fakeFetcher serves pages by offset. Offsets without a page yield an empty
// successful page unless fallback is set.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[int][]entity.RawRecord
	fallback func(offset, limit int) []entity.RawRecord
	failures map[int]int   // remaining failures per offset
	hard     map[int]error // permanent transport errors per offset
	calls    []entity.PageRequest
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:    map[int][]entity.RawRecord{},
		failures: map[int]int{},
		hard:     map[int]error{},
	}
}

func (f *fakeFetcher) FetchPage(_ context.Context, _, _ string, req entity.PageRequest) (*entity.PageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	if err, ok := f.hard[req.Offset]; ok {
		return nil, err
	}
	if f.failures[req.Offset] > 0 {
		f.failures[req.Offset]--
		return &entity.PageResult{Success: false, Error: "HTTP 503: upstream unavailable"}, nil
	}

	data, ok := f.pages[req.Offset]
	if !ok && f.fallback != nil {
		data = f.fallback(req.Offset, req.Limit)
	}
	return &entity.PageResult{Success: true, Data: data, IsEmpty: len(data) == 0}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func trade(id string, pl int64) entity.RawRecord {
	return entity.RawRecord{"id": id, "pl": float64(pl), "closed": true, "closed_ts": float64(1707523200000)}
}

func testPolicy(pageSize int) valueobject.PaginationPolicy {
	return valueobject.PaginationPolicy{
		PageSize:             pageSize,
		MaxEmptyPages:        3,
		MaxUnproductivePages: 2,
		MaxRecords:           1000,
		MaxOffset:            1000,
	}
}

func testRetry() valueobject.RetryPolicy {
	return valueobject.RetryPolicy{MaxAttempts: 3}
}

// memoryStorage is an in-memory CollectionStorage.
type memoryStorage struct {
	mu        sync.Mutex
	data      map[string][]byte
	revisions map[string]int64
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: map[string][]byte{}, revisions: map[string]int64{}}
}

func (m *memoryStorage) Get(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, 0, domainerror.ErrStorageKeyNotFound
	}
	return raw, m.revisions[key], nil
}

func (m *memoryStorage) Put(_ context.Context, key string, value []byte, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revisions[key] != expected {
		return 0, domainerror.ErrStorageConflict
	}
	m.data[key] = value
	m.revisions[key]++
	return m.revisions[key], nil
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.StoreEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.StoreEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count(name entity.EventName) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

// memoryLock is a single-holder lock per report.
type memoryLock struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemoryLock() *memoryLock {
	return &memoryLock{held: map[string]string{}}
}

func (l *memoryLock) Acquire(_ context.Context, reportID string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[reportID]; ok {
		return "", false, nil
	}
	l.held[reportID] = "token-" + reportID
	return l.held[reportID], true, nil
}

func (l *memoryLock) Release(_ context.Context, reportID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[reportID] != token {
		return errors.New("lock not held")
	}
	delete(l.held, reportID)
	return nil
}

// progressRecorder collects progress updates.
type progressRecorder struct {
	mu      sync.Mutex
	updates []entity.ImportProgress
}

func (p *progressRecorder) ReportProgress(progress entity.ImportProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, progress)
}

func (p *progressRecorder) last() entity.ImportProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return entity.ImportProgress{}
	}
	return p.updates[len(p.updates)-1]
}
