// Package report contains the report store, the single source of truth for
// every report and record. All mutations funnel through it.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

const (
	// DefaultCollectionKey is the storage key the collection is persisted under.
	DefaultCollectionKey = "bitcoin-reports-collection"

	// DefaultLegacyKey is the storage key of pre-collection single-report data.
	DefaultLegacyKey = "bitcoin-investment-data"

	// DefaultReportName is used for reports created by migration or on first load.
	DefaultReportName = "Main Report"

	// MaxReportNameLength is the maximum number of characters in a report name.
	MaxReportNameLength = 100

	// maxWriteAttempts bounds how often a mutation is recomputed after
	// another writer moved the stored revision underneath it.
	maxWriteAttempts = 5
)

// Store holds the report collection in memory and persists it synchronously
// on every mutation. Mutations are copy-on-write: the stored collection is
// re-read, the next collection is computed on a clone and only swapped in
// after a revision-checked write succeeded. Several stores, in one process
// or several, may share one storage.
type Store struct {
	mu         sync.Mutex
	storage    adapter.CollectionStorage
	publisher  adapter.EventPublisher
	key        string
	legacyKey  string
	collection *entity.ReportCollection
	revision   int64
	now        func() time.Time
	newID      func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the local id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLegacyKey overrides the legacy single-report storage key.
func WithLegacyKey(key string) Option {
	return func(s *Store) { s.legacyKey = key }
}

// NewStore creates a new Store persisting under key. Load must be called
// before any other operation.
func NewStore(storage adapter.CollectionStorage, publisher adapter.EventPublisher, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultCollectionKey
	}
	s := &Store{
		storage:   storage,
		publisher: publisher,
		key:       key,
		legacyKey: DefaultLegacyKey,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the collection from storage, migrating legacy or older data,
// and enforces the active-report invariant. When nothing is stored, or the
// stored collection has no reports, one empty active report is created.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		err := s.load(ctx)
		if !errors.Is(err, domainerror.ErrStorageConflict) || attempt >= maxWriteAttempts {
			return err
		}
		slog.Warn("Report collection changed while loading, retrying", "key", s.key, "attempt", attempt)
	}
}

func (s *Store) load(ctx context.Context) error {
	now := s.now()
	collection, revision, dirty, err := s.read(ctx, now)
	if err != nil {
		return err
	}

	if len(collection.Reports) == 0 {
		report := s.newReport(DefaultReportName, "", now)
		collection.Reports = []entity.Report{report}
		collection.ActiveReportID = report.ID
		dirty = true
	}
	if enforceInvariants(collection) {
		dirty = true
	}

	if dirty {
		collection.LastUpdated = now
		revision, err = s.persist(ctx, collection, revision)
		if err != nil {
			return err
		}
	}

	s.collection = collection
	s.revision = revision
	slog.Info("Report store loaded",
		"key", s.key,
		"reports", len(collection.Reports),
		"activeReportID", collection.ActiveReportID,
		"version", collection.Version,
		"revision", revision,
	)
	return nil
}

// read resolves the stored collection and its revision, 0 when nothing is
// stored under the collection key yet. dirty reports whether it must be
// written back because it was created or migrated.
func (s *Store) read(ctx context.Context, now time.Time) (*entity.ReportCollection, int64, bool, error) {
	raw, revision, err := s.storage.Get(ctx, s.key)
	if err == nil {
		collection, migrated, err := s.decodeCollection(raw, now)
		if err != nil {
			return nil, 0, false, err
		}
		return collection, revision, migrated, nil
	}
	if !errors.Is(err, domainerror.ErrStorageKeyNotFound) {
		return nil, 0, false, domainerror.NewReportError(domainerror.ErrCodeLoadFailed, "failed to read report collection", err)
	}

	legacy, _, err := s.storage.Get(ctx, s.legacyKey)
	if err == nil {
		collection, err := s.migrateLegacy(legacy, now)
		if err != nil {
			return nil, 0, false, err
		}
		slog.Info("Migrated legacy report data", "legacyKey", s.legacyKey, "reportID", collection.ActiveReportID)
		return collection, 0, true, nil
	}
	if !errors.Is(err, domainerror.ErrStorageKeyNotFound) {
		return nil, 0, false, domainerror.NewReportError(domainerror.ErrCodeLoadFailed, "failed to read legacy report data", err)
	}

	report := s.newReport(DefaultReportName, "", now)
	return &entity.ReportCollection{
		Reports:        []entity.Report{report},
		ActiveReportID: report.ID,
		LastUpdated:    now,
		Version:        entity.CurrentSchemaVersion,
	}, 0, true, nil
}

// Refresh re-reads the stored collection when another writer changed it
// since this store last read or wrote it.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection == nil {
		return domainerror.NewReportError(domainerror.ErrCodeStoreNotLoaded, "report store not loaded", domainerror.ErrStoreNotLoaded)
	}
	return s.refresh(ctx, s.now())
}

func (s *Store) refresh(ctx context.Context, now time.Time) error {
	raw, revision, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return domainerror.NewReportError(domainerror.ErrCodeLoadFailed, "failed to read report collection", err)
	}
	if revision == s.revision {
		return nil
	}

	collection, _, err := s.decodeCollection(raw, now)
	if err != nil {
		return err
	}
	enforceInvariants(collection)
	slog.Debug("Report collection changed in storage", "key", s.key, "from", s.revision, "to", revision)
	s.collection = collection
	s.revision = revision
	return nil
}

// Save persists the current collection as is.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection == nil {
		return domainerror.NewReportError(domainerror.ErrCodeStoreNotLoaded, "report store not loaded", domainerror.ErrStoreNotLoaded)
	}
	next := s.collection.Clone()
	enforceInvariants(next)
	revision, err := s.persist(ctx, next, s.revision)
	if err != nil {
		return err
	}
	s.collection = next
	s.revision = revision
	return nil
}

// persist writes collection if the stored revision is still expected and
// returns the new revision.
func (s *Store) persist(ctx context.Context, collection *entity.ReportCollection, expected int64) (int64, error) {
	collection.Version = entity.CurrentSchemaVersion
	raw, err := json.Marshal(collection)
	if err != nil {
		return 0, domainerror.NewReportError(domainerror.ErrCodePersistFailed, "failed to encode report collection", err)
	}
	revision, err := s.storage.Put(ctx, s.key, raw, expected)
	if errors.Is(err, domainerror.ErrStorageConflict) {
		return 0, domainerror.NewReportError(domainerror.ErrCodeWriteConflict, "report collection changed concurrently", err)
	}
	if err != nil {
		slog.Error("Failed to persist report collection", "key", s.key, "error", err)
		return 0, domainerror.NewReportError(domainerror.ErrCodePersistFailed, "failed to persist report collection", err)
	}
	return revision, nil
}

// mutation computes the next collection in place on a clone and returns
// the events to emit once it has been persisted.
type mutation func(next *entity.ReportCollection, now time.Time) ([]entity.StoreEvent, error)

// errNoChange aborts a mutation without persisting or failing.
var errNoChange = errors.New("no change")

func (s *Store) mutate(ctx context.Context, fn mutation) error {
	events, err := s.apply(ctx, fn)
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	s.publish(ctx, events)
	return nil
}

// apply runs fn against the latest stored collection. A write that lost a
// race with another store is recomputed from the fresh state, so fn must
// only depend on the collection it is given.
func (s *Store) apply(ctx context.Context, fn mutation) ([]entity.StoreEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection == nil {
		return nil, domainerror.NewReportError(domainerror.ErrCodeStoreNotLoaded, "report store not loaded", domainerror.ErrStoreNotLoaded)
	}

	for attempt := 1; ; attempt++ {
		events, err := s.applyOnce(ctx, fn)
		if !errors.Is(err, domainerror.ErrStorageConflict) || attempt >= maxWriteAttempts {
			return events, err
		}
		slog.Warn("Report collection changed concurrently, retrying", "key", s.key, "attempt", attempt)
	}
}

func (s *Store) applyOnce(ctx context.Context, fn mutation) ([]entity.StoreEvent, error) {
	now := s.now()
	if err := s.refresh(ctx, now); err != nil {
		return nil, err
	}

	next := s.collection.Clone()
	events, err := fn(next, now)
	if err != nil {
		return nil, err
	}

	enforceInvariants(next)
	next.LastUpdated = now
	revision, err := s.persist(ctx, next, s.revision)
	if err != nil {
		return nil, err
	}
	s.collection = next
	s.revision = revision

	for i := range events {
		events[i].OccurredAt = now
	}
	return events, nil
}

func (s *Store) publish(ctx context.Context, events []entity.StoreEvent) {
	if s.publisher == nil {
		return
	}
	for _, event := range events {
		s.publisher.Publish(ctx, event)
	}
}

// Collection returns a deep copy of the current collection.
func (s *Store) Collection() (*entity.ReportCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection == nil {
		return nil, domainerror.NewReportError(domainerror.ErrCodeStoreNotLoaded, "report store not loaded", domainerror.ErrStoreNotLoaded)
	}
	return s.collection.Clone(), nil
}

// Reports returns copies of every report in collection order.
func (s *Store) Reports() ([]entity.Report, error) {
	collection, err := s.Collection()
	if err != nil {
		return nil, err
	}
	return collection.Reports, nil
}

// Report returns a copy of the report with the given id.
func (s *Store) Report(id string) (*entity.Report, error) {
	collection, err := s.Collection()
	if err != nil {
		return nil, err
	}
	idx := collection.Find(id)
	if idx < 0 {
		return nil, reportNotFound(id)
	}
	return &collection.Reports[idx], nil
}

// ActiveReport returns a copy of the active report.
func (s *Store) ActiveReport() (*entity.Report, error) {
	collection, err := s.Collection()
	if err != nil {
		return nil, err
	}
	idx, err := resolveTarget(collection, "")
	if err != nil {
		return nil, err
	}
	return &collection.Reports[idx], nil
}

func (s *Store) newReport(name, description string, now time.Time) entity.Report {
	return entity.Report{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		Investments: []entity.Investment{},
		Profits:     []entity.ProfitRecord{},
		Withdrawals: []entity.WithdrawalRecord{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// resolveTarget picks the explicit report, else the active one, else the first.
func resolveTarget(collection *entity.ReportCollection, reportID string) (int, error) {
	if reportID != "" {
		idx := collection.Find(reportID)
		if idx < 0 {
			return -1, reportNotFound(reportID)
		}
		return idx, nil
	}
	if idx := collection.Find(collection.ActiveReportID); idx >= 0 {
		return idx, nil
	}
	if len(collection.Reports) > 0 {
		return 0, nil
	}
	return -1, domainerror.NewReportError(domainerror.ErrCodeNoActiveReport, "no report available", domainerror.ErrNoActiveReport)
}

func reportNotFound(id string) error {
	return domainerror.NewReportError(domainerror.ErrCodeReportNotFound, "report "+id+" not found", domainerror.ErrReportNotFound)
}

func touch(report *entity.Report, now time.Time) {
	report.UpdatedAt = now
	report.Revision++
}
