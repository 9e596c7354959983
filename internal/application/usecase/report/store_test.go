package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// memoryStorage is an in-memory CollectionStorage for tests. Values seeded
// directly into data count as revision 1.
type memoryStorage struct {
	mu        sync.Mutex
	data      map[string][]byte
	revisions map[string]int64
	puts      int
	conflicts int
	failPut   error
	beforePut func()
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: map[string][]byte{}, revisions: map[string]int64{}}
}

func (m *memoryStorage) revision(key string) int64 {
	if _, ok := m.data[key]; !ok {
		return 0
	}
	if rev, ok := m.revisions[key]; ok {
		return rev
	}
	return 1
}

func (m *memoryStorage) Get(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, 0, domainerror.ErrStorageKeyNotFound
	}
	return raw, m.revision(key), nil
}

func (m *memoryStorage) Put(_ context.Context, key string, value []byte, expected int64) (int64, error) {
	if hook := m.beforePut; hook != nil {
		m.beforePut = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return 0, m.failPut
	}
	if m.revision(key) != expected {
		m.conflicts++
		return 0, domainerror.ErrStorageConflict
	}
	next := expected + 1
	m.data[key] = value
	m.revisions[key] = next
	m.puts++
	return next, nil
}

func (m *memoryStorage) stored(t *testing.T, key string) *entity.ReportCollection {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var c entity.ReportCollection
	if err := json.Unmarshal(m.data[key], &c); err != nil {
		t.Fatalf("stored collection is not valid JSON: %v", err)
	}
	return &c
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

func (p *recordingPublisher) names() []entity.EventName {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]entity.EventName, len(p.events))
	for i, e := range p.events {
		names[i] = e.Name
	}
	return names
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T, storage *memoryStorage) (*Store, *recordingPublisher) {
	t.Helper()
	publisher := &recordingPublisher{}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(storage, publisher, DefaultCollectionKey,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(sequentialIDs()),
	)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store, publisher
}

func assertSingleActive(t *testing.T, store *Store) {
	t.Helper()
	collection, err := store.Collection()
	if err != nil {
		t.Fatalf("Collection() error = %v", err)
	}
	active := 0
	for _, r := range collection.Reports {
		if r.IsActive {
			active++
			if r.ID != collection.ActiveReportID {
				t.Errorf("active report %s does not match activeReportId %s", r.ID, collection.ActiveReportID)
			}
		}
	}
	if active != 1 {
		t.Errorf("expected exactly 1 active report, got %d", active)
	}
}

func profit(originalID string, amount int64, isProfit bool) entity.Record {
	return entity.Record{
		Kind: entity.RecordKindProfit,
		RecordBase: entity.RecordBase{
			OriginalID: originalID,
			Date:       "2024-02-10",
			Amount:     decimal.NewFromInt(amount),
			Unit:       entity.UnitSats,
		},
		IsProfit: isProfit,
	}
}

func TestStore_Load(t *testing.T) {
	t.Run("creates a default active report when storage is empty", func(t *testing.T) {
		storage := newMemoryStorage()
		store, _ := newTestStore(t, storage)

		reports, err := store.Reports()
		if err != nil {
			t.Fatalf("Reports() error = %v", err)
		}
		if len(reports) != 1 {
			t.Fatalf("expected 1 report, got %d", len(reports))
		}
		if reports[0].Name != DefaultReportName || !reports[0].IsActive {
			t.Errorf("unexpected default report %+v", reports[0])
		}
		if storage.puts != 1 {
			t.Errorf("expected default collection to be persisted once, got %d puts", storage.puts)
		}
		if v := storage.stored(t, DefaultCollectionKey).Version; v != entity.CurrentSchemaVersion {
			t.Errorf("expected version %s, got %s", entity.CurrentSchemaVersion, v)
		}
	})

	t.Run("migrates legacy single-report data exactly once", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.data[DefaultLegacyKey] = []byte(`{
			"investments": [{"id": "inv-1", "date": "2023-01-05", "amount": 0.5, "unit": "BTC"}],
			"profits": [{"id": "p-1", "date": "2023-02-01", "amount": 1000, "unit": "SATS", "isProfit": true}],
			"withdrawals": []
		}`)

		store, _ := newTestStore(t, storage)
		active, err := store.ActiveReport()
		if err != nil {
			t.Fatalf("ActiveReport() error = %v", err)
		}
		if len(active.Investments) != 1 || len(active.Profits) != 1 {
			t.Fatalf("legacy records not migrated: %+v", active)
		}
		if !active.Investments[0].Amount.Equal(decimal.RequireFromString("0.5")) {
			t.Errorf("expected legacy amount 0.5, got %s", active.Investments[0].Amount)
		}

		// A second store on the same storage reads the collection, not the legacy key.
		puts := storage.puts
		again := NewStore(storage, nil, DefaultCollectionKey)
		if err := again.Load(context.Background()); err != nil {
			t.Fatalf("second Load() error = %v", err)
		}
		if storage.puts != puts {
			t.Errorf("expected no re-migration, got %d extra puts", storage.puts-puts)
		}
		reloaded, _ := again.ActiveReport()
		if reloaded.ID != active.ID {
			t.Errorf("expected same report after reload, got %s and %s", reloaded.ID, active.ID)
		}
	})

	t.Run("upgrades version 1 collections and repairs the active report", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.data[DefaultCollectionKey] = []byte(`{
			"reports": [
				{"id": "a", "name": "A", "isActive": true, "investments": [{"date": "2023-01-01", "amount": 5}]},
				{"id": "b", "name": "B", "isActive": true}
			],
			"activeReportId": "missing"
		}`)

		store, _ := newTestStore(t, storage)
		assertSingleActive(t, store)

		active, _ := store.ActiveReport()
		if active.ID != "a" {
			t.Errorf("expected first report promoted, got %s", active.ID)
		}
		if active.Investments[0].ID == "" || active.Investments[0].Unit != entity.UnitSats {
			t.Errorf("expected v1 record to be filled, got %+v", active.Investments[0])
		}
		b, _ := store.Report("b")
		if b.Withdrawals == nil || b.Profits == nil {
			t.Error("expected nil record lists to become empty")
		}
		if v := storage.stored(t, DefaultCollectionKey).Version; v != entity.CurrentSchemaVersion {
			t.Errorf("expected upgraded version persisted, got %q", v)
		}
	})

	t.Run("recreates the default report when the stored collection is empty", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.data[DefaultCollectionKey] = []byte(`{"reports": [], "activeReportId": "", "version": "2.0.0"}`)

		store, _ := newTestStore(t, storage)
		assertSingleActive(t, store)

		active, err := store.ActiveReport()
		if err != nil {
			t.Fatalf("ActiveReport() error = %v", err)
		}
		if active.Name != DefaultReportName {
			t.Errorf("expected %q, got %q", DefaultReportName, active.Name)
		}
		if stored := storage.stored(t, DefaultCollectionKey); len(stored.Reports) != 1 || stored.ActiveReportID != active.ID {
			t.Errorf("expected repaired collection persisted, got %+v", stored)
		}
	})

	t.Run("rejects collections from a newer schema", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.data[DefaultCollectionKey] = []byte(`{"reports": [], "version": "9.0.0"}`)

		store := NewStore(storage, nil, DefaultCollectionKey)
		err := store.Load(context.Background())
		if !errors.Is(err, domainerror.ErrUnsupportedSchemaVersion) {
			t.Errorf("expected ErrUnsupportedSchemaVersion, got %v", err)
		}
	})
}

func TestStore_ReportLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the active report promotes another", func(t *testing.T) {
		store, publisher := newTestStore(t, newMemoryStorage())
		a, _ := store.ActiveReport()
		b, err := store.CreateReport(ctx, "B", "")
		if err != nil {
			t.Fatalf("CreateReport() error = %v", err)
		}
		if b.IsActive {
			t.Error("expected new report to be inactive")
		}

		if err := store.DeleteReport(ctx, a.ID); err != nil {
			t.Fatalf("DeleteReport() error = %v", err)
		}

		collection, _ := store.Collection()
		if collection.ActiveReportID != b.ID {
			t.Errorf("expected %s active, got %s", b.ID, collection.ActiveReportID)
		}
		assertSingleActive(t, store)

		names := publisher.names()
		if names[len(names)-2] != entity.EventReportDeleted || names[len(names)-1] != entity.EventReportSelected {
			t.Errorf("unexpected events %v", names)
		}
	})

	t.Run("deleting the last report is rejected", func(t *testing.T) {
		store, _ := newTestStore(t, newMemoryStorage())
		a, _ := store.ActiveReport()

		err := store.DeleteReport(ctx, a.ID)
		if !errors.Is(err, domainerror.ErrLastReport) {
			t.Errorf("expected ErrLastReport, got %v", err)
		}
		reports, _ := store.Reports()
		if len(reports) != 1 {
			t.Errorf("expected report to survive, got %d reports", len(reports))
		}
	})

	t.Run("selecting the active report is a no-op", func(t *testing.T) {
		storage := newMemoryStorage()
		store, publisher := newTestStore(t, storage)
		a, _ := store.ActiveReport()
		puts := storage.puts

		if err := store.SelectActiveReport(ctx, a.ID); err != nil {
			t.Fatalf("SelectActiveReport() error = %v", err)
		}
		if storage.puts != puts || len(publisher.names()) != 0 {
			t.Error("expected no persistence and no event")
		}
	})

	t.Run("single active invariant holds across operations", func(t *testing.T) {
		store, _ := newTestStore(t, newMemoryStorage())
		var ids []string
		for i := 0; i < 4; i++ {
			r, err := store.CreateReport(ctx, fmt.Sprintf("R%d", i), "")
			if err != nil {
				t.Fatalf("CreateReport() error = %v", err)
			}
			ids = append(ids, r.ID)
			assertSingleActive(t, store)
		}

		steps := []func() error{
			func() error { return store.SelectActiveReport(ctx, ids[2]) },
			func() error { return store.DeleteReport(ctx, ids[2]) },
			func() error { return store.SelectActiveReport(ctx, ids[0]) },
			func() error { return store.DeleteReport(ctx, ids[3]) },
			func() error { return store.DeleteReport(ctx, ids[0]) },
		}
		for i, step := range steps {
			if err := step(); err != nil {
				t.Fatalf("step %d error = %v", i, err)
			}
			assertSingleActive(t, store)
		}
	})

	t.Run("rename validates and emits report-updated", func(t *testing.T) {
		store, publisher := newTestStore(t, newMemoryStorage())
		a, _ := store.ActiveReport()

		empty := "   "
		if _, err := store.UpdateReport(ctx, a.ID, UpdateReportInput{Name: &empty}); !errors.Is(err, domainerror.ErrInvalidReportName) {
			t.Errorf("expected ErrInvalidReportName, got %v", err)
		}

		name := "  Cold storage "
		updated, err := store.UpdateReport(ctx, a.ID, UpdateReportInput{Name: &name})
		if err != nil {
			t.Fatalf("UpdateReport() error = %v", err)
		}
		if updated.Name != "Cold storage" {
			t.Errorf("expected trimmed name, got %q", updated.Name)
		}
		if names := publisher.names(); names[len(names)-1] != entity.EventReportUpdated {
			t.Errorf("expected report-updated, got %v", names)
		}
	})

	t.Run("associating a config is idempotent", func(t *testing.T) {
		store, _ := newTestStore(t, newMemoryStorage())
		a, _ := store.ActiveReport()

		for i := 0; i < 2; i++ {
			if err := store.AssociateConfig(ctx, a.ID, "cfg-1"); err != nil {
				t.Fatalf("AssociateConfig() error = %v", err)
			}
		}
		got, _ := store.Report(a.ID)
		if len(got.AssociatedLNMarketsConfigIDs) != 1 {
			t.Errorf("expected one association, got %v", got.AssociatedLNMarketsConfigIDs)
		}
	})
}

func TestStore_AddRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("targets the active report and generates an id", func(t *testing.T) {
		store, publisher := newTestStore(t, newMemoryStorage())
		a, _ := store.ActiveReport()

		outcome := store.AddRecord(ctx, entity.Record{
			Kind:       entity.RecordKindInvestment,
			RecordBase: entity.RecordBase{Date: "2024-01-01", Amount: decimal.NewFromInt(1000)},
		}, "", AddOptions{})

		if outcome.Result != entity.MergeResultAdded {
			t.Fatalf("expected added, got %+v", outcome)
		}
		if outcome.ReportID != a.ID || outcome.RecordID == "" {
			t.Errorf("unexpected outcome %+v", outcome)
		}
		got, _ := store.Report(a.ID)
		if got.Investments[0].Unit != entity.UnitSats {
			t.Errorf("expected default unit SATS, got %s", got.Investments[0].Unit)
		}
		if got.Revision != a.Revision+1 {
			t.Errorf("expected revision bump, got %d", got.Revision)
		}
		if names := publisher.names(); len(names) != 1 || names[0] != entity.EventInvestmentAdded {
			t.Errorf("expected investment-added, got %v", names)
		}
	})

	t.Run("preserves deterministic ids", func(t *testing.T) {
		store, _ := newTestStore(t, newMemoryStorage())
		record := profit("lnm_trade_t1", 100, true)
		record.ID = "lnm_trade_t1_100"

		outcome := store.AddRecord(ctx, record, "", AddOptions{})
		if outcome.RecordID != "lnm_trade_t1_100" {
			t.Errorf("expected composite id preserved, got %s", outcome.RecordID)
		}
	})

	t.Run("final guard rejects same upstream id and value", func(t *testing.T) {
		store, _ := newTestStore(t, newMemoryStorage())

		first := store.AddRecord(ctx, profit("lnm_trade_t1", 100, true), "", AddOptions{})
		second := store.AddRecord(ctx, profit("lnm_trade_t1", 100, true), "", AddOptions{})
		third := store.AddRecord(ctx, profit("lnm_trade_t1", 50, false), "", AddOptions{})

		if first.Result != entity.MergeResultAdded {
			t.Errorf("first: expected added, got %s", first.Result)
		}
		if second.Result != entity.MergeResultDuplicate {
			t.Errorf("second: expected duplicate, got %s", second.Result)
		}
		if third.Result != entity.MergeResultAdded {
			t.Errorf("third: expected added for a different settled value, got %s", third.Result)
		}
	})

	t.Run("suppressed notifications emit nothing until bulk completion", func(t *testing.T) {
		store, publisher := newTestStore(t, newMemoryStorage())
		a, _ := store.ActiveReport()

		store.AddRecord(ctx, profit("lnm_trade_t1", 100, true), a.ID, AddOptions{SuppressNotify: true})
		store.AddRecord(ctx, profit("lnm_trade_t2", 200, true), a.ID, AddOptions{SuppressNotify: true})
		if len(publisher.names()) != 0 {
			t.Fatalf("expected no events, got %v", publisher.names())
		}

		store.NotifyBulkCompleted(ctx, a.ID, map[string]any{"imported": 2})
		if names := publisher.names(); len(names) != 1 || names[0] != entity.EventBulkOperationCompleted {
			t.Errorf("expected bulk-operation-completed, got %v", names)
		}
	})

	t.Run("returns error outcomes instead of failing", func(t *testing.T) {
		store, _ := newTestStore(t, newMemoryStorage())

		tests := []struct {
			name     string
			record   entity.Record
			reportID string
		}{
			{"unknown report", profit("x", 1, true), "missing"},
			{"negative amount", entity.Record{Kind: entity.RecordKindInvestment, RecordBase: entity.RecordBase{Date: "2024-01-01", Amount: decimal.NewFromInt(-1)}}, ""},
			{"bad date", entity.Record{Kind: entity.RecordKindInvestment, RecordBase: entity.RecordBase{Date: "yesterday", Amount: decimal.NewFromInt(1)}}, ""},
			{"bad kind", entity.Record{Kind: "gift", RecordBase: entity.RecordBase{Date: "2024-01-01", Amount: decimal.NewFromInt(1)}}, ""},
			{"bad unit", entity.Record{Kind: entity.RecordKindInvestment, RecordBase: entity.RecordBase{Date: "2024-01-01", Amount: decimal.NewFromInt(1), Unit: "EUR"}}, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				outcome := store.AddRecord(ctx, tt.record, tt.reportID, AddOptions{})
				if outcome.Result != entity.MergeResultError || outcome.Reason == "" {
					t.Errorf("expected error outcome with reason, got %+v", outcome)
				}
			})
		}
	})

	t.Run("persistence failure leaves memory unchanged", func(t *testing.T) {
		storage := newMemoryStorage()
		store, publisher := newTestStore(t, storage)
		storage.failPut = errors.New("disk full")

		outcome := store.AddRecord(ctx, profit("lnm_trade_t1", 100, true), "", AddOptions{})
		if outcome.Result != entity.MergeResultError {
			t.Fatalf("expected error outcome, got %+v", outcome)
		}
		active, _ := store.ActiveReport()
		if len(active.Profits) != 0 {
			t.Error("expected no record in memory after failed persist")
		}
		if len(publisher.names()) != 0 {
			t.Error("expected no event after failed persist")
		}
	})
}

func TestStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store, publisher := newTestStore(t, newMemoryStorage())
	a, _ := store.ActiveReport()

	first := store.AddRecord(ctx, profit("lnm_trade_t1", 100, true), "", AddOptions{})
	store.AddRecord(ctx, profit("lnm_trade_t2", 100, true), "", AddOptions{})
	store.AddRecord(ctx, profit("lnm_trade_t3", 100, true), "", AddOptions{})

	t.Run("delete one record", func(t *testing.T) {
		if err := store.DeleteRecord(ctx, a.ID, entity.RecordKindProfit, first.RecordID); err != nil {
			t.Fatalf("DeleteRecord() error = %v", err)
		}
		got, _ := store.Report(a.ID)
		if len(got.Profits) != 2 {
			t.Errorf("expected 2 profits, got %d", len(got.Profits))
		}
		if names := publisher.names(); names[len(names)-1] != entity.EventProfitDeleted {
			t.Errorf("expected profit-deleted, got %v", names)
		}
	})

	t.Run("delete unknown record", func(t *testing.T) {
		err := store.DeleteRecord(ctx, a.ID, entity.RecordKindProfit, "nope")
		if !errors.Is(err, domainerror.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("bulk clear one kind", func(t *testing.T) {
		removed, err := store.BulkClear(ctx, a.ID, entity.RecordKindProfit)
		if err != nil {
			t.Fatalf("BulkClear() error = %v", err)
		}
		if removed != 2 {
			t.Errorf("expected 2 removed, got %d", removed)
		}
		got, _ := store.Report(a.ID)
		if len(got.Profits) != 0 {
			t.Errorf("expected no profits, got %d", len(got.Profits))
		}
		if names := publisher.names(); names[len(names)-1] != entity.EventBulkOperationCompleted {
			t.Errorf("expected bulk-operation-completed, got %v", names)
		}
	})
}

func TestStore_NotLoaded(t *testing.T) {
	store := NewStore(newMemoryStorage(), nil, "")

	if _, err := store.Reports(); !errors.Is(err, domainerror.ErrStoreNotLoaded) {
		t.Errorf("expected ErrStoreNotLoaded, got %v", err)
	}
	outcome := store.AddRecord(context.Background(), profit("x", 1, true), "", AddOptions{})
	if outcome.Result != entity.MergeResultError {
		t.Errorf("expected error outcome, got %+v", outcome)
	}
}

func investment(date string, amount int64) entity.Record {
	return entity.Record{
		Kind: entity.RecordKindInvestment,
		RecordBase: entity.RecordBase{
			Date:   date,
			Amount: decimal.NewFromInt(amount),
			Unit:   entity.UnitSats,
		},
	}
}

func prefixedIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestStore_SharedStorage(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T, storage *memoryStorage, prefix string) *Store {
		t.Helper()
		store := NewStore(storage, nil, DefaultCollectionKey, WithIDGenerator(prefixedIDs(prefix)))
		if err := store.Load(ctx); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return store
	}

	t.Run("writers on one storage keep each other's records", func(t *testing.T) {
		storage := newMemoryStorage()
		cli := open(t, storage, "cli")
		api := open(t, storage, "api")

		first := cli.AddRecord(ctx, investment("2024-01-01", 1000), "", AddOptions{SuppressNotify: true})
		second := api.AddRecord(ctx, investment("2024-01-02", 2000), "", AddOptions{})
		if first.Result != entity.MergeResultAdded || second.Result != entity.MergeResultAdded {
			t.Fatalf("expected both adds to succeed, got %s and %s", first.Result, second.Result)
		}

		fresh := open(t, storage, "fresh")
		active, err := fresh.ActiveReport()
		if err != nil {
			t.Fatalf("ActiveReport() error = %v", err)
		}
		if len(active.Investments) != 2 {
			t.Errorf("expected 2 persisted investments, got %d", len(active.Investments))
		}

		// the first writer sees the second one's record on its next mutation
		if _, err := cli.CreateReport(ctx, "Savings", ""); err != nil {
			t.Fatalf("CreateReport() error = %v", err)
		}
		mine, _ := cli.ActiveReport()
		if len(mine.Investments) != 2 {
			t.Errorf("expected refreshed view with 2 investments, got %d", len(mine.Investments))
		}
	})

	t.Run("a write that loses the race is recomputed", func(t *testing.T) {
		storage := newMemoryStorage()
		cli := open(t, storage, "cli")
		api := open(t, storage, "api")

		storage.beforePut = func() {
			if outcome := api.AddRecord(ctx, investment("2024-01-02", 2000), "", AddOptions{}); outcome.Result != entity.MergeResultAdded {
				t.Errorf("expected interleaved add to succeed, got %+v", outcome)
			}
		}
		outcome := cli.AddRecord(ctx, investment("2024-01-01", 1000), "", AddOptions{})
		if outcome.Result != entity.MergeResultAdded {
			t.Fatalf("expected add to succeed after retry, got %+v", outcome)
		}
		if storage.conflicts != 1 {
			t.Errorf("expected 1 conflict, got %d", storage.conflicts)
		}
		if got := storage.stored(t, DefaultCollectionKey).Reports[0].Investments; len(got) != 2 {
			t.Errorf("expected 2 persisted investments, got %d", len(got))
		}
	})

	t.Run("the duplicate guard sees records written by another store", func(t *testing.T) {
		storage := newMemoryStorage()
		cli := open(t, storage, "cli")
		api := open(t, storage, "api")

		if outcome := cli.AddRecord(ctx, profit("t1", 100, true), "", AddOptions{}); outcome.Result != entity.MergeResultAdded {
			t.Fatalf("expected first add, got %+v", outcome)
		}
		if outcome := api.AddRecord(ctx, profit("lnm_trade_t1", 100, true), "", AddOptions{}); outcome.Result != entity.MergeResultDuplicate {
			t.Errorf("expected duplicate, got %+v", outcome)
		}
	})
}

func TestStore_DuplicateGuardNormalizesIDs(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, newMemoryStorage())

	if outcome := store.AddRecord(ctx, profit("t1", 100, true), "", AddOptions{}); outcome.Result != entity.MergeResultAdded {
		t.Fatalf("expected first add, got %+v", outcome)
	}

	tests := []struct {
		name       string
		originalID string
		amount     int64
		want       entity.MergeResult
	}{
		{"canonical prefix", "lnm_trade_t1", 100, entity.MergeResultDuplicate},
		{"short prefix", "lnm_t1", 100, entity.MergeResultDuplicate},
		{"different settled value", "lnm_trade_t1", 50, entity.MergeResultAdded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := store.AddRecord(ctx, profit(tt.originalID, tt.amount, true), "", AddOptions{})
			if outcome.Result != tt.want {
				t.Errorf("expected %s, got %+v", tt.want, outcome)
			}
		})
	}
}
