package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/btc-tracker/backend/internal/application/usecase/report"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

func TestStorageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStorageRepository(newTestDB(t))

	t.Run("missing key", func(t *testing.T) {
		_, _, err := repo.Get(ctx, "nothing-here")
		if !errors.Is(err, domainerror.ErrStorageKeyNotFound) {
			t.Errorf("expected ErrStorageKeyNotFound, got %v", err)
		}
	})

	t.Run("put then overwrite", func(t *testing.T) {
		rev, err := repo.Put(ctx, "k", []byte(`{"v":1}`), 0)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		rev, err = repo.Put(ctx, "k", []byte(`{"v":2}`), rev)
		if err != nil {
			t.Fatalf("second Put() error = %v", err)
		}
		got, stored, err := repo.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `{"v":2}` {
			t.Errorf("expected overwritten value, got %s", got)
		}
		if stored != rev || rev != 2 {
			t.Errorf("expected revision 2, got put=%d get=%d", rev, stored)
		}
	})

	t.Run("stale revisions are rejected", func(t *testing.T) {
		rev, err := repo.Put(ctx, "cas", []byte(`{"v":1}`), 0)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if _, err := repo.Put(ctx, "cas", []byte(`{"v":"other"}`), 0); !errors.Is(err, domainerror.ErrStorageConflict) {
			t.Errorf("expected ErrStorageConflict on second create, got %v", err)
		}
		if _, err := repo.Put(ctx, "cas", []byte(`{"v":2}`), rev); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if _, err := repo.Put(ctx, "cas", []byte(`{"v":"stale"}`), rev); !errors.Is(err, domainerror.ErrStorageConflict) {
			t.Errorf("expected ErrStorageConflict on stale update, got %v", err)
		}
		got, _, _ := repo.Get(ctx, "cas")
		if string(got) != `{"v":2}` {
			t.Errorf("expected the winning write to survive, got %s", got)
		}
	})
}

func TestStorageRepository_BacksReportStore(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	store := report.NewStore(NewStorageRepository(db), nil, "")
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	created, err := store.CreateReport(ctx, "Cold storage", "")
	if err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}
	if err := store.SelectActiveReport(ctx, created.ID); err != nil {
		t.Fatalf("SelectActiveReport() error = %v", err)
	}

	reloaded := report.NewStore(NewStorageRepository(db), nil, "")
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	active, err := reloaded.ActiveReport()
	if err != nil {
		t.Fatalf("ActiveReport() error = %v", err)
	}
	if active.ID != created.ID {
		t.Errorf("expected %s active after reload, got %s", created.ID, active.ID)
	}
}

func TestStorageRepository_StoresShareDatabase(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	cli := report.NewStore(NewStorageRepository(db), nil, "")
	api := report.NewStore(NewStorageRepository(db), nil, "")
	for _, s := range []*report.Store{cli, api} {
		if err := s.Load(ctx); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}

	deposit := func(date string) entity.Record {
		return entity.Record{
			Kind:       entity.RecordKindInvestment,
			RecordBase: entity.RecordBase{Date: date, Amount: decimal.NewFromInt(1000), Unit: entity.UnitSats},
		}
	}
	if outcome := cli.AddRecord(ctx, deposit("2024-01-01"), "", report.AddOptions{SuppressNotify: true}); outcome.Result != entity.MergeResultAdded {
		t.Fatalf("cli AddRecord() = %+v", outcome)
	}
	if outcome := api.AddRecord(ctx, deposit("2024-01-02"), "", report.AddOptions{}); outcome.Result != entity.MergeResultAdded {
		t.Fatalf("api AddRecord() = %+v", outcome)
	}

	reloaded := report.NewStore(NewStorageRepository(db), nil, "")
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	active, err := reloaded.ActiveReport()
	if err != nil {
		t.Fatalf("ActiveReport() error = %v", err)
	}
	if len(active.Investments) != 2 {
		t.Errorf("expected both investments persisted, got %d", len(active.Investments))
	}
}
