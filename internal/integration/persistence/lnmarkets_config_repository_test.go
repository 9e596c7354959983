package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

func TestLNMarketsConfigRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLNMarketsConfigRepository(newTestDB(t))

	mine := entity.NewLNMarketsConfig("alice", "Main account", "key", "secret", "pass", "")
	theirs := entity.NewLNMarketsConfig("bob", "Bob", "key2", "secret2", "pass2", entity.LNMarketsTestnet)
	for _, c := range []*entity.LNMarketsConfig{mine, theirs} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("find by id is scoped to the owner", func(t *testing.T) {
		got, err := repo.FindByID(ctx, "alice", mine.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.APISecret != "secret" || got.Network != entity.LNMarketsMainnet {
			t.Errorf("unexpected config %+v", got)
		}

		_, err = repo.FindByID(ctx, "alice", theirs.ID)
		if !errors.Is(err, domainerror.ErrLNMarketsConfigNotFound) {
			t.Errorf("expected ErrLNMarketsConfigNotFound, got %v", err)
		}
	})

	t.Run("find by user", func(t *testing.T) {
		got, err := repo.FindByUser(ctx, "bob")
		if err != nil {
			t.Fatalf("FindByUser() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != theirs.ID {
			t.Errorf("unexpected configs %+v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "alice", theirs.ID); !errors.Is(err, domainerror.ErrLNMarketsConfigNotFound) {
			t.Errorf("expected other users' configs to be untouchable, got %v", err)
		}
		if err := repo.Delete(ctx, "alice", mine.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.FindByID(ctx, "alice", mine.ID); !errors.Is(err, domainerror.ErrLNMarketsConfigNotFound) {
			t.Errorf("expected deleted config to be gone, got %v", err)
		}
		if err := repo.Delete(ctx, "alice", uuid.New()); !errors.Is(err, domainerror.ErrLNMarketsConfigNotFound) {
			t.Errorf("expected ErrLNMarketsConfigNotFound, got %v", err)
		}
	})
}
