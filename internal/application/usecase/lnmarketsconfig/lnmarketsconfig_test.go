package lnmarketsconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

type memoryRepo struct {
	configs map[uuid.UUID]*entity.LNMarketsConfig
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{configs: make(map[uuid.UUID]*entity.LNMarketsConfig)}
}

func (r *memoryRepo) Create(_ context.Context, c *entity.LNMarketsConfig) error {
	r.configs[c.ID] = c
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, user string, id uuid.UUID) (*entity.LNMarketsConfig, error) {
	c, ok := r.configs[id]
	if !ok || c.UserIdentity != user {
		return nil, domainerror.ErrLNMarketsConfigNotFound
	}
	return c, nil
}

func (r *memoryRepo) FindByUser(_ context.Context, user string) ([]*entity.LNMarketsConfig, error) {
	var out []*entity.LNMarketsConfig
	for _, c := range r.configs {
		if c.UserIdentity == user {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) Delete(_ context.Context, user string, id uuid.UUID) error {
	c, ok := r.configs[id]
	if !ok || c.UserIdentity != user {
		return domainerror.ErrLNMarketsConfigNotFound
	}
	delete(r.configs, id)
	return nil
}

func TestCreateConfigUseCase(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreateConfigInput
		wantErr error
	}{
		{"valid", CreateConfigInput{UserIdentity: "u", APIKey: "k", APISecret: "s", Passphrase: "p"}, nil},
		{"testnet", CreateConfigInput{UserIdentity: "u", APIKey: "k", APISecret: "s", Passphrase: "p", Network: entity.LNMarketsTestnet}, nil},
		{"missing secret", CreateConfigInput{UserIdentity: "u", APIKey: "k", Passphrase: "p"}, domainerror.ErrLNMarketsCredentialsMissing},
		{"blank passphrase", CreateConfigInput{UserIdentity: "u", APIKey: "k", APISecret: "s", Passphrase: "  "}, domainerror.ErrLNMarketsCredentialsMissing},
		{"unknown network", CreateConfigInput{UserIdentity: "u", APIKey: "k", APISecret: "s", Passphrase: "p", Network: "regtest"}, domainerror.ErrLNMarketsInvalidNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			out, err := NewCreateConfigUseCase(repo).Execute(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if out.Config.Name != "LN Markets" || out.Config.Network == "" {
				t.Errorf("expected defaults to be applied, got %+v", out.Config)
			}
			if len(repo.configs) != 1 {
				t.Errorf("expected config to be stored")
			}
		})
	}
}

func TestListAndDeleteConfigUseCases(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	created, err := NewCreateConfigUseCase(repo).Execute(ctx, CreateConfigInput{UserIdentity: "u", Name: "Main", APIKey: "k", APISecret: "s", Passphrase: "p"})
	if err != nil {
		t.Fatalf("create error = %v", err)
	}

	list, err := NewListConfigsUseCase(repo).Execute(ctx, ListConfigsInput{UserIdentity: "u"})
	if err != nil || len(list.Configs) != 1 {
		t.Fatalf("unexpected list %+v, %v", list, err)
	}

	del := NewDeleteConfigUseCase(repo)
	if _, err := del.Execute(ctx, DeleteConfigInput{UserIdentity: "other", ConfigID: created.Config.ID}); !errors.Is(err, domainerror.ErrLNMarketsConfigNotFound) {
		t.Errorf("expected not found for another user, got %v", err)
	}
	out, err := del.Execute(ctx, DeleteConfigInput{UserIdentity: "u", ConfigID: created.Config.ID})
	if err != nil || !out.Success {
		t.Errorf("unexpected delete result %+v, %v", out, err)
	}
}
