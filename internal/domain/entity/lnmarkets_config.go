package entity

import (
	"time"

	"github.com/google/uuid"
)

// LNMarketsNetwork selects the LN Markets environment.
type LNMarketsNetwork string

const (
	LNMarketsMainnet LNMarketsNetwork = "mainnet"
	LNMarketsTestnet LNMarketsNetwork = "testnet"
)

// LNMarketsConfig holds one set of API credentials a user registered.
type LNMarketsConfig struct {
	ID           uuid.UUID
	UserIdentity string
	Name         string
	APIKey       string
	APISecret    string
	Passphrase   string
	Network      LNMarketsNetwork
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLNMarketsConfig creates a new LNMarketsConfig entity.
func NewLNMarketsConfig(userIdentity, name, apiKey, apiSecret, passphrase string, network LNMarketsNetwork) *LNMarketsConfig {
	now := time.Now().UTC()
	if network == "" {
		network = LNMarketsMainnet
	}

	return &LNMarketsConfig{
		ID:           uuid.New(),
		UserIdentity: userIdentity,
		Name:         name,
		APIKey:       apiKey,
		APISecret:    apiSecret,
		Passphrase:   passphrase,
		Network:      network,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
