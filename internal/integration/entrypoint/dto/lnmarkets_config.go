package dto

import (
	"time"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// CreateLNMarketsConfigRequest represents the request body for registering credentials.
type CreateLNMarketsConfigRequest struct {
	Name       string `json:"name,omitempty" binding:"omitempty,max=100"`
	APIKey     string `json:"apiKey" binding:"required"`
	APISecret  string `json:"apiSecret" binding:"required"`
	Passphrase string `json:"passphrase" binding:"required"`
	Network    string `json:"network,omitempty" binding:"omitempty,oneof=mainnet testnet"`
}

// LNMarketsConfigResponse represents a config in API responses. Secrets
// are never returned.
type LNMarketsConfigResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"apiKey"`
	Network   string    `json:"network"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LNMarketsConfigListResponse represents the response for listing configs.
type LNMarketsConfigListResponse struct {
	Configs []LNMarketsConfigResponse `json:"configs"`
}

// ToLNMarketsConfigResponse converts a domain config to its DTO.
func ToLNMarketsConfigResponse(c *entity.LNMarketsConfig) LNMarketsConfigResponse {
	return LNMarketsConfigResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		APIKey:    maskKey(c.APIKey),
		Network:   string(c.Network),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToLNMarketsConfigListResponse converts configs to a list DTO.
func ToLNMarketsConfigListResponse(configs []*entity.LNMarketsConfig) LNMarketsConfigListResponse {
	items := make([]LNMarketsConfigResponse, 0, len(configs))
	for _, c := range configs {
		items = append(items, ToLNMarketsConfigResponse(c))
	}
	return LNMarketsConfigListResponse{Configs: items}
}

// maskKey keeps the last four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
