package lnmarkets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// maxErrorBody bounds how much of a failed response is kept as error text.
const maxErrorBody = 512

var paths = map[entity.ImportKind]string{
	entity.ImportKindTrade:      "/v2/futures",
	entity.ImportKindDeposit:    "/v2/user/deposits",
	entity.ImportKindWithdrawal: "/v2/user/withdrawals",
}

// Client fetches pages of trades, deposits and withdrawals for a stored
// credential set.
type Client struct {
	httpClient *http.Client
	configs    adapter.LNMarketsConfigRepository
	mainnetURL string
	testnetURL string
	now        func() time.Time
}

// NewClient creates a new Client.
func NewClient(configs adapter.LNMarketsConfigRepository, mainnetURL, testnetURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		configs:    configs,
		mainnetURL: strings.TrimRight(mainnetURL, "/"),
		testnetURL: strings.TrimRight(testnetURL, "/"),
		now:        time.Now,
	}
}

// FetchPage implements adapter.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, userIdentity, configID string, req entity.PageRequest) (*entity.PageResult, error) {
	path, ok := paths[req.Kind]
	if !ok {
		return nil, domainerror.NewImportError(domainerror.ErrCodeInvalidImportKind, "unknown import kind "+string(req.Kind), domainerror.ErrInvalidImportKind)
	}

	config, err := c.credentials(ctx, userIdentity, configID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if req.Kind == entity.ImportKindTrade {
		query.Set("type", "closed")
	}
	query.Set("limit", strconv.Itoa(req.Limit))
	query.Set("offset", strconv.Itoa(req.Offset))

	endpoint := c.baseURL(config.Network) + path + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lnmarkets request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	authenticate(httpReq, config, c.now())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lnmarkets request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lnmarkets response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		slog.Warn("LN Markets refused page",
			"kind", req.Kind,
			"offset", req.Offset,
			"status", resp.StatusCode,
		)
		return &entity.PageResult{
			Success: false,
			Error:   fmt.Sprintf("lnmarkets returned %d: %s", resp.StatusCode, text),
		}, nil
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode lnmarkets response: %w", err)
	}

	return &entity.PageResult{
		Success: true,
		Data:    records,
		IsEmpty: len(records) == 0,
	}, nil
}

func (c *Client) credentials(ctx context.Context, userIdentity, configID string) (*entity.LNMarketsConfig, error) {
	id, err := uuid.Parse(configID)
	if err != nil {
		return nil, domainerror.NewLNMarketsError(domainerror.ErrCodeLNMarketsConfigNotFound, "invalid lnmarkets config id", domainerror.ErrLNMarketsConfigNotFound)
	}
	config, err := c.configs.FindByID(ctx, userIdentity, id)
	if err != nil {
		return nil, err
	}
	if config.APIKey == "" || config.APISecret == "" || config.Passphrase == "" {
		return nil, domainerror.NewLNMarketsError(domainerror.ErrCodeLNMarketsCredentialsMissing, "lnmarkets config is incomplete", domainerror.ErrLNMarketsCredentialsMissing)
	}
	return config, nil
}

func (c *Client) baseURL(network entity.LNMarketsNetwork) string {
	if network == entity.LNMarketsTestnet && c.testnetURL != "" {
		return c.testnetURL
	}
	return c.mainnetURL
}

// decodeRecords accepts a bare array or an object wrapping it under a
// "data" member. Numbers stay json.Number so amounts keep full precision.
func decodeRecords(body []byte) ([]entity.RawRecord, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}

	if obj, ok := payload.(map[string]any); ok {
		payload = obj["data"]
	}
	if payload == nil {
		return nil, nil
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", payload)
	}

	records := make([]entity.RawRecord, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, entity.RawRecord(m))
		}
	}
	return records, nil
}
