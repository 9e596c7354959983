// Package lnmarkets implements the page fetcher against the LN Markets REST API.
package lnmarkets

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// Header names of the LN Markets v2 authentication scheme.
const (
	HeaderKey        = "LNM-ACCESS-KEY"
	HeaderPassphrase = "LNM-ACCESS-PASSPHRASE"
	HeaderTimestamp  = "LNM-ACCESS-TIMESTAMP"
	HeaderSignature  = "LNM-ACCESS-SIGNATURE"
)

// Sign returns base64(HMAC-SHA256(secret, timestamp + method + path + query)).
// query is the encoded query string without the leading '?'.
func Sign(secret, timestamp, method, path, query string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + path + query))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// authenticate adds the signed auth headers for config to req.
func authenticate(req *http.Request, config *entity.LNMarketsConfig, now time.Time) {
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)
	signature := Sign(config.APISecret, timestamp, req.Method, req.URL.Path, req.URL.RawQuery)

	req.Header.Set(HeaderKey, config.APIKey)
	req.Header.Set(HeaderPassphrase, config.Passphrase)
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderSignature, signature)
}
