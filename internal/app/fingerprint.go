package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
)

const fingerprintVersion = "v1"

// Fingerprint identifies the content of a request. Equal requests computed
// under the same engine variant share a fingerprint. Price histories keep
// their order, since the last inserted price anchors the forecast.
func Fingerprint(req model.ForecastRequest, variant string) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(fingerprintVersion))
	h.Write([]byte{0})
	h.Write([]byte(variant))
	h.Write([]byte{0})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), nil
}
