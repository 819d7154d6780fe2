package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
)

const qrTTL = 5 * time.Minute

// QRService issues one-shot payment codes for a folio's outstanding balance.
// The guest scans the code at checkout; processing it consumes the code so a
// stale screenshot cannot settle twice.
type QRService struct {
	folios *FolioService
	redis  *redis.Client

	mu    sync.Mutex
	codes map[string]qrPayload // fallback when redis is unavailable
}

type qrPayload struct {
	FolioID   string `json:"folioId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
	expiresAt time.Time
}

func NewQRService(folios *FolioService, rdb *redis.Client) *QRService {
	return &QRService{
		folios: folios,
		redis:  rdb,
		codes:  make(map[string]qrPayload),
	}
}

// GeneratePaymentQR encodes the folio's current outstanding balance. Returns
// the opaque code and a base64 PNG for display.
func (s *QRService) GeneratePaymentQR(ctx context.Context, folioID string) (string, string, error) {
	folio, err := s.folios.Get(folioID)
	if err != nil {
		return "", "", err
	}

	balance := folio.Balance()
	if balance <= 0 {
		return "", "", stateErr(folioID, ErrBalanceNotZero, "folio has no outstanding balance")
	}

	payload := qrPayload{
		FolioID:   folioID,
		Amount:    balance,
		Currency:  folio.Currency,
		Timestamp: time.Now().Unix(),
		Nonce:     s.generateNonce(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}
	code := base64.URLEncoding.EncodeToString(jsonData)

	if err := s.stash(ctx, code, payload, jsonData); err != nil {
		return "", "", err
	}

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	return code, base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ProcessPaymentQR consumes a scanned code and returns its payload. A code
// is valid exactly once.
func (s *QRService) ProcessPaymentQR(ctx context.Context, code string) (map[string]any, error) {
	key := fmt.Sprintf("qr:%s", code)

	if s.redis != nil {
		data, err := s.redis.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil, validationErr("", ErrSourceNotBillable, "invalid or expired QR code")
		}
		if err != nil {
			return nil, err
		}
		s.redis.Del(ctx, key)

		var result map[string]any
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return result, nil
	}

	s.mu.Lock()
	payload, ok := s.codes[code]
	delete(s.codes, code)
	s.mu.Unlock()
	if !ok || time.Now().After(payload.expiresAt) {
		return nil, validationErr("", ErrSourceNotBillable, "invalid or expired QR code")
	}
	return map[string]any{
		"folioId":   payload.FolioID,
		"amount":    payload.Amount,
		"currency":  payload.Currency,
		"timestamp": payload.Timestamp,
		"nonce":     payload.Nonce,
	}, nil
}

func (s *QRService) stash(ctx context.Context, code string, payload qrPayload, jsonData []byte) error {
	if s.redis != nil {
		key := fmt.Sprintf("qr:%s", code)
		return s.redis.Set(ctx, key, jsonData, qrTTL).Err()
	}

	payload.expiresAt = time.Now().Add(qrTTL)
	s.mu.Lock()
	s.codes[code] = payload
	s.mu.Unlock()
	return nil
}

func (s *QRService) generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
