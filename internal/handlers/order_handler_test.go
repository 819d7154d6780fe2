package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoteliq/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestOrderHandler_CreateOrder(t *testing.T) {
	env := newTestEnv()

	t.Run("restaurant order with a table", func(t *testing.T) {
		w := env.do(t, "POST", "/orders", map[string]any{
			"type":         "RESTAURANT",
			"table_number": 12,
			"items": []map[string]any{
				{"item_ref": "m-1", "name": "Club sandwich", "quantity": 2, "unit_price": 1250},
			},
			"currency": "USD",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var order models.Order
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
		assert.Equal(t, models.OrderPending, order.Status)
	})

	t.Run("restaurant order without a table", func(t *testing.T) {
		w := env.do(t, "POST", "/orders", map[string]any{
			"type": "RESTAURANT",
			"items": []map[string]any{
				{"item_ref": "m-1", "name": "Soup", "quantity": 1, "unit_price": 500},
			},
			"currency": "USD",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty item list fails validation", func(t *testing.T) {
		w := env.do(t, "POST", "/orders", map[string]any{
			"type":         "RESTAURANT",
			"table_number": 3,
			"items":        []map[string]any{},
			"currency":     "USD",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Lifecycle(t *testing.T) {
	env := newTestEnv()
	folioID := env.openFolio(t)

	w := env.do(t, "POST", "/orders", map[string]any{
		"type":        "HOTEL_GUEST",
		"room_number": "412",
		"folio_id":    folioID,
		"items": []map[string]any{
			{"item_ref": "m-1", "name": "Club sandwich", "quantity": 2, "unit_price": 1250},
		},
		"currency": "USD",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	transition := func(status string) *httptest.ResponseRecorder {
		return env.do(t, "POST", "/orders/"+order.ID+"/status", map[string]any{"status": status})
	}

	t.Run("cannot skip to served", func(t *testing.T) {
		w := transition("SERVED")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("forward path bills the folio on served", func(t *testing.T) {
		for _, status := range []string{"PREPARING", "READY", "SERVED"} {
			w := transition(status)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		balance, err := env.folios.BalanceOf(folioID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2500), balance)
	})

	t.Run("redelivered served event reports duplicate", func(t *testing.T) {
		w := transition("SERVED")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["duplicate"])

		balance, err := env.folios.BalanceOf(folioID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2500), balance)
	})

	t.Run("get returns the served order", func(t *testing.T) {
		w := env.do(t, "GET", "/orders/"+order.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var got models.Order
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, models.OrderServed, got.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		w := env.do(t, "GET", "/orders/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReportHandler_GetSummary(t *testing.T) {
	env := newTestEnv()
	folioID := env.openFolio(t)

	w := env.do(t, "POST", "/folios/"+folioID+"/transactions", map[string]any{
		"id":       "stay-1",
		"amount":   45000,
		"currency": "USD",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, "GET", "/reports/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var summary models.ReportSummary
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, int64(45000), summary.TotalOutstanding)
	assert.Equal(t, 1, summary.OpenFolios)
}

func TestQRHandler(t *testing.T) {
	env := newTestEnv()
	folioID := env.openFolio(t)

	w := env.do(t, "POST", "/folios/"+folioID+"/transactions", map[string]any{
		"id":       "stay-1",
		"amount":   45000,
		"currency": "USD",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, "POST", "/folios/"+folioID+"/qr", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var generated struct {
		QRCode string `json:"qrCode"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	assert.NotEmpty(t, generated.QRCode)

	t.Run("code processes once", func(t *testing.T) {
		w := env.do(t, "POST", "/qr/process", map[string]any{"qrData": generated.QRCode})
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, "POST", "/qr/process", map[string]any{"qrData": generated.QRCode})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
