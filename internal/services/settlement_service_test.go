package services

import (
	"strings"
	"testing"
	"time"

	"github.com/hoteliq/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func closedTestFolio() *models.Folio {
	now := time.Now().UTC()
	return &models.Folio{
		ID:        "folio-1",
		BookingID: "booking-1",
		GuestRef:  "Guest, A",
		Currency:  "USD",
		Status:    models.FolioClosed,
		ClosedAt:  &now,
		Charges: []models.Charge{
			{ID: "c-1", Amount: 45000},
		},
		Payments: []models.Payment{
			{ID: "p-1", Amount: 30000, Currency: "USD", Method: models.MethodCardPayment, Reference: "auth-77"},
			{ID: "p-2", Amount: 10000, Currency: "USD", Method: models.MethodCash},
			{ID: "p-3", Amount: 5000, Currency: "USD", Method: models.MethodBankTransfer, Reference: "wire-3"},
		},
	}
}

func TestSettlementService_CreatePacs008(t *testing.T) {
	svc := NewSettlementService("HOTELIQL", "000001")
	folio := closedTestFolio()

	t.Run("card payment produces a credit transfer", func(t *testing.T) {
		doc, err := svc.CreatePacs008(folio, &folio.Payments[0])
		assert.NoError(t, err)
		assert.NotEmpty(t, doc.GrpHdr.MsgId)
		assert.Equal(t, "auth-77", string(doc.CdtTrfTxInf[0].PmtId.EndToEndId))
		assert.InDelta(t, 300.00, doc.CdtTrfTxInf[0].IntrBkSttlmAmt.Value, 0.001)
		assert.Equal(t, "USD", string(doc.CdtTrfTxInf[0].IntrBkSttlmAmt.Ccy))
	})

	t.Run("cash does not settle via clearing", func(t *testing.T) {
		_, err := svc.CreatePacs008(folio, &folio.Payments[1])
		assert.ErrorIs(t, err, ErrSourceNotBillable)
	})
}

func TestSettlementService_ExportFolio(t *testing.T) {
	svc := NewSettlementService("", "")

	t.Run("only closed folios export", func(t *testing.T) {
		folio := closedTestFolio()
		folio.Status = models.FolioOpen
		_, err := svc.ExportFolio(folio)
		assert.True(t, IsKind(err, KindState))
	})

	t.Run("cash payments are excluded", func(t *testing.T) {
		docs, err := svc.ExportFolio(closedTestFolio())
		assert.NoError(t, err)
		assert.Len(t, docs, 2)
		for _, doc := range docs {
			assert.True(t, strings.HasPrefix(doc, "<?xml"))
		}
	})

	t.Run("refund entries are excluded", func(t *testing.T) {
		folio := closedTestFolio()
		folio.Payments = append(folio.Payments, models.Payment{
			ID: "p-4", Amount: -5000, Currency: "USD", Method: models.MethodCardPayment, Reference: "refund spa-9",
		})
		docs, err := svc.ExportFolio(folio)
		assert.NoError(t, err)
		assert.Len(t, docs, 2)
	})
}

func TestSettlementService_CreatePacs002(t *testing.T) {
	svc := NewSettlementService("HOTELIQL", "000001")
	payment := &models.Payment{ID: "p-1", Reference: "auth-77"}

	doc, err := svc.CreatePacs002(payment, "ACSC")
	assert.NoError(t, err)
	assert.Equal(t, "p-1", string(*doc.TxInfAndSts[0].OrgnlInstrId))
	assert.Equal(t, "ACSC", string(*doc.TxInfAndSts[0].TxSts))
}
