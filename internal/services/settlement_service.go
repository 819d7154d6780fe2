package services

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hoteliq/backend/internal/models"
	"github.com/hoteliq/backend/internal/money"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/moov-io/iso20022/pkg/pacs_v08"
)

// SettlementService exports card and bank-transfer payments of a folio as
// ISO 20022 messages for the accounting back office. Cash, vouchers and the
// rest settle at the desk and never leave the property.
type SettlementService struct {
	propertyBIC string
	clearingID  string
}

func NewSettlementService(propertyBIC, clearingID string) *SettlementService {
	if propertyBIC == "" {
		propertyBIC = "HOTELIQL"
	}
	if clearingID == "" {
		clearingID = "000001"
	}
	return &SettlementService{propertyBIC: propertyBIC, clearingID: clearingID}
}

func settleable(m models.PaymentMethod) bool {
	return m == models.MethodCardPayment || m == models.MethodBankTransfer
}

// CreatePacs008 builds a pacs.008 FIToFICustomerCreditTransfer for one
// settleable payment.
func (s *SettlementService) CreatePacs008(folio *models.Folio, payment *models.Payment) (*pacs_v08.FIToFICustomerCreditTransferV08, error) {
	if !settleable(payment.Method) {
		return nil, validationErr(payment.ID, ErrSourceNotBillable, "method %s does not settle via clearing", payment.Method)
	}

	amount, err := money.MajorUnits(payment.Amount, payment.Currency)
	if err != nil {
		return nil, validationErr(payment.ID, err, "payment currency")
	}

	msgID := uuid.New().String()
	now := time.Now()

	doc := &pacs_v08.FIToFICustomerCreditTransferV08{
		GrpHdr: pacs_v08.GroupHeader93{
			MsgId:   common.Max35Text(msgID),
			CreDtTm: common.ISODateTime(now),
			NbOfTxs: "1",
			TtlIntrBkSttlmAmt: &pacs_v08.ActiveCurrencyAndAmount{
				Ccy:   common.ActiveCurrencyCode(payment.Currency),
				Value: amount,
			},
			IntrBkSttlmDt: (*common.ISODate)(&now),
			SttlmInf: pacs_v08.SettlementInstruction7{
				SttlmMtd: "CLRG",
			},
		},
		CdtTrfTxInf: []pacs_v08.CreditTransferTransaction39{
			{
				PmtId: pacs_v08.PaymentIdentification7{
					InstrId:    &[]common.Max35Text{common.Max35Text(payment.ID)}[0],
					EndToEndId: common.Max35Text(payment.Reference),
					TxId:       &[]common.Max35Text{common.Max35Text(payment.ID)}[0],
				},
				IntrBkSttlmAmt: pacs_v08.ActiveCurrencyAndAmount{
					Ccy:   common.ActiveCurrencyCode(payment.Currency),
					Value: amount,
				},
				IntrBkSttlmDt: (*common.ISODate)(&now),
				ChrgBr:        "SLEV",
				DbtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						ClrSysMmbId: &pacs_v08.ClearingSystemMemberIdentification2{
							MmbId: common.Max35Text(s.clearingID),
						},
					},
				},
				Dbtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(folio.GuestRef)}[0],
				},
				CdtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier(s.propertyBIC)}[0],
					},
				},
				Cdtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text("Folio " + folio.ID)}[0],
				},
			},
		},
	}

	return doc, nil
}

// CreatePacs002 builds the payment status report acknowledging a settlement.
func (s *SettlementService) CreatePacs002(payment *models.Payment, status string) (*pacs_v08.FIToFIPaymentStatusReportV08, error) {
	msgID := uuid.New().String()
	now := time.Now()

	doc := &pacs_v08.FIToFIPaymentStatusReportV08{
		GrpHdr: pacs_v08.GroupHeader53{
			MsgId:   common.Max35Text(msgID),
			CreDtTm: common.ISODateTime(now),
		},
		TxInfAndSts: []pacs_v08.PaymentTransaction80{
			{
				OrgnlInstrId:    &[]common.Max35Text{common.Max35Text(payment.ID)}[0],
				OrgnlEndToEndId: &[]common.Max35Text{common.Max35Text(payment.Reference)}[0],
				OrgnlTxId:       &[]common.Max35Text{common.Max35Text(payment.ID)}[0],
				TxSts:           &[]pacs_v08.ExternalPaymentTransactionStatus1Code{pacs_v08.ExternalPaymentTransactionStatus1Code(status)}[0],
			},
		},
	}

	return doc, nil
}

// ExportFolio renders a pacs.008 XML document for every settleable payment
// on a closed folio.
func (s *SettlementService) ExportFolio(folio *models.Folio) ([]string, error) {
	if folio.Status != models.FolioClosed {
		return nil, stateErr(folio.ID, ErrBalanceNotZero, "folio %s is not closed; settle at checkout first", folio.ID)
	}

	var docs []string
	for i := range folio.Payments {
		p := &folio.Payments[i]
		if !settleable(p.Method) || p.Amount <= 0 {
			continue
		}
		doc, err := s.CreatePacs008(folio, p)
		if err != nil {
			return nil, err
		}
		out, err := s.ConvertToXML(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, out)
	}
	return docs, nil
}

// ConvertToXML marshals an ISO 20022 document to an XML string.
func (s *SettlementService) ConvertToXML(doc interface{}) (string, error) {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}
