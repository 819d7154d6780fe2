package models

// ReportSummary is a read-only aggregate over a set of folios, consumed by
// the dashboard and report screens. Always an immutable snapshot.
type ReportSummary struct {
	TotalOutstanding  int64                `json:"total_outstanding"` // minor units
	OpenFolios        int                  `json:"open_folios"`
	ClosedFolios      int                  `json:"closed_folios"`
	ChargeCount       int                  `json:"charge_count"`
	PaymentCount      int                  `json:"payment_count"`
	RevenueByCategory map[SourceType]int64 `json:"revenue_by_category"`
}
