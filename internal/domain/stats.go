package domain

// SellerStats aggregates a seller's settlement position: units sold, money
// still escrowed, money released, and any refund debt outstanding.
type SellerStats struct {
	SoldUnits     int
	PendingTotal  int64
	ReleasedTotal int64
	Debt          int64
}
