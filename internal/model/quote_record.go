package model

// Quote operations.
const (
	OpSwap        = "swap"
	OpReverseSwap = "reverse_swap"
	OpProvide     = "provide"
	OpWithdraw    = "withdraw"
)

// QuoteRecord is the normalized representation of a priced operation for
// storage. Amounts are base-10 strings.
type QuoteRecord struct {
	PoolID      string  `json:"pool_id"`
	PoolType    string  `json:"pool_type"`
	Operation   string  `json:"operation"`
	Offer       []Asset `json:"offer,omitempty"`
	Return      []Asset `json:"return,omitempty"`
	Spread      string  `json:"spread_amount,omitempty"`
	Commission  string  `json:"commission_amount,omitempty"`
	Share       string  `json:"share,omitempty"`
	LockedShare string  `json:"locked_share,omitempty"`
	FeePart     string  `json:"fee_part,omitempty"`
	Timestamp   uint64  `json:"timestamp"`
	QuotedAt    string  `json:"quoted_at,omitempty"`
}
