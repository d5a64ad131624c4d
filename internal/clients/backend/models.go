package backend

// TradeRecord is one row of the backend's authoritative trade history.
type TradeRecord struct {
	ID       int     `json:"id,omitempty"`
	Asset    string  `json:"Asset"`
	Quantity float64 `json:"Quantity"`
	Time     string  `json:"Time"` // ISO timestamp as stored by the backend
	Price    float64 `json:"Price"`
	Action   string  `json:"Action"`
}

// AggregatePosition is one held position as reported by the backend.
type AggregatePosition struct {
	Asset        string  `json:"Asset"`
	Quantity     float64 `json:"Quantity"`
	AveragePrice float64 `json:"Average_Price"`
}

// Change holds fractional day/year price changes for one asset.
type Change struct {
	Day  float64 `json:"Day"`
	Year float64 `json:"Year"`
}

// TradeConfirmation is the backend's response to a submitted trade.
type TradeConfirmation struct {
	Message string `json:"message"`
}

// GroupStat is the value/change breakdown for one sector.
type GroupStat struct {
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// AggStats groups portfolio exposure by sector and industry.
type AggStats struct {
	Sectors    map[string]GroupStat          `json:"sectors"`
	Industries map[string]map[string]float64 `json:"industries"`
}
