package services

import "strings"

type Instrument struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

type PlatformStats struct {
	TotalTraders int    `json:"total_traders"`
	TotalVolume  string `json:"total_volume"`
	ActiveStakes int    `json:"active_stakes"`
	TFTPrice     string `json:"tft_price"`
}

// MarketDataService serves the fixed instrument quotes and platform figures.
// There is no market feed behind it.
type MarketDataService struct {
	instruments []Instrument
	stats       PlatformStats
}

func NewMarketDataService() *MarketDataService {
	return &MarketDataService{
		instruments: []Instrument{
			{Symbol: "BTC/USDT", Price: 45000.00, Change: 2.5},
			{Symbol: "ETH/USDT", Price: 2800.00, Change: 1.8},
			{Symbol: "EUR/USD", Price: 1.1200, Change: -0.2},
			{Symbol: "XAU/USD", Price: 1950.00, Change: 0.8},
		},
		stats: PlatformStats{
			TotalTraders: 1250,
			TotalVolume:  "$2.5M",
			ActiveStakes: 890,
			TFTPrice:     "$0.45",
		},
	}
}

// Instruments returns a copy of the instrument list.
func (m *MarketDataService) Instruments() []Instrument {
	out := make([]Instrument, len(m.instruments))
	copy(out, m.instruments)
	return out
}

// Instrument looks a symbol up case-insensitively.
func (m *MarketDataService) Instrument(symbol string) (Instrument, bool) {
	for _, in := range m.instruments {
		if strings.EqualFold(in.Symbol, symbol) {
			return in, true
		}
	}
	return Instrument{}, false
}

func (m *MarketDataService) Stats() PlatformStats {
	return m.stats
}
