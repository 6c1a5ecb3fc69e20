package domain

import "time"

// Symbols with special meaning across the exchange.
const (
	SymbolFiat   = "EUR"
	SymbolGlitch = "GLITCH"
)

// StarterFiatBalance is the EUR balance granted at registration.
const StarterFiatBalance = 10000

// Asset is one balance line item in a portfolio.
type Asset struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	IsFiat   bool    `json:"isFiat"`
	IsGlitch bool    `json:"isGlitch,omitempty"`
}

// Portfolio holds all asset balances for one user. Symbols are unique
// within the asset list.
type Portfolio struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Assets    []Asset   `json:"assets"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Asset returns a pointer to the line item for symbol, or nil if the
// portfolio does not hold it.
func (p *Portfolio) Asset(symbol string) *Asset {
	for i := range p.Assets {
		if p.Assets[i].Symbol == symbol {
			return &p.Assets[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the portfolio. Stores hand out clones so
// that callers mutate a snapshot, mirroring document-store reads.
func (p *Portfolio) Clone() *Portfolio {
	cp := *p
	cp.Assets = make([]Asset, len(p.Assets))
	copy(cp.Assets, p.Assets)
	return &cp
}

// NewStarterPortfolio builds the portfolio granted at registration: the
// starter EUR balance plus zero balances of every tradeable asset.
func NewStarterPortfolio(userID, email string, now time.Time) *Portfolio {
	return &Portfolio{
		UserID: userID,
		Email:  email,
		Assets: []Asset{
			{Symbol: SymbolFiat, Name: "Euro", Amount: StarterFiatBalance, IsFiat: true},
			{Symbol: "BTC", Name: "Bitcoin"},
			{Symbol: "ETH", Name: "Ethereum"},
			{Symbol: "SOL", Name: "Solana"},
			{Symbol: SymbolGlitch, Name: "Glitch Token", IsGlitch: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
