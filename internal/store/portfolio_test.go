package store

import (
	"errors"
	"testing"
	"time"

	"github.com/Florianperidy/crashledger/internal/domain"
)

func TestMemoryPortfolioStore_GetReturnsSnapshot(t *testing.T) {
	s := NewMemoryPortfolioStore()
	now := time.Now()
	if err := s.Create(domain.NewStarterPortfolio("u1", "a@example.com", now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := s.GetByUser("u1")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	p.Asset(domain.SymbolFiat).Amount = 0

	fresh, err := s.GetByUser("u1")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if fresh.Asset(domain.SymbolFiat).Amount != domain.StarterFiatBalance {
		t.Error("mutating a returned portfolio changed the stored document")
	}
}

func TestMemoryPortfolioStore_UpdateAssets(t *testing.T) {
	s := NewMemoryPortfolioStore()
	now := time.Now()
	if err := s.Create(domain.NewStarterPortfolio("u1", "a@example.com", now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := s.GetByUser("u1")
	p.Asset("BTC").Amount = 2
	later := now.Add(time.Minute)
	if err := s.UpdateAssets("u1", p.Assets, later); err != nil {
		t.Fatalf("UpdateAssets: %v", err)
	}

	fresh, _ := s.GetByUser("u1")
	if fresh.Asset("BTC").Amount != 2 {
		t.Errorf("BTC = %v, want 2", fresh.Asset("BTC").Amount)
	}
	if !fresh.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", fresh.UpdatedAt, later)
	}
}

func TestMemoryPortfolioStore_UpdateAssetsUnknownUser(t *testing.T) {
	s := NewMemoryPortfolioStore()
	err := s.UpdateAssets("ghost", nil, time.Now())
	if !errors.Is(err, domain.ErrPortfolioNotFound) {
		t.Errorf("got %v, want ErrPortfolioNotFound", err)
	}
}

func TestMemoryPortfolioStore_CreditExisting(t *testing.T) {
	s := NewMemoryPortfolioStore()
	now := time.Now()
	if err := s.Create(domain.NewStarterPortfolio("u1", "a@example.com", now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tmpl := domain.Asset{Symbol: domain.SymbolFiat, Name: "Euro", IsFiat: true}
	if err := s.Credit("u1", tmpl, 15, now); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	p, _ := s.GetByUser("u1")
	if got := p.Asset(domain.SymbolFiat).Amount; got != domain.StarterFiatBalance+15 {
		t.Errorf("fiat = %v, want %v", got, float64(domain.StarterFiatBalance+15))
	}
}

func TestMemoryPortfolioStore_CreditCreatesLineItem(t *testing.T) {
	s := NewMemoryPortfolioStore()
	now := time.Now()
	if err := s.Create(&domain.Portfolio{UserID: "u1", Email: "a@example.com", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tmpl := domain.Asset{Symbol: domain.SymbolGlitch, Name: "Glitch Token", IsGlitch: true}
	if err := s.Credit("u1", tmpl, 3, now); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	p, _ := s.GetByUser("u1")
	a := p.Asset(domain.SymbolGlitch)
	if a == nil {
		t.Fatal("credit did not create the line item")
	}
	if a.Amount != 3 {
		t.Errorf("amount = %v, want 3", a.Amount)
	}
	if !a.IsGlitch {
		t.Error("created line item lost the glitch flag")
	}
}
