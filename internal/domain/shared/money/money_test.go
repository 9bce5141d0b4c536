package money

import (
	"errors"
	"testing"
)

func TestNewNormalizesCurrency(t *testing.T) {
	m, err := New(1250, " usd ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Currency != "USD" || m.Amount != 1250 {
		t.Fatalf("unexpected value %+v", m)
	}
	if m.String() != "1250 USD" {
		t.Fatalf("unexpected string %q", m.String())
	}
}

func TestStringUsesTheStoredUnit(t *testing.T) {
	total := Must(100, "USD").Multiply(4)
	if total.Amount != 400 || total.String() != "400 USD" {
		t.Fatalf("unexpected total %+v %q", total, total.String())
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	if _, err := New(10, "US"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	if _, err := New(-1, "USD"); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestAddRequiresSameCurrency(t *testing.T) {
	total, err := Zero("USD").Add(Must(400, "USD"))
	if err != nil || total.Amount != 400 {
		t.Fatalf("unexpected result %+v, %v", total, err)
	}
	if _, err := Must(1, "USD").Add(Must(1, "EUR")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}
