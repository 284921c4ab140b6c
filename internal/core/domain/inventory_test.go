package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestInsufficientStockError(t *testing.T) {
	err := fmt.Errorf("deliver: %w", &InsufficientStockError{Channel: Dark})

	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("expected errors.Is to match ErrInsufficientStock")
	}
	var short *InsufficientStockError
	if !errors.As(err, &short) || short.Channel != Dark {
		t.Errorf("expected dark channel, got %v", short)
	}
	if got := short.Error(); got != "not enough dark ml available" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestSignatureDebit(t *testing.T) {
	got := Signature{2, 1, 1, 0}.Debit(3)
	if got != (LiquidInventory{6, 3, 3, 0}) {
		t.Errorf("unexpected debit %v", got)
	}
	if total := got.Total(); total != 12 {
		t.Errorf("expected total 12, got %d", total)
	}
}

func TestChannelString(t *testing.T) {
	names := []string{"green", "red", "blue", "dark"}
	for i, ch := range Channels {
		if ch.String() != names[i] {
			t.Errorf("channel %d: expected %s, got %s", i, names[i], ch)
		}
	}
	if Channel(9).String() != "channel(9)" {
		t.Errorf("unexpected name for out of range channel: %s", Channel(9))
	}
}

func TestParseChannel(t *testing.T) {
	ch, ok := ParseChannel("Blue")
	if !ok || ch != Blue {
		t.Errorf("expected blue, got %v %v", ch, ok)
	}
	if _, ok := ParseChannel("purple"); ok {
		t.Error("expected purple to be rejected")
	}
}
