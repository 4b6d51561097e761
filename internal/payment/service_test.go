package payment

import (
	"context"
	"testing"

	"github.com/retakehq/retake/internal/billing"
)

func TestRecordDeposit(t *testing.T) {
	ledger := billing.NewMemoryRepository()
	billingSvc := billing.NewService(ledger, nil)
	svc := NewService(NewMemoryRepository(), billingSvc, nil)
	ctx := context.Background()

	p, err := svc.RecordDeposit(ctx, "user-1", "ch_123", "usd", 999, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected payment ID")
	}
	if p.ExternalID != "ch_123" {
		t.Errorf("expected external ID ch_123, got %s", p.ExternalID)
	}
	if p.Provider != ProviderStripe {
		t.Errorf("expected provider %s, got %s", ProviderStripe, p.Provider)
	}

	balance, err := billingSvc.AvailableCredits(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 60 {
		t.Errorf("expected balance 60, got %d", balance)
	}

	entries := ledger.Entries("user-1")
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].ChangeReason != billing.ReasonDeposit {
		t.Errorf("expected reason %s, got %s", billing.ReasonDeposit, entries[0].ChangeReason)
	}
	if entries[0].ForeignID != p.ID {
		t.Errorf("expected foreign ID %s, got %s", p.ID, entries[0].ForeignID)
	}
}

func TestRecordDeposit_DuplicateExternalID(t *testing.T) {
	ledger := billing.NewMemoryRepository()
	billingSvc := billing.NewService(ledger, nil)
	svc := NewService(NewMemoryRepository(), billingSvc, nil)
	ctx := context.Background()

	first, err := svc.RecordDeposit(ctx, "user-1", "ch_123", "usd", 999, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A redelivered provider webhook must not credit twice.
	second, err := svc.RecordDeposit(ctx, "user-1", "ch_123", "usd", 999, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the original payment back, got %s", second.ID)
	}

	balance, _ := billingSvc.AvailableCredits(ctx, "user-1")
	if balance != 60 {
		t.Errorf("expected balance 60 after duplicate, got %d", balance)
	}
}
