package pricing

import (
	"strings"
	"testing"
	"time"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

func testBuyer() models.Visitor {
	return models.Visitor{
		ID:    "visitor-1",
		Name:  "Budi Santoso",
		Email: "budi@example.com",
		Phone: "+6281234567890",
	}
}

func testPaymentMethod() models.PaymentMethod {
	return models.PaymentMethod{ID: "pm-cash", Name: "Cash"}
}

func TestBuildMemberTransaction(t *testing.T) {
	builder := NewBuilder(NewEngine(studentAgeMax))
	promo := &models.PromoCode{ID: "promo-1", Code: "MARCH50", DiscountPrice: 50000, Type: models.PromoRegular, IsActive: true}

	txn, invoice, err := builder.Build(BuildRequest{
		Buyer:           testBuyer(),
		Package:         memberPackage(),
		PromoCode:       promo,
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-01",
		StartDate:       "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if txn.ID == "" {
		t.Error("Expected a generated transaction ID")
	}
	if txn.BuyerID != "visitor-1" || txn.PackageID != "pkg-member" || txn.PaymentMethodID != "pm-cash" {
		t.Errorf("Unexpected references on transaction: %+v", txn)
	}
	if txn.PromoCodeID == nil || *txn.PromoCodeID != "promo-1" {
		t.Errorf("Expected promo code id promo-1, got %v", txn.PromoCodeID)
	}
	if txn.TotalPrice != 450000 {
		t.Errorf("Expected total price 450000, got %d", txn.TotalPrice)
	}

	if !strings.HasPrefix(invoice.Number, "INV-") {
		t.Errorf("Expected invoice number with INV- prefix, got %s", invoice.Number)
	}
	if invoice.TransactionDate != "2024-03-01" {
		t.Errorf("Expected transaction date 2024-03-01, got %s", invoice.TransactionDate)
	}
	if invoice.Buyer.Name != "Budi Santoso" {
		t.Errorf("Expected buyer name on invoice, got %s", invoice.Buyer.Name)
	}
	if len(invoice.Items) != 2 {
		t.Fatalf("Expected 2 invoice items, got %d", len(invoice.Items))
	}
	if invoice.Items[0].Description != "Monthly Membership" || invoice.Items[0].Amount != 500000 {
		t.Errorf("Unexpected package line: %+v", invoice.Items[0])
	}
	if invoice.Items[1].Description != "Promo MARCH50" || invoice.Items[1].Amount != -50000 {
		t.Errorf("Unexpected promo line: %+v", invoice.Items[1])
	}
	if invoice.TotalPrice != 450000 {
		t.Errorf("Expected invoice total 450000, got %d", invoice.TotalPrice)
	}
	if invoice.Validity == nil {
		t.Fatal("Expected a validity section")
	}
	if invoice.Validity.StartDate != "2024-03-01" || invoice.Validity.ExpiryDate != "2024-03-30" {
		t.Errorf("Unexpected validity window: %+v", invoice.Validity)
	}
	if invoice.Sessions != nil {
		t.Error("Expected no sessions section for MEMBER package")
	}
	if invoice.PaymentMethod != "Cash" {
		t.Errorf("Expected payment method Cash, got %s", invoice.PaymentMethod)
	}
}

func TestBuildSessionsTransaction(t *testing.T) {
	builder := NewBuilder(NewEngine(studentAgeMax))

	txn, invoice, err := builder.Build(BuildRequest{
		Buyer:           testBuyer(),
		Package:         sessionsPackage(),
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if txn.StartDate != nil || txn.ExpiryDate != nil {
		t.Error("Expected no validity window on SESSIONS transaction")
	}
	if txn.RemainingPermittedSessions == nil || *txn.RemainingPermittedSessions != 10 {
		t.Errorf("Expected 10 remaining sessions, got %v", txn.RemainingPermittedSessions)
	}
	if invoice.Validity != nil {
		t.Error("Expected no validity section on invoice")
	}
	if invoice.Sessions == nil || invoice.Sessions.Remaining != 10 {
		t.Errorf("Expected sessions section with 10 remaining, got %+v", invoice.Sessions)
	}
	if len(invoice.Items) != 1 {
		t.Errorf("Expected single invoice item without promo, got %d", len(invoice.Items))
	}
}

func TestBuildClampedPromoLine(t *testing.T) {
	builder := NewBuilder(NewEngine(studentAgeMax))
	promo := &models.PromoCode{ID: "promo-4", Code: "MEGA", DiscountPrice: 750000, Type: models.PromoRegular, IsActive: true}

	txn, invoice, err := builder.Build(BuildRequest{
		Buyer:           testBuyer(),
		Package:         memberPackage(),
		PromoCode:       promo,
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-01",
		StartDate:       "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if txn.TotalPrice != 0 {
		t.Errorf("Expected total clamped to 0, got %d", txn.TotalPrice)
	}
	// the promo line shows the applied discount, not the nominal one
	if invoice.Items[1].Amount != -500000 {
		t.Errorf("Expected promo line of -500000, got %d", invoice.Items[1].Amount)
	}
}

func TestRebuildKeepsIdentity(t *testing.T) {
	builder := NewBuilder(NewEngine(studentAgeMax))

	txn, _, err := builder.Build(BuildRequest{
		Buyer:           testBuyer(),
		Package:         memberPackage(),
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-01",
		StartDate:       "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	txn.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	rebuilt, _, err := builder.Rebuild(txn, BuildRequest{
		Buyer:           testBuyer(),
		Package:         sessionsPackage(),
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-05",
	})
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	if rebuilt.ID != txn.ID {
		t.Errorf("Expected rebuilt transaction to keep id %s, got %s", txn.ID, rebuilt.ID)
	}
	if !rebuilt.CreatedAt.Equal(txn.CreatedAt) {
		t.Errorf("Expected rebuilt transaction to keep creation time")
	}
	// switching to a SESSIONS package drops the validity window entirely
	if rebuilt.StartDate != nil || rebuilt.ExpiryDate != nil {
		t.Error("Expected validity window cleared after package change")
	}
	if rebuilt.RemainingPermittedSessions == nil || *rebuilt.RemainingPermittedSessions != 10 {
		t.Errorf("Expected remaining sessions reset to 10, got %v", rebuilt.RemainingPermittedSessions)
	}
}

func TestRebuildRejectsBadPromo(t *testing.T) {
	builder := NewBuilder(NewEngine(studentAgeMax))

	txn, _, err := builder.Build(BuildRequest{
		Buyer:           testBuyer(),
		Package:         memberPackage(),
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-01",
		StartDate:       "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	inactive := &models.PromoCode{ID: "promo-9", Code: "GONE", DiscountPrice: 10000, Type: models.PromoRegular, IsActive: false}
	if _, _, err := builder.Rebuild(txn, BuildRequest{
		Buyer:           testBuyer(),
		Package:         memberPackage(),
		PromoCode:       inactive,
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-01",
		StartDate:       "2024-03-01",
	}); err == nil {
		t.Error("Expected rebuild with inactive promo to fail")
	}
}

func TestProjectInvoiceRemainingDays(t *testing.T) {
	builder := NewBuilder(NewEngine(studentAgeMax))

	txn, _, err := builder.Build(BuildRequest{
		Buyer:           testBuyer(),
		Package:         memberPackage(),
		PaymentMethod:   testPaymentMethod(),
		TransactionDate: "2024-03-01",
		StartDate:       "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// re-projecting later shrinks the remaining-days figure only
	halfway := time.Date(2024, 3, 16, 8, 0, 0, 0, businessZone)
	invoice := ProjectInvoice(txn, memberPackage(), nil, testBuyer(), testPaymentMethod(), halfway)
	if invoice.Validity == nil {
		t.Fatal("Expected a validity section")
	}
	if invoice.Validity.RemainingDays != 15 {
		t.Errorf("Expected 15 remaining days, got %d", invoice.Validity.RemainingDays)
	}
	if invoice.TotalPrice != 500000 {
		t.Errorf("Expected stored total unchanged, got %d", invoice.TotalPrice)
	}
}
