package pricing

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

// Builder assembles priced transaction records and their invoice
// projections. Persistence is the caller's concern.
type Builder struct {
	engine *Engine
}

func NewBuilder(engine *Engine) *Builder {
	return &Builder{engine: engine}
}

type BuildRequest struct {
	Buyer           models.Visitor
	Package         models.Package
	PromoCode       *models.PromoCode
	PaymentMethod   models.PaymentMethod
	TransactionDate string
	StartDate       string
}

// Build creates a new transaction record and its invoice. Inputs are never
// mutated.
func (b *Builder) Build(req BuildRequest) (*models.PackageTransaction, *Invoice, error) {
	return b.assemble(uuid.NewString(), req)
}

// Rebuild re-runs the full pricing computation for an existing transaction,
// keeping its identity. There is no incremental patch path: the derived
// fields always come from the current package+promo+date inputs, so they can
// never drift.
func (b *Builder) Rebuild(existing *models.PackageTransaction, req BuildRequest) (*models.PackageTransaction, *Invoice, error) {
	txn, invoice, err := b.assemble(existing.ID, req)
	if err != nil {
		return nil, nil, err
	}
	txn.CreatedAt = existing.CreatedAt
	return txn, invoice, nil
}

func (b *Builder) assemble(id string, req BuildRequest) (*models.PackageTransaction, *Invoice, error) {
	quote, err := b.engine.Price(PriceRequest{
		Package:         req.Package,
		PromoCode:       req.PromoCode,
		BuyerBirthDate:  req.Buyer.BirthDate,
		TransactionDate: req.TransactionDate,
		StartDate:       req.StartDate,
	})
	if err != nil {
		return nil, nil, err
	}

	txnDate, err := StartOfDay(req.TransactionDate)
	if err != nil {
		return nil, nil, err
	}

	txn := &models.PackageTransaction{
		ID:                         id,
		BuyerID:                    req.Buyer.ID,
		PackageID:                  req.Package.ID,
		PaymentMethodID:            req.PaymentMethod.ID,
		TransactionDate:            txnDate,
		StartDate:                  quote.StartDate,
		ExpiryDate:                 quote.ExpiryDate,
		TotalPrice:                 quote.TotalPrice,
		RemainingPermittedSessions: quote.RemainingSessions,
	}
	if req.PromoCode != nil {
		promoID := req.PromoCode.ID
		txn.PromoCodeID = &promoID
	}

	invoice := ProjectInvoice(txn, req.Package, req.PromoCode, req.Buyer, req.PaymentMethod, txnDate)
	return txn, invoice, nil
}

// Invoice is a display-ready projection of a transaction. Amounts are minor
// currency units; rendering them to a locale string is the caller's concern.
type Invoice struct {
	Number          string           `json:"number"`
	TransactionDate string           `json:"transaction_date"`
	Buyer           InvoiceBuyer     `json:"buyer"`
	Items           []InvoiceItem    `json:"items"`
	TotalPrice      int64            `json:"total_price"`
	Validity        *InvoiceValidity `json:"validity,omitempty"`
	Sessions        *InvoiceSessions `json:"sessions,omitempty"`
	PaymentMethod   string           `json:"payment_method"`
}

type InvoiceBuyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type InvoiceItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type InvoiceValidity struct {
	StartDate     string `json:"start_date"`
	ExpiryDate    string `json:"expiry_date"`
	RemainingDays int    `json:"remaining_days"`
}

type InvoiceSessions struct {
	Remaining int32 `json:"remaining"`
}

// ProjectInvoice renders the invoice projection for a transaction. now only
// affects the remaining-days figure, so a stored record can be re-projected
// at any later time.
func ProjectInvoice(txn *models.PackageTransaction, pkg models.Package, promo *models.PromoCode, buyer models.Visitor, method models.PaymentMethod, now time.Time) *Invoice {
	items := []InvoiceItem{{Description: pkg.Name, Amount: pkg.Price}}
	if promo != nil {
		// the applied discount may be smaller than the nominal one when clamped
		applied := pkg.Price - txn.TotalPrice
		items = append(items, InvoiceItem{Description: "Promo " + promo.Code, Amount: -applied})
	}

	invoice := &Invoice{
		Number:          invoiceNumber(txn.ID),
		TransactionDate: FormatDate(txn.TransactionDate),
		Buyer:           InvoiceBuyer{Name: buyer.Name, Email: buyer.Email, Phone: buyer.Phone},
		Items:           items,
		TotalPrice:      txn.TotalPrice,
		PaymentMethod:   method.Name,
	}

	if txn.StartDate != nil && txn.ExpiryDate != nil {
		invoice.Validity = &InvoiceValidity{
			StartDate:     FormatDate(*txn.StartDate),
			ExpiryDate:    FormatDate(*txn.ExpiryDate),
			RemainingDays: RemainingDays(now, *txn.ExpiryDate),
		}
	}
	if txn.RemainingPermittedSessions != nil {
		invoice.Sessions = &InvoiceSessions{Remaining: *txn.RemainingPermittedSessions}
	}
	return invoice
}

func invoiceNumber(txnID string) string {
	short := strings.ToUpper(strings.ReplaceAll(txnID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return "INV-" + short
}
