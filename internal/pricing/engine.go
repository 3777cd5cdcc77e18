package pricing

import (
	"time"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

// Engine turns a (package, promo code, dates) tuple into a priced, dated
// quote. It is pure and safe for concurrent use.
type Engine struct {
	studentAgeMax int
}

func NewEngine(studentAgeMax int) *Engine {
	return &Engine{studentAgeMax: studentAgeMax}
}

// Quote is the priced projection of a package purchase. StartDate and
// ExpiryDate are nil for session-based packages; RemainingSessions is nil
// for validity-based ones.
type Quote struct {
	TotalPrice        int64
	StartDate         *time.Time
	ExpiryDate        *time.Time
	RemainingSessions *int32
}

type PriceRequest struct {
	Package         models.Package
	PromoCode       *models.PromoCode
	BuyerBirthDate  *time.Time
	TransactionDate string
	StartDate       string
}

// Price computes the quote. The transaction date doubles as the reference
// date for student-age checks. MEMBER and VISIT share one validity formula;
// a one-day VISIT is simply the validity=1 instance of it.
func (e *Engine) Price(req PriceRequest) (*Quote, error) {
	if err := req.Package.Validate(); err != nil {
		return nil, err
	}

	txnDate, err := StartOfDay(req.TransactionDate)
	if err != nil {
		return nil, err
	}

	price := req.Package.Price
	if req.PromoCode != nil {
		if err := CheckPromoApplicable(req.PromoCode, req.BuyerBirthDate, txnDate, e.studentAgeMax); err != nil {
			return nil, err
		}
		price = ApplyDiscount(price, req.PromoCode.DiscountPrice)
	}

	quote := &Quote{TotalPrice: price}
	switch req.Package.Type {
	case models.PackageSessions:
		sessions := *req.Package.ApprovedSessions
		quote.RemainingSessions = &sessions
	default:
		start, err := StartOfDay(req.StartDate)
		if err != nil {
			return nil, err
		}
		expiry, err := AddDays(req.StartDate, *req.Package.ValidityInDays)
		if err != nil {
			return nil, err
		}
		quote.StartDate = &start
		quote.ExpiryDate = &expiry
	}
	return quote, nil
}
