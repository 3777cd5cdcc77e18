package pricing

import "errors"

var (
	// ErrInvalidDate indicates an unparsable calendar date input
	ErrInvalidDate = errors.New("invalid date")

	// ErrPromoNotApplicable wraps the evaluator's rejection reason
	ErrPromoNotApplicable = errors.New("promo code not applicable")

	ErrPromoInactive      = errors.New("promo code is inactive")
	ErrPromoAgeIneligible = errors.New("buyer is not eligible for a student promo code")
)
