package pricing

import (
	"fmt"
	"time"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

// CheckPromoApplicable decides whether a promo code may be applied for a
// buyer on the given date. The promo code is never mutated. studentAgeMax is
// inclusive: a buyer whose age is exactly the ceiling is still eligible.
// A STUDENT code with no birth date on file is rejected, since eligibility
// cannot be verified.
func CheckPromoApplicable(promo *models.PromoCode, birthDate *time.Time, today time.Time, studentAgeMax int) error {
	if !promo.IsActive {
		return notApplicable(ErrPromoInactive)
	}
	if promo.Type == models.PromoStudent {
		if birthDate == nil {
			return notApplicable(ErrPromoAgeIneligible)
		}
		if AgeOn(*birthDate, today) > studentAgeMax {
			return notApplicable(ErrPromoAgeIneligible)
		}
	}
	return nil
}

func notApplicable(reason error) error {
	return fmt.Errorf("%w: %w", ErrPromoNotApplicable, reason)
}

// AgeOn computes age in whole years on the given date: the calendar-year
// difference, decremented when the birthday has not yet occurred that year.
func AgeOn(birthDate, on time.Time) int {
	birth := birthDate.In(businessZone)
	ref := on.In(businessZone)
	age := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		age--
	}
	return age
}

// ApplyDiscount subtracts the discount from the price, clamped at zero so a
// discount can never drive a price negative.
func ApplyDiscount(price, discount int64) int64 {
	if discount >= price {
		return 0
	}
	return price - discount
}
