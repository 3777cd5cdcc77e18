package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/lib/pq"
)

// Role represents a staff role
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleAdmin   Role = "ADMIN"
	RoleTrainer Role = "TRAINER"
)

// User represents a staff account that can log into the dashboard
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Visitor represents a gym visitor (the buyer of packages)
type Visitor struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// PackageType represents valid package kinds
type PackageType string

const (
	PackageMember   PackageType = "MEMBER"
	PackageVisit    PackageType = "VISIT"
	PackageSessions PackageType = "SESSIONS"
)

// Package represents a purchasable membership, visit, or session bundle.
// Prices are in minor currency units (IDR).
type Package struct {
	ID               string         `db:"id" json:"id"`
	Type             PackageType    `db:"type" json:"type"`
	Name             string         `db:"name" json:"name"`
	Price            int64          `db:"price" json:"price"`
	ValidityInDays   *int           `db:"validity_in_days" json:"validity_in_days,omitempty"`
	ApprovedSessions *int32         `db:"approved_sessions" json:"approved_sessions,omitempty"`
	SportIDs         pq.StringArray `db:"sport_ids" json:"sport_ids"`
	PlaceIDs         pq.StringArray `db:"place_ids" json:"place_ids"`
	TrainerIDs       pq.StringArray `db:"trainer_ids" json:"trainer_ids"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Validate enforces the package lifecycle invariant: MEMBER and VISIT
// packages are validity-driven, SESSIONS packages are session-driven,
// never both.
func (p *Package) Validate() error {
	if p.Price <= 0 {
		return fmt.Errorf("package price must be positive")
	}
	switch p.Type {
	case PackageMember, PackageVisit:
		if p.ValidityInDays == nil || *p.ValidityInDays <= 0 {
			return fmt.Errorf("validity_in_days must be positive for %s packages", p.Type)
		}
		if p.ApprovedSessions != nil {
			return fmt.Errorf("approved_sessions is not allowed for %s packages", p.Type)
		}
	case PackageSessions:
		if p.ApprovedSessions == nil || *p.ApprovedSessions <= 0 {
			return fmt.Errorf("approved_sessions must be positive for SESSIONS packages")
		}
		if p.ValidityInDays != nil {
			return fmt.Errorf("validity_in_days is not allowed for SESSIONS packages")
		}
		if len(p.TrainerIDs) == 0 {
			return fmt.Errorf("trainer_ids are required for SESSIONS packages")
		}
	default:
		return fmt.Errorf("unknown package type %q", p.Type)
	}
	return nil
}

// PromoType represents valid promo code kinds
type PromoType string

const (
	PromoRegular PromoType = "REGULAR"
	PromoStudent PromoType = "STUDENT"
)

var promoCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,}$`)

// PromoCode represents a discount code, optionally age-restricted
type PromoCode struct {
	ID            string    `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	DiscountPrice int64     `db:"discount_price" json:"discount_price"`
	Type          PromoType `db:"type" json:"type"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the code format and discount amount. Whether the discount
// fits a given package price is checked at apply time, not here.
func (p *PromoCode) Validate() error {
	if !promoCodePattern.MatchString(p.Code) {
		return fmt.Errorf("promo code must be uppercase alphanumeric with at least 4 characters")
	}
	if p.DiscountPrice <= 0 {
		return fmt.Errorf("discount_price must be positive")
	}
	if p.Type != PromoRegular && p.Type != PromoStudent {
		return fmt.Errorf("unknown promo type %q", p.Type)
	}
	return nil
}

// PaymentMethod represents a way to pay for a transaction
type PaymentMethod struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PackageTransaction represents a priced, dated package purchase. The derived
// fields (total_price, start/expiry dates, remaining sessions) are always
// recomputed from their package+promo+date inputs, never edited directly.
type PackageTransaction struct {
	ID                         string     `db:"id" json:"id"`
	BuyerID                    string     `db:"buyer_id" json:"buyer_id"`
	PackageID                  string     `db:"package_id" json:"package_id"`
	PaymentMethodID            string     `db:"payment_method_id" json:"payment_method_id"`
	PromoCodeID                *string    `db:"promo_code_id" json:"promo_code_id,omitempty"`
	TransactionDate            time.Time  `db:"transaction_date" json:"transaction_date"`
	StartDate                  *time.Time `db:"start_date" json:"start_date,omitempty"`
	ExpiryDate                 *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	TotalPrice                 int64      `db:"total_price" json:"total_price"`
	RemainingPermittedSessions *int32     `db:"remaining_permitted_sessions" json:"remaining_permitted_sessions,omitempty"`
	CreatedAt                  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at" json:"updated_at"`
}

// API Request types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateVisitorRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date,omitempty"`
}

type CreatePackageRequest struct {
	Type             PackageType `json:"type"`
	Name             string      `json:"name"`
	Price            int64       `json:"price"`
	ValidityInDays   *int        `json:"validity_in_days,omitempty"`
	ApprovedSessions *int32      `json:"approved_sessions,omitempty"`
	SportIDs         []string    `json:"sport_ids,omitempty"`
	PlaceIDs         []string    `json:"place_ids,omitempty"`
	TrainerIDs       []string    `json:"trainer_ids,omitempty"`
}

type CreatePromoCodeRequest struct {
	Code          string    `json:"code"`
	DiscountPrice int64     `json:"discount_price"`
	Type          PromoType `json:"type"`
	IsActive      bool      `json:"is_active"`
}

type CheckPromoCodeRequest struct {
	Code      string `json:"code"`
	PackageID string `json:"package_id"`
	BirthDate string `json:"birth_date,omitempty"`
}

type CreateTransactionRequest struct {
	BuyerID         string `json:"buyer_id"`
	PackageID       string `json:"package_id"`
	PaymentMethodID string `json:"payment_method_id"`
	PromoCode       string `json:"promo_code,omitempty"`
	TransactionDate string `json:"transaction_date"`
	StartDate       string `json:"start_date,omitempty"`
}

// UpdateTransactionRequest rebuilds a transaction from scratch. A nil
// PromoCode keeps the promo code already attached to the transaction; an
// empty string removes it.
type UpdateTransactionRequest struct {
	PackageID       string  `json:"package_id,omitempty"`
	PaymentMethodID string  `json:"payment_method_id,omitempty"`
	PromoCode       *string `json:"promo_code,omitempty"`
	TransactionDate string  `json:"transaction_date,omitempty"`
	StartDate       string  `json:"start_date,omitempty"`
}
