package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

// Lookups return (nil, nil) when no row matches; callers decide whether
// that is an error.

// GetUserByEmail retrieves a staff user by email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := db.GetContext(ctx, &user,
		`SELECT id, email, password_hash, role, created_at, updated_at
		 FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateUser creates a staff user
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateVisitor creates a visitor
func (db *DB) CreateVisitor(ctx context.Context, visitor *models.Visitor) error {
	if visitor.ID == "" {
		visitor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	visitor.CreatedAt = now
	visitor.UpdatedAt = now

	_, err := db.ExecContext(ctx,
		`INSERT INTO visitors (id, name, email, phone, birth_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		visitor.ID, visitor.Name, visitor.Email, visitor.Phone, visitor.BirthDate,
		visitor.CreatedAt, visitor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create visitor: %w", err)
	}
	return nil
}

// GetVisitor retrieves a visitor by ID
func (db *DB) GetVisitor(ctx context.Context, id string) (*models.Visitor, error) {
	var visitor models.Visitor
	err := db.GetContext(ctx, &visitor,
		`SELECT id, name, email, phone, birth_date, created_at, updated_at
		 FROM visitors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return &visitor, nil
}

// CreatePackage creates a package
func (db *DB) CreatePackage(ctx context.Context, pkg *models.Package) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	_, err := db.ExecContext(ctx,
		`INSERT INTO packages (id, type, name, price, validity_in_days, approved_sessions,
		                       sport_ids, place_ids, trainer_ids, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		pkg.ID, pkg.Type, pkg.Name, pkg.Price, pkg.ValidityInDays, pkg.ApprovedSessions,
		pkg.SportIDs, pkg.PlaceIDs, pkg.TrainerIDs, pkg.CreatedAt, pkg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	return nil
}

// GetPackage retrieves a package by ID
func (db *DB) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	var pkg models.Package
	err := db.GetContext(ctx, &pkg,
		`SELECT id, type, name, price, validity_in_days, approved_sessions,
		        sport_ids, place_ids, trainer_ids, created_at, updated_at
		 FROM packages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &pkg, nil
}

// ListPackages retrieves packages, newest first
func (db *DB) ListPackages(ctx context.Context, limit, offset int) ([]models.Package, error) {
	var packages []models.Package
	err := db.SelectContext(ctx, &packages,
		`SELECT id, type, name, price, validity_in_days, approved_sessions,
		        sport_ids, place_ids, trainer_ids, created_at, updated_at
		 FROM packages ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packages, nil
}

// CreatePromoCode creates a promo code
func (db *DB) CreatePromoCode(ctx context.Context, promo *models.PromoCode) error {
	if promo.ID == "" {
		promo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	promo.CreatedAt = now
	promo.UpdatedAt = now

	_, err := db.ExecContext(ctx,
		`INSERT INTO promo_codes (id, code, discount_price, type, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		promo.ID, promo.Code, promo.DiscountPrice, promo.Type, promo.IsActive,
		promo.CreatedAt, promo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

// GetPromoCodeByCode retrieves a promo code by its code string
func (db *DB) GetPromoCodeByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := db.GetContext(ctx, &promo,
		`SELECT id, code, discount_price, type, is_active, created_at, updated_at
		 FROM promo_codes WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &promo, nil
}

// GetPromoCodeByID retrieves a promo code by ID
func (db *DB) GetPromoCodeByID(ctx context.Context, id string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := db.GetContext(ctx, &promo,
		`SELECT id, code, discount_price, type, is_active, created_at, updated_at
		 FROM promo_codes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &promo, nil
}

// GetPaymentMethod retrieves a payment method by ID
func (db *DB) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := db.GetContext(ctx, &method,
		`SELECT id, name, created_at FROM payment_methods WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &method, nil
}

// CreateTransaction persists a built package transaction verbatim
func (db *DB) CreateTransaction(ctx context.Context, txn *models.PackageTransaction) error {
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	_, err := db.ExecContext(ctx,
		`INSERT INTO package_transactions
		   (id, buyer_id, package_id, payment_method_id, promo_code_id,
		    transaction_date, start_date, expiry_date, total_price,
		    remaining_permitted_sessions, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		txn.ID, txn.BuyerID, txn.PackageID, txn.PaymentMethodID, txn.PromoCodeID,
		txn.TransactionDate, txn.StartDate, txn.ExpiryDate, txn.TotalPrice,
		txn.RemainingPermittedSessions, txn.CreatedAt, txn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID
func (db *DB) GetTransaction(ctx context.Context, id string) (*models.PackageTransaction, error) {
	var txn models.PackageTransaction
	err := db.GetContext(ctx, &txn,
		`SELECT id, buyer_id, package_id, payment_method_id, promo_code_id,
		        transaction_date, start_date, expiry_date, total_price,
		        remaining_permitted_sessions, created_at, updated_at
		 FROM package_transactions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

// UpdateTransaction overwrites a transaction with a rebuilt record
func (db *DB) UpdateTransaction(ctx context.Context, txn *models.PackageTransaction) error {
	txn.UpdatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`UPDATE package_transactions
		 SET buyer_id = $2, package_id = $3, payment_method_id = $4, promo_code_id = $5,
		     transaction_date = $6, start_date = $7, expiry_date = $8, total_price = $9,
		     remaining_permitted_sessions = $10, updated_at = $11
		 WHERE id = $1`,
		txn.ID, txn.BuyerID, txn.PackageID, txn.PaymentMethodID, txn.PromoCodeID,
		txn.TransactionDate, txn.StartDate, txn.ExpiryDate, txn.TotalPrice,
		txn.RemainingPermittedSessions, txn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// ListTransactionsByBuyer retrieves a buyer's transactions, newest first
func (db *DB) ListTransactionsByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]models.PackageTransaction, error) {
	var txns []models.PackageTransaction
	err := db.SelectContext(ctx, &txns,
		`SELECT id, buyer_id, package_id, payment_method_id, promo_code_id,
		        transaction_date, start_date, expiry_date, total_price,
		        remaining_permitted_sessions, created_at, updated_at
		 FROM package_transactions
		 WHERE buyer_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// ConsumeSession atomically decrements the remaining session count of a
// session-based transaction. The conditional update guarantees at most one
// concurrent decrement succeeds per remaining session; it returns (nil, nil)
// when no session could be consumed.
func (db *DB) ConsumeSession(ctx context.Context, id string) (*models.PackageTransaction, error) {
	var txn models.PackageTransaction
	err := db.GetContext(ctx, &txn,
		`UPDATE package_transactions
		 SET remaining_permitted_sessions = remaining_permitted_sessions - 1, updated_at = $2
		 WHERE id = $1 AND remaining_permitted_sessions > 0
		 RETURNING id, buyer_id, package_id, payment_method_id, promo_code_id,
		           transaction_date, start_date, expiry_date, total_price,
		           remaining_permitted_sessions, created_at, updated_at`,
		id, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume session: %w", err)
	}
	return &txn, nil
}
