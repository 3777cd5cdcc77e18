package handlers

import (
	"context"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

// Store interfaces are defined on the consumer side; the database package
// satisfies all of them. Lookups return (nil, nil) when nothing matches.

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type VisitorStore interface {
	CreateVisitor(ctx context.Context, visitor *models.Visitor) error
	GetVisitor(ctx context.Context, id string) (*models.Visitor, error)
}

type PackageStore interface {
	CreatePackage(ctx context.Context, pkg *models.Package) error
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ListPackages(ctx context.Context, limit, offset int) ([]models.Package, error)
}

type PromoCodeStore interface {
	CreatePromoCode(ctx context.Context, promo *models.PromoCode) error
	GetPromoCodeByCode(ctx context.Context, code string) (*models.PromoCode, error)
	GetPromoCodeByID(ctx context.Context, id string) (*models.PromoCode, error)
}

type PaymentMethodStore interface {
	GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *models.PackageTransaction) error
	GetTransaction(ctx context.Context, id string) (*models.PackageTransaction, error)
	UpdateTransaction(ctx context.Context, txn *models.PackageTransaction) error
	ListTransactionsByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]models.PackageTransaction, error)
	ConsumeSession(ctx context.Context, id string) (*models.PackageTransaction, error)
}
