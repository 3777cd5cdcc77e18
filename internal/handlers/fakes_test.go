package handlers

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

// memStore is an in-memory implementation of every store interface, good
// enough to exercise the handlers without a database.
type memStore struct {
	users        map[string]*models.User
	visitors     map[string]*models.Visitor
	packages     map[string]*models.Package
	promos       map[string]*models.PromoCode
	payments     map[string]*models.PaymentMethod
	transactions map[string]*models.PackageTransaction
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*models.User),
		visitors:     make(map[string]*models.Visitor),
		packages:     make(map[string]*models.Package),
		promos:       make(map[string]*models.PromoCode),
		payments:     make(map[string]*models.PaymentMethod),
		transactions: make(map[string]*models.PackageTransaction),
	}
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateVisitor(_ context.Context, visitor *models.Visitor) error {
	if visitor.ID == "" {
		visitor.ID = uuid.NewString()
	}
	visitor.CreatedAt = time.Now().UTC()
	visitor.UpdatedAt = visitor.CreatedAt
	s.visitors[visitor.ID] = visitor
	return nil
}

func (s *memStore) GetVisitor(_ context.Context, id string) (*models.Visitor, error) {
	return s.visitors[id], nil
}

func (s *memStore) CreatePackage(_ context.Context, pkg *models.Package) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	pkg.CreatedAt = time.Now().UTC()
	pkg.UpdatedAt = pkg.CreatedAt
	s.packages[pkg.ID] = pkg
	return nil
}

func (s *memStore) GetPackage(_ context.Context, id string) (*models.Package, error) {
	return s.packages[id], nil
}

func (s *memStore) ListPackages(_ context.Context, limit, offset int) ([]models.Package, error) {
	out := []models.Package{}
	i := 0
	for _, p := range s.packages {
		if i >= offset && len(out) < limit {
			out = append(out, *p)
		}
		i++
	}
	return out, nil
}

func (s *memStore) CreatePromoCode(_ context.Context, promo *models.PromoCode) error {
	if promo.ID == "" {
		promo.ID = uuid.NewString()
	}
	promo.CreatedAt = time.Now().UTC()
	promo.UpdatedAt = promo.CreatedAt
	s.promos[promo.ID] = promo
	return nil
}

func (s *memStore) GetPromoCodeByCode(_ context.Context, code string) (*models.PromoCode, error) {
	for _, p := range s.promos {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetPromoCodeByID(_ context.Context, id string) (*models.PromoCode, error) {
	return s.promos[id], nil
}

func (s *memStore) GetPaymentMethod(_ context.Context, id string) (*models.PaymentMethod, error) {
	return s.payments[id], nil
}

func (s *memStore) CreateTransaction(_ context.Context, txn *models.PackageTransaction) error {
	txn.CreatedAt = time.Now().UTC()
	txn.UpdatedAt = txn.CreatedAt
	s.transactions[txn.ID] = txn
	return nil
}

func (s *memStore) GetTransaction(_ context.Context, id string) (*models.PackageTransaction, error) {
	return s.transactions[id], nil
}

func (s *memStore) UpdateTransaction(_ context.Context, txn *models.PackageTransaction) error {
	txn.UpdatedAt = time.Now().UTC()
	s.transactions[txn.ID] = txn
	return nil
}

func (s *memStore) ListTransactionsByBuyer(_ context.Context, buyerID string, limit, offset int) ([]models.PackageTransaction, error) {
	out := []models.PackageTransaction{}
	for _, t := range s.transactions {
		if t.BuyerID == buyerID && len(out) < limit {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) ConsumeSession(_ context.Context, id string) (*models.PackageTransaction, error) {
	txn, ok := s.transactions[id]
	if !ok || txn.RemainingPermittedSessions == nil || *txn.RemainingPermittedSessions <= 0 {
		return nil, nil
	}
	remaining := *txn.RemainingPermittedSessions - 1
	txn.RemainingPermittedSessions = &remaining
	txn.UpdatedAt = time.Now().UTC()
	return txn, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int {
	return &n
}

func int32Ptr(n int32) *int32 {
	return &n
}

func seedStore(s *memStore) {
	birth := time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC)
	s.visitors["visitor-1"] = &models.Visitor{
		ID:        "visitor-1",
		Name:      "Budi Santoso",
		Email:     "budi@example.com",
		Phone:     "+6281234567890",
		BirthDate: &birth,
	}
	s.packages["pkg-member"] = &models.Package{
		ID:             "pkg-member",
		Type:           models.PackageMember,
		Name:           "Monthly Membership",
		Price:          500000,
		ValidityInDays: intPtr(30),
	}
	s.packages["pkg-sessions"] = &models.Package{
		ID:               "pkg-sessions",
		Type:             models.PackageSessions,
		Name:             "10 PT Sessions",
		Price:            1000000,
		ApprovedSessions: int32Ptr(10),
		TrainerIDs:       []string{"trainer-1"},
	}
	s.promos["promo-1"] = &models.PromoCode{
		ID:            "promo-1",
		Code:          "MARCH50",
		DiscountPrice: 50000,
		Type:          models.PromoRegular,
		IsActive:      true,
	}
	s.promos["promo-2"] = &models.PromoCode{
		ID:            "promo-2",
		Code:          "OLDPROMO",
		DiscountPrice: 50000,
		Type:          models.PromoRegular,
		IsActive:      false,
	}
	s.payments["pm-cash"] = &models.PaymentMethod{ID: "pm-cash", Name: "Cash"}
}
