package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ryanpratama14/hiddengym-api/internal/metrics"
	"github.com/ryanpratama14/hiddengym-api/internal/models"
	"github.com/ryanpratama14/hiddengym-api/internal/pricing"
)

type TransactionHandler struct {
	builder      *pricing.Builder
	visitors     VisitorStore
	packages     PackageStore
	promos       PromoCodeStore
	payments     PaymentMethodStore
	transactions TransactionStore
	log          *slog.Logger
}

func NewTransactionHandler(builder *pricing.Builder, visitors VisitorStore, packages PackageStore,
	promos PromoCodeStore, payments PaymentMethodStore, transactions TransactionStore, log *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		builder:      builder,
		visitors:     visitors,
		packages:     packages,
		promos:       promos,
		payments:     payments,
		transactions: transactions,
		log:          log,
	}
}

// Transactions handles POST and GET /api/v1/transactions
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// TransactionByID handles /api/v1/transactions/{id} and its sub-resources
func (h *TransactionHandler) TransactionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/transactions/"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodPut:
			h.update(w, r, parts[0])
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case len(parts) == 2 && parts[1] == "invoice":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.invoice(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "sessions" && parts[2] == "consume":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.consumeSession(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *TransactionHandler) create(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header is required")
		return
	}

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.BuyerID == "" || req.PackageID == "" || req.PaymentMethodID == "" || req.TransactionDate == "" {
		writeError(w, http.StatusBadRequest, "buyer_id, package_id, payment_method_id and transaction_date are required")
		return
	}

	ctx := r.Context()

	buyer, err := h.visitors.GetVisitor(ctx, req.BuyerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if buyer == nil {
		writeError(w, http.StatusNotFound, "Buyer not found")
		return
	}

	pkg, err := h.packages.GetPackage(ctx, req.PackageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "Package not found")
		return
	}

	method, err := h.payments.GetPaymentMethod(ctx, req.PaymentMethodID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if method == nil {
		writeError(w, http.StatusNotFound, "Payment method not found")
		return
	}

	var promo *models.PromoCode
	if req.PromoCode != "" {
		promo, err = h.promos.GetPromoCodeByCode(ctx, strings.ToUpper(req.PromoCode))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if promo == nil {
			writeError(w, http.StatusNotFound, "Promo code not found")
			return
		}
	}

	startDate := req.StartDate
	if startDate == "" {
		startDate = req.TransactionDate
	}

	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordTransactionBuildDuration(status, time.Since(start).Seconds())
	}()

	txn, invoice, err := h.builder.Build(pricing.BuildRequest{
		Buyer:           *buyer,
		Package:         *pkg,
		PromoCode:       promo,
		PaymentMethod:   *method,
		TransactionDate: req.TransactionDate,
		StartDate:       startDate,
	})
	if err != nil {
		h.writeBuildError(w, err)
		return
	}

	if err := h.transactions.CreateTransaction(ctx, txn); err != nil {
		h.log.Error("failed to persist transaction", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}
	status = "success"

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": txn,
		"invoice":     invoice,
	})
}

func (h *TransactionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header is required")
		return
	}

	var req models.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()

	existing, err := h.transactions.GetTransaction(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	buyer, err := h.visitors.GetVisitor(ctx, existing.BuyerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if buyer == nil {
		writeError(w, http.StatusNotFound, "Buyer not found")
		return
	}

	packageID := req.PackageID
	if packageID == "" {
		packageID = existing.PackageID
	}
	pkg, err := h.packages.GetPackage(ctx, packageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "Package not found")
		return
	}

	paymentMethodID := req.PaymentMethodID
	if paymentMethodID == "" {
		paymentMethodID = existing.PaymentMethodID
	}
	method, err := h.payments.GetPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if method == nil {
		writeError(w, http.StatusNotFound, "Payment method not found")
		return
	}

	// The attached promo code stays locked unless the caller explicitly
	// changes or removes it.
	var promo *models.PromoCode
	switch {
	case req.PromoCode == nil:
		if existing.PromoCodeID != nil {
			promo, err = h.promos.GetPromoCodeByID(ctx, *existing.PromoCodeID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if promo == nil {
				writeError(w, http.StatusNotFound, "Promo code not found")
				return
			}
		}
	case *req.PromoCode != "":
		promo, err = h.promos.GetPromoCodeByCode(ctx, strings.ToUpper(*req.PromoCode))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if promo == nil {
			writeError(w, http.StatusNotFound, "Promo code not found")
			return
		}
	}

	transactionDate := req.TransactionDate
	if transactionDate == "" {
		transactionDate = pricing.FormatDate(existing.TransactionDate)
	}
	startDate := req.StartDate
	if startDate == "" && existing.StartDate != nil {
		startDate = pricing.FormatDate(*existing.StartDate)
	}
	if startDate == "" {
		startDate = transactionDate
	}

	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordTransactionBuildDuration(status, time.Since(start).Seconds())
	}()

	txn, invoice, err := h.builder.Rebuild(existing, pricing.BuildRequest{
		Buyer:           *buyer,
		Package:         *pkg,
		PromoCode:       promo,
		PaymentMethod:   *method,
		TransactionDate: transactionDate,
		StartDate:       startDate,
	})
	if err != nil {
		h.writeBuildError(w, err)
		return
	}

	if err := h.transactions.UpdateTransaction(ctx, txn); err != nil {
		h.log.Error("failed to update transaction", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}
	status = "success"

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transaction": txn,
		"invoice":     invoice,
	})
}

func (h *TransactionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	txn, err := h.transactions.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if txn == nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *TransactionHandler) invoice(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	txn, err := h.transactions.GetTransaction(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if txn == nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	buyer, err := h.visitors.GetVisitor(ctx, txn.BuyerID)
	if err != nil || buyer == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load buyer")
		return
	}
	pkg, err := h.packages.GetPackage(ctx, txn.PackageID)
	if err != nil || pkg == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load package")
		return
	}
	method, err := h.payments.GetPaymentMethod(ctx, txn.PaymentMethodID)
	if err != nil || method == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payment method")
		return
	}

	var promo *models.PromoCode
	if txn.PromoCodeID != nil {
		promo, err = h.promos.GetPromoCodeByID(ctx, *txn.PromoCodeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load promo code")
			return
		}
	}

	invoice := pricing.ProjectInvoice(txn, *pkg, promo, *buyer, *method, time.Now())
	writeJSON(w, http.StatusOK, invoice)
}

func (h *TransactionHandler) consumeSession(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	txn, err := h.transactions.GetTransaction(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if txn == nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if txn.RemainingPermittedSessions == nil {
		writeError(w, http.StatusConflict, "Transaction is not session-based")
		return
	}

	updated, err := h.transactions.ConsumeSession(ctx, id)
	if err != nil {
		h.log.Error("failed to consume session", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to consume session")
		return
	}
	if updated == nil {
		writeError(w, http.StatusConflict, "No remaining sessions")
		return
	}
	metrics.SessionsConsumed.Inc()

	writeJSON(w, http.StatusOK, updated)
}

func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request) {
	buyerID := r.URL.Query().Get("buyer_id")
	if buyerID == "" {
		writeError(w, http.StatusBadRequest, "buyer_id query parameter is required")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be non-negative")
			return
		}
		offset = n
	}

	txns, err := h.transactions.ListTransactionsByBuyer(r.Context(), buyerID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"buyer_id":     buyerID,
		"transactions": txns,
	})
}

func (h *TransactionHandler) writeBuildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrPromoNotApplicable):
		reason := "inactive"
		if errors.Is(err, pricing.ErrPromoAgeIneligible) {
			reason = "age_ineligible"
		}
		metrics.PromoRejections.WithLabelValues(reason).Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, pricing.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
