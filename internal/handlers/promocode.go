package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ryanpratama14/hiddengym-api/internal/metrics"
	"github.com/ryanpratama14/hiddengym-api/internal/middleware"
	"github.com/ryanpratama14/hiddengym-api/internal/models"
	"github.com/ryanpratama14/hiddengym-api/internal/pricing"
)

type PromoCodeHandler struct {
	promos        PromoCodeStore
	packages      PackageStore
	studentAgeMax int
	log           *slog.Logger
}

func NewPromoCodeHandler(promos PromoCodeStore, packages PackageStore, studentAgeMax int, log *slog.Logger) *PromoCodeHandler {
	return &PromoCodeHandler{promos: promos, packages: packages, studentAgeMax: studentAgeMax, log: log}
}

// Create handles POST /api/v1/promo-codes
func (h *PromoCodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !middleware.HasRole(r.Context(), models.RoleOwner) {
		writeError(w, http.StatusForbidden, "Only owners can create promo codes")
		return
	}

	var req models.CreatePromoCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	promo := &models.PromoCode{
		Code:          strings.ToUpper(req.Code),
		DiscountPrice: req.DiscountPrice,
		Type:          req.Type,
		IsActive:      req.IsActive,
	}
	if err := promo.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.promos.GetPromoCodeByCode(r.Context(), promo.Code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Promo code already exists")
		return
	}

	if err := h.promos.CreatePromoCode(r.Context(), promo); err != nil {
		h.log.Error("failed to create promo code", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to create promo code")
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

// Check handles POST /api/v1/promo-codes/check: a dry run of the promo
// applicability and discount rules against a package, without touching any
// transaction.
func (h *PromoCodeHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CheckPromoCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" || req.PackageID == "" {
		writeError(w, http.StatusBadRequest, "code and package_id are required")
		return
	}

	promo, err := h.promos.GetPromoCodeByCode(r.Context(), strings.ToUpper(req.Code))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if promo == nil {
		writeError(w, http.StatusNotFound, "Promo code not found")
		return
	}

	pkg, err := h.packages.GetPackage(r.Context(), req.PackageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "Package not found")
		return
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		t, err := pricing.StartOfDay(req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid birth_date")
			return
		}
		birthDate = &t
	}

	if err := pricing.CheckPromoApplicable(promo, birthDate, time.Now(), h.studentAgeMax); err != nil {
		reason := "inactive"
		if errors.Is(err, pricing.ErrPromoAgeIneligible) {
			reason = "age_ineligible"
		}
		metrics.PromoRejections.WithLabelValues(reason).Inc()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"applicable": false,
			"error":      err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applicable":     true,
		"discount_price": promo.DiscountPrice,
		"total_price":    pricing.ApplyDiscount(pkg.Price, promo.DiscountPrice),
	})
}
