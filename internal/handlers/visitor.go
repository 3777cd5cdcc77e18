package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ryanpratama14/hiddengym-api/internal/models"
	"github.com/ryanpratama14/hiddengym-api/internal/pricing"
)

type VisitorHandler struct {
	visitors VisitorStore
	log      *slog.Logger
}

func NewVisitorHandler(visitors VisitorStore, log *slog.Logger) *VisitorHandler {
	return &VisitorHandler{visitors: visitors, log: log}
}

// Visitors handles POST /api/v1/visitors
func (h *VisitorHandler) Visitors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	visitor := &models.Visitor{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if req.BirthDate != "" {
		t, err := pricing.StartOfDay(req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid birth_date")
			return
		}
		visitor.BirthDate = &t
	}

	if err := h.visitors.CreateVisitor(r.Context(), visitor); err != nil {
		h.log.Error("failed to create visitor", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to create visitor")
		return
	}
	writeJSON(w, http.StatusCreated, visitor)
}

// VisitorByID handles GET /api/v1/visitors/{id}
func (h *VisitorHandler) VisitorByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/visitors/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	visitor, err := h.visitors.GetVisitor(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if visitor == nil {
		writeError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	writeJSON(w, http.StatusOK, visitor)
}
