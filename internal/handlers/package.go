package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ryanpratama14/hiddengym-api/internal/middleware"
	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

type PackageHandler struct {
	packages PackageStore
	log      *slog.Logger
}

func NewPackageHandler(packages PackageStore, log *slog.Logger) *PackageHandler {
	return &PackageHandler{packages: packages, log: log}
}

// Packages handles GET and POST /api/v1/packages
func (h *PackageHandler) Packages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// PackageByID handles GET /api/v1/packages/{id}
func (h *PackageHandler) PackageByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/packages/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	pkg, err := h.packages.GetPackage(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "Package not found")
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *PackageHandler) create(w http.ResponseWriter, r *http.Request) {
	if !middleware.HasRole(r.Context(), models.RoleOwner) {
		writeError(w, http.StatusForbidden, "Only owners can create packages")
		return
	}

	var req models.CreatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pkg := &models.Package{
		Type:             req.Type,
		Name:             req.Name,
		Price:            req.Price,
		ValidityInDays:   req.ValidityInDays,
		ApprovedSessions: req.ApprovedSessions,
		SportIDs:         req.SportIDs,
		PlaceIDs:         req.PlaceIDs,
		TrainerIDs:       req.TrainerIDs,
	}
	if pkg.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := pkg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.packages.CreatePackage(r.Context(), pkg); err != nil {
		h.log.Error("failed to create package", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Failed to create package")
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

func (h *PackageHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 50
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

	packages, err := h.packages.ListPackages(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"packages": packages})
}
