package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ryanpratama14/hiddengym-api/internal/middleware"
	"github.com/ryanpratama14/hiddengym-api/internal/models"
)

// withRole builds a request context carrying validated claims, the way the
// auth middleware would after a successful login.
func withRole(req *http.Request, role models.Role) *http.Request {
	auth := middleware.NewAuth("test-secret", time.Hour, testLogger())
	token, _ := auth.GenerateToken("user-1", "staff@example.com", role)

	validated := req
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		validated = r
	}))
	probe := req.Clone(context.Background())
	probe.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), probe)
	return validated
}

func TestCreatePromoCodeOwnerOnly(t *testing.T) {
	store := newMemStore()
	seedStore(store)
	handler := NewPromoCodeHandler(store, store, testStudentAgeMax, testLogger())

	body := `{"code":"NEWYEAR24","discount_price":25000,"type":"REGULAR","is_active":true}`

	// admin is rejected
	req := withRole(httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes", bytes.NewBufferString(body)), models.RoleAdmin)
	rr := httptest.NewRecorder()
	handler.Create(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for admin, got %d: %s", rr.Code, rr.Body.String())
	}

	// owner is allowed
	req2 := withRole(httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes", bytes.NewBufferString(body)), models.RoleOwner)
	rr2 := httptest.NewRecorder()
	handler.Create(rr2, req2)
	if rr2.Code != http.StatusCreated {
		t.Fatalf("Expected status 201 for owner, got %d: %s", rr2.Code, rr2.Body.String())
	}

	var promo models.PromoCode
	json.Unmarshal(rr2.Body.Bytes(), &promo)
	if promo.Code != "NEWYEAR24" {
		t.Errorf("Expected code NEWYEAR24, got %s", promo.Code)
	}
}

func TestCreatePromoCodeNormalizesAndValidates(t *testing.T) {
	store := newMemStore()
	seedStore(store)
	handler := NewPromoCodeHandler(store, store, testStudentAgeMax, testLogger())

	// lowercase input is uppercased before validation
	body := `{"code":"newyear24","discount_price":25000,"type":"REGULAR","is_active":true}`
	req := withRole(httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes", bytes.NewBufferString(body)), models.RoleOwner)
	rr := httptest.NewRecorder()
	handler.Create(rr, req)
	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	// too short
	body2 := `{"code":"AB1","discount_price":25000,"type":"REGULAR","is_active":true}`
	req2 := withRole(httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes", bytes.NewBufferString(body2)), models.RoleOwner)
	rr2 := httptest.NewRecorder()
	handler.Create(rr2, req2)
	if rr2.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for short code, got %d", rr2.Code)
	}

	// duplicate
	body3 := `{"code":"MARCH50","discount_price":10000,"type":"REGULAR","is_active":true}`
	req3 := withRole(httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes", bytes.NewBufferString(body3)), models.RoleOwner)
	rr3 := httptest.NewRecorder()
	handler.Create(rr3, req3)
	if rr3.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate code, got %d", rr3.Code)
	}
}

func TestCheckPromoCode(t *testing.T) {
	store := newMemStore()
	seedStore(store)
	handler := NewPromoCodeHandler(store, store, testStudentAgeMax, testLogger())

	body := `{"code":"MARCH50","package_id":"pkg-member"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes/check", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.Check(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &response)
	if response["applicable"] != true {
		t.Errorf("Expected applicable true, got %v", response["applicable"])
	}
	if response["total_price"].(float64) != 450000 {
		t.Errorf("Expected total price 450000, got %v", response["total_price"])
	}
}

func TestCheckPromoCodeInactive(t *testing.T) {
	store := newMemStore()
	seedStore(store)
	handler := NewPromoCodeHandler(store, store, testStudentAgeMax, testLogger())

	body := `{"code":"OLDPROMO","package_id":"pkg-member"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes/check", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.Check(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &response)
	if response["applicable"] != false {
		t.Errorf("Expected applicable false, got %v", response["applicable"])
	}
}

func TestCheckPromoCodeStudentAge(t *testing.T) {
	store := newMemStore()
	seedStore(store)
	store.promos["promo-student"] = &models.PromoCode{
		ID:            "promo-student",
		Code:          "STUDENT25",
		DiscountPrice: 50000,
		Type:          models.PromoStudent,
		IsActive:      true,
	}
	handler := NewPromoCodeHandler(store, store, testStudentAgeMax, testLogger())

	// too old for a student promo
	body := `{"code":"STUDENT25","package_id":"pkg-member","birth_date":"1980-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes/check", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.Check(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for over-age buyer, got %d: %s", rr.Code, rr.Body.String())
	}

	// no birth date at all
	body2 := `{"code":"STUDENT25","package_id":"pkg-member"}`
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes/check", bytes.NewBufferString(body2))
	rr2 := httptest.NewRecorder()
	handler.Check(rr2, req2)
	if rr2.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 without birth date, got %d: %s", rr2.Code, rr2.Body.String())
	}
}

func TestCheckPromoCodeNotFound(t *testing.T) {
	store := newMemStore()
	seedStore(store)
	handler := NewPromoCodeHandler(store, store, testStudentAgeMax, testLogger())

	body := `{"code":"NOSUCH","package_id":"pkg-member"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes/check", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.Check(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d: %s", rr.Code, rr.Body.String())
	}
}
