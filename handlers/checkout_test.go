package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-backend/models"
)

func TestSaveShippingAddress(t *testing.T) {
	db := freshDB()
	user, token := seedTestUser(db, "shipper@test.com", "customer")
	router := setupCheckoutRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/checkout/shipping-address", map[string]string{
		"full_name":      "Jamie Shopper",
		"street_address": "42 Market Lane",
		"city":           "Bristol",
		"postal_code":    "BS1 4ND",
		"country":        "GB",
	}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var fresh models.User
	db.First(&fresh, "id = ?", user.ID)
	if !fresh.HasShippingAddress() {
		t.Errorf("Expected a complete shipping address on the user")
	}
	if fresh.City != "Bristol" {
		t.Errorf("Expected city Bristol, got %q", fresh.City)
	}
}

func TestSaveShippingAddressMissingField(t *testing.T) {
	db := freshDB()
	_, token := seedTestUser(db, "partial@test.com", "customer")
	router := setupCheckoutRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/checkout/shipping-address", map[string]string{
		"full_name": "Jamie Shopper",
		"city":      "Bristol",
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSavePaymentMethod(t *testing.T) {
	db := freshDB()
	user, token := seedTestUser(db, "payer@test.com", "customer")
	router := setupCheckoutRouter(db)

	for _, method := range []string{"paypal", "cod"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authRequest("PUT", "/api/checkout/payment-method",
			map[string]string{"payment_method": method}, token))
		if w.Code != http.StatusOK {
			t.Fatalf("Method %s: expected status 200, got %d: %s", method, w.Code, w.Body.String())
		}

		var fresh models.User
		db.First(&fresh, "id = ?", user.ID)
		if fresh.PaymentMethod != method {
			t.Errorf("Expected payment method %s, got %q", method, fresh.PaymentMethod)
		}
	}
}

func TestSavePaymentMethodRejectsUnknown(t *testing.T) {
	db := freshDB()
	_, token := seedTestUser(db, "novel@test.com", "customer")
	router := setupCheckoutRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/checkout/payment-method",
		map[string]string{"payment_method": "barter"}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCheckoutStepsRequireAuth(t *testing.T) {
	router := setupCheckoutRouter(freshDB())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("PUT", "/api/checkout/payment-method",
		map[string]string{"payment_method": "paypal"}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", w.Code)
	}
}
