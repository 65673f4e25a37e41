package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-backend/models"
	"storefront-backend/paypal"
)

// fakePayPal serves the three provider endpoints the client talks to. The
// capture endpoint answers with the given status and counts its calls.
func fakePayPal(t *testing.T, captureStatus string, captureCalls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/oauth2/token":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "fake-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case r.URL.Path == "/v2/checkout/orders" && r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{
				"id":     "PP-ORDER-1",
				"status": "CREATED",
			})
		case strings.HasSuffix(r.URL.Path, "/capture"):
			if captureCalls != nil {
				*captureCalls++
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     "PP-CAPTURE-1",
				"status": captureStatus,
				"payer":  map[string]string{"email_address": "payer@test.com"},
				"purchase_units": []map[string]interface{}{
					{"payments": map[string]interface{}{
						"captures": []map[string]interface{}{
							{"amount": map[string]string{"value": "38.75"}},
						},
					}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func paypalTestClient(srv *httptest.Server) *paypal.Client {
	return &paypal.Client{
		BaseURL:    srv.URL,
		ClientID:   "test-client",
		Secret:     "test-secret",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreatePayPalOrderRecordsProviderID(t *testing.T) {
	db := freshDB()
	srv := fakePayPal(t, paypal.StatusCompleted, nil)
	defer srv.Close()

	owner, token := seedCheckoutUser(db, "paypal@test.com")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 1)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["provider_order_id"] != "PP-ORDER-1" {
		t.Errorf("Expected provider_order_id PP-ORDER-1, got %v", resp["provider_order_id"])
	}

	var fresh models.Order
	db.First(&fresh, "id = ?", order.ID)
	if fresh.PaymentID != "PP-ORDER-1" {
		t.Errorf("Expected PaymentID recorded, got %q", fresh.PaymentID)
	}
	if fresh.IsPaid {
		t.Errorf("Order must not be paid before capture")
	}
}

func TestCreatePayPalOrderNotOwner(t *testing.T) {
	db := freshDB()
	srv := fakePayPal(t, paypal.StatusCompleted, nil)
	defer srv.Close()

	owner, _ := seedCheckoutUser(db, "ppowner@test.com")
	_, strangerToken := seedTestUser(db, "ppstranger@test.com", "customer")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 1)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal", nil, strangerToken))

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCapturePayPalOrderSettles(t *testing.T) {
	db := freshDB()
	captureCalls := 0
	srv := fakePayPal(t, paypal.StatusCompleted, &captureCalls)
	defer srv.Close()

	owner, token := seedCheckoutUser(db, "capture@test.com")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 2)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Create provider order: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal/capture",
		map[string]string{"provider_order_id": "PP-ORDER-1"}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("Capture: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var fresh models.Order
	db.First(&fresh, "id = ?", order.ID)
	if !fresh.IsPaid || fresh.PaidAt == nil {
		t.Errorf("Expected order marked paid")
	}
	if fresh.PaymentStatus != paypal.StatusCompleted {
		t.Errorf("Expected payment status COMPLETED, got %q", fresh.PaymentStatus)
	}
	if fresh.PayerEmail != "payer@test.com" {
		t.Errorf("Expected payer email recorded, got %q", fresh.PayerEmail)
	}
	if fresh.PaidAmount != "38.75" {
		t.Errorf("Expected paid amount 38.75, got %q", fresh.PaidAmount)
	}

	var stocked models.Product
	db.First(&stocked, "id = ?", prod.ID)
	if stocked.Stock != 3 {
		t.Errorf("Expected stock 3 after capturing 2 units, got %d", stocked.Stock)
	}
	if captureCalls != 1 {
		t.Errorf("Expected exactly one provider capture call, got %d", captureCalls)
	}
}

func TestCapturePayPalOrderTwiceRejected(t *testing.T) {
	db := freshDB()
	srv := fakePayPal(t, paypal.StatusCompleted, nil)
	defer srv.Close()

	owner, token := seedCheckoutUser(db, "doublecapture@test.com")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 2)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Create provider order: expected 200, got %d", w.Code)
	}

	body := map[string]string{"provider_order_id": "PP-ORDER-1"}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal/capture", body, token))
	if w.Code != http.StatusOK {
		t.Fatalf("First capture: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal/capture", body, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Second capture: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// Stock decremented exactly once.
	var stocked models.Product
	db.First(&stocked, "id = ?", prod.ID)
	if stocked.Stock != 3 {
		t.Errorf("Expected stock 3 after double capture attempt, got %d", stocked.Stock)
	}
}

func TestCapturePayPalOrderMismatchedProviderID(t *testing.T) {
	db := freshDB()
	srv := fakePayPal(t, paypal.StatusCompleted, nil)
	defer srv.Close()

	owner, token := seedCheckoutUser(db, "mismatch@test.com")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 1)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Create provider order: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal/capture",
		map[string]string{"provider_order_id": "PP-FORGED"}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for mismatched provider order, got %d: %s", w.Code, w.Body.String())
	}

	var fresh models.Order
	db.First(&fresh, "id = ?", order.ID)
	if fresh.IsPaid {
		t.Errorf("Expected order to stay unpaid after forged capture")
	}
}

func TestCapturePayPalOrderWithoutCreateStep(t *testing.T) {
	db := freshDB()
	srv := fakePayPal(t, paypal.StatusCompleted, nil)
	defer srv.Close()

	owner, token := seedCheckoutUser(db, "nocreate@test.com")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 1)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal/capture",
		map[string]string{"provider_order_id": "PP-ORDER-1"}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 when no provider order recorded, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCapturePayPalOrderNotCompleted(t *testing.T) {
	db := freshDB()
	srv := fakePayPal(t, "PENDING", nil)
	defer srv.Close()

	owner, token := seedCheckoutUser(db, "pending@test.com")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 1)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Create provider order: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal/capture",
		map[string]string{"provider_order_id": "PP-ORDER-1"}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for non-completed capture, got %d: %s", w.Code, w.Body.String())
	}

	var fresh models.Order
	db.First(&fresh, "id = ?", order.ID)
	if fresh.IsPaid {
		t.Errorf("Expected order to stay unpaid after pending capture")
	}
	var stocked models.Product
	db.First(&stocked, "id = ?", prod.ID)
	if stocked.Stock != 5 {
		t.Errorf("Expected stock untouched after pending capture, got %d", stocked.Stock)
	}
}

func TestCreatePayPalOrderProviderDown(t *testing.T) {
	db := freshDB()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	owner, token := seedCheckoutUser(db, "down@test.com")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	order := seedOrder(db, owner, prod, 1)
	router := setupPaymentRouter(db, paypalTestClient(srv))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+order.ID.String()+"/paypal", nil, token))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502 when provider is down, got %d: %s", w.Code, w.Body.String())
	}
}
