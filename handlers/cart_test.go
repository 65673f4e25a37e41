package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestGetCartEmptyReturnsZeroTotals(t *testing.T) {
	db := freshDB()
	router := setupCartRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("GET", "/api/cart", nil, "session-empty"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	for _, field := range []string{"items_price", "shipping_price", "tax_price", "total_price"} {
		got, _ := decimal.NewFromString(resp[field].(string))
		if !got.IsZero() {
			t.Errorf("Expected %s to be zero for empty cart, got %s", field, got)
		}
	}
	if items, ok := resp["items"].([]interface{}); !ok || len(items) != 0 {
		t.Errorf("Expected empty items array, got %v", resp["items"])
	}
}

func TestAddToCartCreatesCartLazily(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	router := setupCartRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("POST", "/api/cart/items",
		map[string]interface{}{"product_id": prod.ID}, "session-lazy"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var cart models.Cart
	if err := db.Where("session_cart_id = ?", "session-lazy").First(&cart).Error; err != nil {
		t.Fatalf("Expected cart to be created: %v", err)
	}

	var items []models.CartItem
	db.Where("cart_id = ?", cart.ID).Find(&items)
	if len(items) != 1 {
		t.Fatalf("Expected 1 cart item, got %d", len(items))
	}
	if items[0].Qty != 1 {
		t.Errorf("Expected qty 1, got %d", items[0].Qty)
	}
	if !items[0].Price.Equal(decimal.NewFromFloat(25.00)) {
		t.Errorf("Expected frozen price 25.00, got %s", items[0].Price)
	}
}

func TestAddToCartTwiceIncrementsQty(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	router := setupCartRouter(db)

	body := map[string]interface{}{"product_id": prod.ID}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, sessionRequest("POST", "/api/cart/items", body, "session-twice"))
		if w.Code != http.StatusOK {
			t.Fatalf("Add %d: expected status 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	var cart models.Cart
	db.Where("session_cart_id = ?", "session-twice").First(&cart)

	var items []models.CartItem
	db.Where("cart_id = ?", cart.ID).Find(&items)
	if len(items) != 1 {
		t.Fatalf("Expected a single line after adding the same product twice, got %d", len(items))
	}
	if items[0].Qty != 2 {
		t.Errorf("Expected qty 2, got %d", items[0].Qty)
	}

	// items = 2 x 25.00 = 50.00, shipping = 10, tax = 7.50
	db.First(&cart, "id = ?", cart.ID)
	if !cart.ItemsPrice.Equal(decimal.NewFromFloat(50.00)) {
		t.Errorf("Expected items_price 50.00, got %s", cart.ItemsPrice)
	}
	if !cart.ShippingPrice.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected shipping_price 10, got %s", cart.ShippingPrice)
	}
	if !cart.TaxPrice.Equal(decimal.NewFromFloat(7.50)) {
		t.Errorf("Expected tax_price 7.50, got %s", cart.TaxPrice)
	}
	if !cart.TotalPrice.Equal(decimal.NewFromFloat(67.50)) {
		t.Errorf("Expected total_price 67.50, got %s", cart.TotalPrice)
	}
}

func TestAddToCartRejectsWhenStockExhausted(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Last Pair", cat.ID, 25.00, 1)
	router := setupCartRouter(db)

	body := map[string]interface{}{"product_id": prod.ID}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("POST", "/api/cart/items", body, "session-stock"))
	if w.Code != http.StatusOK {
		t.Fatalf("First add: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Second unit exceeds stock; the cart must be left unchanged.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("POST", "/api/cart/items", body, "session-stock"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	var cart models.Cart
	db.Where("session_cart_id = ?", "session-stock").First(&cart)

	var item models.CartItem
	db.Where("cart_id = ?", cart.ID).First(&item)
	if item.Qty != 1 {
		t.Errorf("Expected qty to remain 1 after rejected add, got %d", item.Qty)
	}
	db.First(&cart, "id = ?", cart.ID)
	if !cart.ItemsPrice.Equal(decimal.NewFromFloat(25.00)) {
		t.Errorf("Expected items_price unchanged at 25.00, got %s", cart.ItemsPrice)
	}
}

func TestAddToCartOutOfStockProduct(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Sold Out", cat.ID, 25.00, 0)
	router := setupCartRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("POST", "/api/cart/items",
		map[string]interface{}{"product_id": prod.ID}, "session-oos"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Cart{}).Where("session_cart_id = ?", "session-oos").Count(&count)
	if count != 0 {
		t.Errorf("Expected no cart to be created for out-of-stock add, got %d", count)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db := freshDB()
	router := setupCartRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("POST", "/api/cart/items",
		map[string]interface{}{"product_id": uuid.New()}, "session-ghost"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRemoveFromCartDecrementsQty(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	cart := seedCart(db, nil, "session-dec")
	seedCartItem(db, cart, prod, 3)
	router := setupCartRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("DELETE", "/api/cart/items/"+prod.ID.String(), nil, "session-dec"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var item models.CartItem
	db.Where("cart_id = ?", cart.ID).First(&item)
	if item.Qty != 2 {
		t.Errorf("Expected qty 2 after removal, got %d", item.Qty)
	}
}

func TestRemoveFromCartDeletesLastUnit(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	cart := seedCart(db, nil, "session-del")
	seedCartItem(db, cart, prod, 1)
	router := setupCartRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("DELETE", "/api/cart/items/"+prod.ID.String(), nil, "session-del"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected line to be deleted when last unit removed, got %d lines", count)
	}

	db.First(&cart, "id = ?", cart.ID)
	if !cart.TotalPrice.IsZero() {
		t.Errorf("Expected total_price zero after emptying cart, got %s", cart.TotalPrice)
	}
}

func TestRemoveFromCartMissingLine(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prodInCart := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	prodOther := seedProduct(db, "Walker", cat.ID, 30.00, 5)
	cart := seedCart(db, nil, "session-miss")
	seedCartItem(db, cart, prodInCart, 1)
	router := setupCartRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, sessionRequest("DELETE", "/api/cart/items/"+prodOther.ID.String(), nil, "session-miss"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUserCartPreferredOverSessionCart(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	user, token := seedTestUser(db, "cartowner@test.com", "customer")

	userCart := seedCart(db, &user.ID, "old-session")
	seedCartItem(db, userCart, prod, 2)

	// An unrelated anonymous cart shares the cookie value; the bearer token
	// must still win.
	anonCart := seedCart(db, nil, "shared-session")
	seedCartItem(db, anonCart, prod, 1)

	router := setupCartRouter(db)

	req := authRequest("GET", "/api/cart", nil, token)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "shared-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["id"] != userCart.ID.String() {
		t.Errorf("Expected the user's cart %s, got %v", userCart.ID, resp["id"])
	}
}

func TestClaimAnonymousCartOnLogin(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	user, _ := seedTestUser(db, "claimer@test.com", "customer")

	anonCart := seedCart(db, nil, "anon-session")
	seedCartItem(db, anonCart, prod, 2)

	ClaimAnonymousCart(db, user.ID, "anon-session")

	var claimed models.Cart
	if err := db.Where("user_id = ?", user.ID).First(&claimed).Error; err != nil {
		t.Fatalf("Expected anonymous cart to be claimed: %v", err)
	}
	if claimed.ID != anonCart.ID {
		t.Errorf("Expected claimed cart %s, got %s", anonCart.ID, claimed.ID)
	}
}

func TestClaimAnonymousCartSkipsWhenUserHasCart(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	user, _ := seedTestUser(db, "busy@test.com", "customer")

	existing := seedCart(db, &user.ID, "user-session")
	seedCartItem(db, existing, prod, 1)

	anonCart := seedCart(db, nil, "other-session")
	seedCartItem(db, anonCart, prod, 3)

	ClaimAnonymousCart(db, user.ID, "other-session")

	var stillAnon models.Cart
	db.First(&stillAnon, "id = ?", anonCart.ID)
	if stillAnon.UserID != nil {
		t.Errorf("Expected anonymous cart to stay unclaimed when user already has a cart")
	}
}
