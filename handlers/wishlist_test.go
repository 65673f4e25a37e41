package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-backend/models"
)

func TestToggleWishlistAddsThenRemoves(t *testing.T) {
	db := freshDB()
	user, token := seedTestUser(db, "wisher@test.com", "customer")
	cat := seedCategory(db, "Shoes")
	prod := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	router := setupWishlistRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/wishlist/"+prod.Slug, nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp["in_wishlist"] != true {
		t.Errorf("Expected in_wishlist true after first toggle, got %v", resp["in_wishlist"])
	}

	var count int64
	db.Model(&models.WishlistEntry{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("Expected 1 wishlist entry, got %d", count)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/wishlist/"+prod.Slug, nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp["in_wishlist"] != false {
		t.Errorf("Expected in_wishlist false after second toggle, got %v", resp["in_wishlist"])
	}

	db.Model(&models.WishlistEntry{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected wishlist entry removed, got %d", count)
	}
}

func TestToggleWishlistUnknownProduct(t *testing.T) {
	db := freshDB()
	_, token := seedTestUser(db, "wisher2@test.com", "customer")
	router := setupWishlistRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/wishlist/ghost-product", nil, token))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetWishlistReturnsProducts(t *testing.T) {
	db := freshDB()
	_, token := seedTestUser(db, "collector@test.com", "customer")
	cat := seedCategory(db, "Shoes")
	prodA := seedProduct(db, "Runner", cat.ID, 25.00, 5)
	prodB := seedProduct(db, "Walker", cat.ID, 30.00, 5)
	router := setupWishlistRouter(db)

	for _, slug := range []string{prodA.Slug, prodB.Slug} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authRequest("POST", "/api/wishlist/"+slug, nil, token))
		if w.Code != http.StatusOK {
			t.Fatalf("Toggle %s: expected 200, got %d", slug, w.Code)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/wishlist", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	entries := resp["entries"].([]interface{})
	products := resp["products"].([]interface{})
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
	if len(products) != 2 {
		t.Errorf("Expected 2 products, got %d", len(products))
	}
}

func TestWishlistRequiresAuth(t *testing.T) {
	router := setupWishlistRouter(freshDB())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/wishlist", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", w.Code)
	}
}
