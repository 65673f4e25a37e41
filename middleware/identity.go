package middleware

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartSessionCookie names the anonymous cart cookie. Every storefront caller
// carries one, signed in or not.
const CartSessionCookie = "cart_session"

const cartSessionMaxAge = 30 * 24 * 60 * 60 // 30 days, same as the auth session

// Identity is the explicit caller identity passed into cart and order logic:
// an authenticated user id when signed in, always an anonymous cart session
// id as fallback. Cart lookup prefers the user id.
type Identity struct {
	UserID        *uuid.UUID
	SessionCartID string
}

// CartSessionMiddleware guarantees the anonymous cart cookie exists, issuing
// a fresh opaque id on first contact.
func CartSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(CartSessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			secure := os.Getenv("COOKIE_SECURE") == "true"
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CartSessionCookie, sessionID, cartSessionMaxAge, "/", "", secure, true)
		}
		c.Set("session_cart_id", sessionID)
		c.Next()
	}
}

// CallerIdentity resolves the request's Identity from context values set by
// CartSessionMiddleware and the auth middlewares. Missing session identity is
// fatal for cart operations, so it is an error here rather than a fallback.
func CallerIdentity(c *gin.Context) (Identity, error) {
	sessionID, exists := c.Get("session_cart_id")
	if !exists {
		return Identity{}, fmt.Errorf("no cart session in request context")
	}

	identity := Identity{SessionCartID: sessionID.(string)}
	if userID, ok := c.Get("user_id"); ok {
		uid := userID.(uuid.UUID)
		identity.UserID = &uid
	}
	return identity, nil
}
