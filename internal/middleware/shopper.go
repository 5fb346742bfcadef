package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ShopperHeader = "X-Shopper-ID"
	ShopperCookie = "shopper_id"

	shopperKey       = "shopper_id"
	shopperCookieAge = 365 * 24 * 60 * 60
	maxShopperIDLen  = 64
)

// Shopper resolves the anonymous shopper id from the X-Shopper-ID header or
// the shopper_id cookie, issuing a new one when neither is present.
func Shopper(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ShopperHeader)
		if id == "" {
			if v, err := c.Cookie(ShopperCookie); err == nil {
				id = v
			}
		}
		if !validShopperID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ShopperCookie, id, shopperCookieAge, "/", "", secureCookie, true)
		}

		c.Set(shopperKey, id)
		c.Header(ShopperHeader, id)
		c.Next()
	}
}

// GetShopperID shopper id set by Shopper
func GetShopperID(c *gin.Context) string {
	return c.GetString(shopperKey)
}

func validShopperID(id string) bool {
	if id == "" || len(id) > maxShopperIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
