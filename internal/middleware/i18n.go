package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
)

const (
	localeKey   = "locale"
	localeQuery = "lang"
)

// I18n resolves the response locale: the ?lang= query parameter when the
// bundle knows it, otherwise the best Accept-Language match.
func I18n(bundle *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := bundle.Match(c.GetHeader("Accept-Language"))
		if lang := c.Query(localeQuery); lang != "" {
			for _, l := range bundle.SupportedLocales() {
				if string(l) == lang {
					locale = l
					break
				}
			}
		}
		c.Set(localeKey, locale)
		c.Header("Content-Language", string(locale))
		c.Next()
	}
}

// GetLocale locale set by I18n, DefaultLocale outside it
func GetLocale(c *gin.Context) i18n.Locale {
	if v, exists := c.Get(localeKey); exists {
		if locale, ok := v.(i18n.Locale); ok {
			return locale
		}
	}
	return i18n.DefaultLocale
}
