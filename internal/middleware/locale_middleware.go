package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/internal/i18n"
	"golang.org/x/text/language"
)

const localeKey = "locale"

// localeCookieMaxAge keeps an explicit language choice for a year.
const localeCookieMaxAge = 365 * 24 * 60 * 60

// Locale resolves the request language. A choice made through the lang
// query parameter is remembered in a cookie.
func Locale(fallback language.Tag, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tag, persist := i18n.Resolve(c.Request, fallback)
		c.Set(localeKey, tag)

		if persist {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     i18n.LangCookieName,
				Value:    tag.String(),
				Path:     "/",
				MaxAge:   localeCookieMaxAge,
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Header("Content-Language", tag.String())

		c.Next()
	}
}

// GetLocale returns the language picked by Locale, English when the
// middleware did not run.
func GetLocale(c *gin.Context) language.Tag {
	if v, exists := c.Get(localeKey); exists {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return language.English
}
