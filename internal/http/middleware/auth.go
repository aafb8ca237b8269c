package middleware

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequirePasscode ensures the request carries the session cookie issued at
// login. Browsers are redirected to the login page with the original target
// preserved; API clients get a 401 JSON body.
func RequirePasscode(cookieName, sessionToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(cookieName); err == nil && subtle.ConstantTimeCompare([]byte(v), []byte(sessionToken)) == 1 {
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		target := c.Request.URL.RequestURI()
		redirectURL := "/login"
		if target != "" && target != "/" {
			redirectURL = redirectURL + "?next=" + url.QueryEscape(target)
		}

		c.Redirect(http.StatusFound, redirectURL)
		c.Abort()
	}
}
