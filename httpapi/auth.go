// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const authUsername = "elastic"

// BasicAuth returns a gin middleware enforcing HTTP Basic credentials with
// username "elastic" and the given password. If password is empty,
// authentication is disabled entirely and the middleware is a no-op.
func BasicAuth(password string) gin.HandlerFunc {
	if password == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		// Constant-time comparison avoids timing side channels on this
		// auth-critical path.
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(authUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
		if !ok || !userOK || !passOK {
			c.Header("WWW-Authenticate", `Basic realm="security"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"type":   "security_exception",
					"reason": "missing or invalid authentication credentials",
				},
				"status": http.StatusUnauthorized,
			})
			return
		}
		c.Next()
	}
}
