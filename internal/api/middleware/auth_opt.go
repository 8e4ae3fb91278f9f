package middleware

import (
	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入身份，失败或缺失则按匿名处理
func AuthOptionalMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.Next()
			return
		}

		if principal, err := verifier.Verify(c.Request.Context(), token); err == nil {
			setPrincipal(c, principal)
		}
		c.Next()
	}
}
