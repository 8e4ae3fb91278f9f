package middleware

import (
	"Airena/internal/pkg/response"
	"Airena/internal/pkg/security"
	"Airena/internal/service"
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// PrincipalKey gin.Context 中保存调用者身份的键
const PrincipalKey = "principal"

// TokenVerifier 校验令牌并解析调用者身份
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*security.Principal, error)
}

// AuthMiddleware 负责验证 JWT 并将调用者身份注入 Context
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			} else {
				response.Error(c, err)
			}
			c.Abort()
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// BearerToken 从 Authorization 头中取出令牌
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// GetPrincipal 未登录时返回 nil
func GetPrincipal(c *gin.Context) *security.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*security.Principal)
	return p
}

func setPrincipal(c *gin.Context, principal *security.Principal) {
	c.Set(PrincipalKey, principal)
	newCtx := context.WithValue(c.Request.Context(), "user_id", principal.SubjectID)
	c.Request = c.Request.WithContext(newCtx)
}
