package security

import (
	"Airena/internal/api/config"
	"Airena/internal/model"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret         = []byte("airena")
	jwtIssuer         = "airena"
	JWTExpirationTime = time.Hour * 24
)

// Init 使用配置覆盖默认的签名密钥与过期时间
func Init(cfg config.JWTConfig) {
	if cfg.Secret != "" {
		jwtSecret = []byte(cfg.Secret)
	}
	if cfg.Issuer != "" {
		jwtIssuer = cfg.Issuer
	}
	if cfg.Expiration > 0 {
		JWTExpirationTime = time.Duration(cfg.Expiration) * time.Hour
	}
}

// TokenSubject 签发令牌所需的身份信息
type TokenSubject struct {
	UserID  string
	Name    string
	Email   string
	Picture string
	Claims  Claims
}

// GenerateToken 生成一个新的 JWT Token
func GenerateToken(sub TokenSubject) (string, error) {
	now := time.Now()

	claims := &UserClaims{
		Name:       sub.Name,
		Email:      sub.Email,
		Picture:    sub.Picture,
		Admin:      sub.Claims.Has(model.RoleAdmin),
		Creator:    sub.Claims.Has(model.RoleCreator),
		SuperAdmin: sub.Claims.Has(model.RoleSuperAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(JWTExpirationTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken 验证 Token 字符串并解析出 Claims
func ValidateToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("token invalid or expired")
	}

	return claims, nil
}

// ExtractSignature 从 Token 字符串中提取签名
func ExtractSignature(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", errors.New("malformed token")
	}
	return parts[2], nil
}

// RemainingLifetime 令牌剩余有效期，用于黑名单过期时间
func RemainingLifetime(claims *UserClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return JWTExpirationTime
	}
	d := time.Until(claims.ExpiresAt.Time)
	if d <= 0 {
		return time.Second
	}
	return d
}
