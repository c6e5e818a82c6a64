package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== 运营鉴权配置 ====================

// OperatorAuthConfig 运营接口鉴权配置
type OperatorAuthConfig struct {
	SecretKey string        // 签名密钥
	Issuer    string        // 签发者
	TokenTTL  time.Duration // Token 有效期
}

// ==================== Claims 定义 ====================

// OperatorClaims 运营人员声明
type OperatorClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// GenerateOperatorToken 签发运营 Token
func GenerateOperatorToken(cfg OperatorAuthConfig, operator string) (string, error) {
	now := time.Now()
	claims := &OperatorClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   "operator",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SecretKey))
}

// ParseOperatorToken 解析并校验运营 Token
func ParseOperatorToken(cfg OperatorAuthConfig, tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.SecretKey), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithSubject("operator"))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OperatorClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

// ContextKeyOperator 运营人员
const ContextKeyOperator = "operator"

// OperatorAuth 运营接口鉴权中间件
func OperatorAuth(cfg OperatorAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未提供认证信息"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "认证格式错误，应为 Bearer {token}"})
			return
		}

		claims, err := ParseOperatorToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token 无效或已过期"})
			return
		}

		c.Set(ContextKeyOperator, claims.Operator)
		c.Next()
	}
}

// GetOperator 从 Context 获取运营人员
func GetOperator(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyOperator); exists {
		return name.(string)
	}
	return ""
}
