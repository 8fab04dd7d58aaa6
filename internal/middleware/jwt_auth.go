package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey string        // 签名密钥
	TokenTTL  time.Duration // Token 有效期
	Issuer    string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey: "printhub-secret-key-change-in-production",
		TokenTTL:  24 * time.Hour,
		Issuer:    "printhub",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// ==================== Claims 定义 ====================

// StationClaims 打印站声明
type StationClaims struct {
	ShopID   int64  `json:"shop_id"`
	ShopName string `json:"shop_name"`
	jwt.RegisteredClaims
}

// ==================== Token 生成与解析 ====================

// GenerateStationToken 签发打印站 Token（登录成功后调用）
func GenerateStationToken(shopID int64, shopName string) (string, error) {
	now := time.Now()
	claims := &StationClaims{
		ShopID:   shopID,
		ShopName: shopName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   "station",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// ParseStationToken 解析打印站 Token
func ParseStationToken(tokenString string) (*StationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*StationClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyShopID   = "shop_id"
	ContextKeyShopName = "shop_name"
)

// StationAuth 打印站认证中间件
func StationAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未提供认证信息",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "认证格式错误，应为 Bearer {token}",
			})
			c.Abort()
			return
		}

		claims, err := ParseStationToken(parts[1])
		if err != nil || claims.Subject != "station" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Token 无效或已过期",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyShopID, claims.ShopID)
		c.Set(ContextKeyShopName, claims.ShopName)
		c.Next()
	}
}

// GetShopID 从 Context 获取打印站 ID
func GetShopID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyShopID); exists {
		return id.(int64)
	}
	return 0
}
