package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer             = "group_chat"
	accessTokenSubject = "access_token"
)

var (
	secret      []byte
	accessTTL   = 2 * time.Hour
	ErrNotReady = errors.New("jwt secret not initialized")
)

// Init 设置签名密钥与 Access Token 有效期
func Init(signingSecret string, accessExpiryMinutes int) {
	secret = []byte(signingSecret)
	if accessExpiryMinutes > 0 {
		accessTTL = time.Duration(accessExpiryMinutes) * time.Minute
	}
}

// Claims 调用方身份，签发由外部认证服务负责，这里只做校验
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// IsAccessToken 只有 Access Token 可访问业务接口
func (c *Claims) IsAccessToken() bool {
	return c.Subject == accessTokenSubject
}

// GenerateAccessToken 签发 Access Token，供本地联调与测试使用
func GenerateAccessToken(userID string) (string, error) {
	if len(secret) == 0 {
		return "", ErrNotReady
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   accessTokenSubject,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken 校验签名与有效期
func ParseToken(tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrNotReady
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
