package token

import (
	"errors"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuditTokenMaxAge 审计令牌的最长有效期上限
// 即使调用方要求更长的有效期，也以此为准
const AuditTokenMaxAge = 30 * 24 * time.Hour

// AuditSigner 审计链接的无状态签名令牌
// 令牌自包含募捐活动ID和过期时间，有效性 = 签名通过 且 未过期
type AuditSigner struct {
	secret []byte
}

// NewAuditSigner 创建审计令牌签名器
func NewAuditSigner(secret string) *AuditSigner {
	return &AuditSigner{secret: []byte(secret)}
}

type auditClaims struct {
	FundraiserId string `json:"fundraiser_id"`
	jwt.RegisteredClaims
}

// Issue 签发审计令牌，返回令牌和实际过期时间
func (s *AuditSigner) Issue(fundraiserId uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 || ttl > AuditTokenMaxAge {
		ttl = AuditTokenMaxAge
	}
	expiresAt := time.Now().Add(ttl)

	claims := auditClaims{
		FundraiserId: fundraiserId.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, expiresAt, nil
}

// Resolve 校验审计令牌并返回其绑定的募捐活动ID
func (s *AuditSigner) Resolve(tokenString string) (uuid.UUID, error) {
	var claims auditClaims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperr.New(apperr.KindTokenExpired, "审计令牌已过期")
		}
		return uuid.Nil, apperr.Wrap(apperr.KindValidation, "审计令牌无效", err)
	}
	if !tok.Valid {
		return uuid.Nil, apperr.New(apperr.KindValidation, "审计令牌无效")
	}

	// 签发时刻过早的令牌一律拒绝，限制令牌的最长存活时间
	if claims.IssuedAt != nil && time.Since(claims.IssuedAt.Time) > AuditTokenMaxAge {
		return uuid.Nil, apperr.New(apperr.KindTokenExpired, "审计令牌已过期")
	}

	id, err := uuid.Parse(claims.FundraiserId)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindValidation, "审计令牌载荷无效", err)
	}
	return id, nil
}
