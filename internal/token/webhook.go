package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/blues/dls/internal/apperr"
)

// DefaultWebhookTolerance 回调时间戳的默认容忍窗口
const DefaultWebhookTolerance = 300 * time.Second

// WebhookVerifier 支付网关回调的签名校验器
// 签名算法: hex(hmac_sha256(secret, "{timestamp}.{rawBody}"))
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
}

// NewWebhookVerifier 创建回调签名校验器，tolerance<=0 时使用默认窗口
func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = DefaultWebhookTolerance
	}
	return &WebhookVerifier{secret: []byte(secret), tolerance: tolerance}
}

// Sign 计算给定时间戳和原始报文的签名（测试与本地联调用）
func (v *WebhookVerifier) Sign(timestamp int64, rawBody []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify 校验回调签名与时间戳
// 时间戳偏离容忍窗口时直接拒绝，阻断对截获报文的重放
func (v *WebhookVerifier) Verify(rawBody []byte, signatureHeader, timestampHeader string) error {
	if signatureHeader == "" || timestampHeader == "" {
		return apperr.New(apperr.KindSignature, "缺少签名或时间戳头")
	}

	ts, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return apperr.Wrap(apperr.KindSignature, "时间戳头无效", err)
	}

	skew := time.Since(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.tolerance {
		return apperr.New(apperr.KindSignature, "时间戳超出容忍窗口")
	}

	expected := v.Sign(ts, rawBody)
	if !hmac.Equal([]byte(expected), []byte(signatureHeader)) {
		return apperr.New(apperr.KindSignature, "签名不匹配")
	}
	return nil
}
