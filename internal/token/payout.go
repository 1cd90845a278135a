package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// NewPayoutToken 生成提现详情链接的一次性令牌
// 返回明文令牌（只在创建时出现一次）和用于持久化的SHA-256哈希
func NewPayoutToken() (plaintext string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	plaintext = base64.RawURLEncoding.EncodeToString(buf)
	return plaintext, HashPayoutToken(plaintext), nil
}

// HashPayoutToken 计算令牌哈希，查库用
func HashPayoutToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
