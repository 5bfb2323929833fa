package random

import (
	"crypto/rand"
	"math/big"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetNowAndLenRandomString 日期前缀 + 随机字母数字
// 示例: 241230AbCdE1234567
func GetNowAndLenRandomString(length int) string {
	result := make([]byte, length)
	n := big.NewInt(int64(len(charset)))
	for i := range result {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[idx.Int64()]
	}
	return time.Now().Format("060102") + string(result)
}
