package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"sync"
	"time"
)

// in-memory fallback store for cooldowns when Redis is unavailable
type cooldownEntry struct {
	expiresAt time.Time
}

var (
	cooldowns   = map[string]cooldownEntry{}
	cooldownsMu sync.Mutex
)

// GenerateVerificationCode creates a numeric code with given length.
func GenerateVerificationCode(n int) string {
	if n <= 0 {
		n = 6
	}
	digits := make([]byte, n)
	for i := 0; i < n; i++ {
		// crypto/rand for better unpredictability
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// fallback to time based modulo if crypto fails
			v = big.NewInt(time.Now().UnixNano() % 10)
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}

// GenerateResetToken returns a 64 character hex token for password resets.
func GenerateResetToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return GenerateVerificationCode(32)
	}
	return hex.EncodeToString(b)
}

// EmailCooldownTrySet sets a cooldown key for sending mail to an address.
// Returns true if set, false if still cooling down. Prefers Redis; falls
// back to memory on a single instance.
func EmailCooldownTrySet(email string, cooldown time.Duration) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := "cooldown:email:" + email
		ok, err := rc.SetNX(ctx, key, "1", cooldown).Result()
		if err == nil {
			return ok
		}
	}
	cooldownsMu.Lock()
	defer cooldownsMu.Unlock()
	if entry, ok := cooldowns[email]; ok && time.Now().Before(entry.expiresAt) {
		return false
	}
	cooldowns[email] = cooldownEntry{expiresAt: time.Now().Add(cooldown)}
	return true
}
