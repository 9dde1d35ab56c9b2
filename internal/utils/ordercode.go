package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderCode returns a short human-friendly code such as
// "PZ-260314-2031-0427", safe to read out over the phone.
func GenerateOrderCode(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("PZ-%s-%04d", now.Format("060102-1504"), n.Int64())
}
