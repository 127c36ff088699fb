package service

import (
	"fmt"
	"math/rand"
	"time"
)

// placeholderEmail derives a deterministic placeholder address from the
// tenant-supplied external identifier.
func placeholderEmail(externalID, domain string) string {
	prefix := externalID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("user-%s@%s", prefix, domain)
}

// placeholderPhone generates a unique-enough placeholder number: a fixed
// country-code-like prefix, the low-order digits of the current timestamp, and
// a few random digits. Repeated auto-creation attempts therefore cannot
// collide under the per-tenant phone uniqueness constraint.
func placeholderPhone(now time.Time) string {
	return fmt.Sprintf("+91%07d%03d", now.UnixNano()%10_000_000, rand.Intn(1000))
}
