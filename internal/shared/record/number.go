package record

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Number builds a human readable reference such as "POL-1767225600000-042".
func Number(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, now.UnixMilli(), rand.IntN(1000))
}
