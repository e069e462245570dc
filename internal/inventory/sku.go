package inventory

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// GenerateSKU builds "SKU" + the last six digits of the millisecond clock +
// three random digits, e.g. SKU482193007.
func GenerateSKU(now time.Time, rnd *rand.Rand) string {
	var n int
	if rnd == nil {
		n = rand.IntN(1000)
	} else {
		n = rnd.IntN(1000)
	}

	return fmt.Sprintf("SKU%06d%03d", now.UnixMilli()%1_000_000, n)
}
