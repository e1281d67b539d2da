package ledger

import (
	"strconv"
	"strings"
)

// NextID returns one past the largest integer among ids, or 1 when there is
// none. Values that are not integers are skipped. Ids freed by deletion are
// never handed out again as long as a higher id survives.
func NextID(ids []string) int64 {
	var max int64
	for _, v := range ids {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}
