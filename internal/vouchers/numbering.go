package vouchers

import (
	"fmt"
	"strconv"
	"time"
)

// sequenceDigits is the zero-padded width of the per-day sequence tail.
const sequenceDigits = 6

// formatNumber renders a voucher number as {prefix}-{DDMMYY}{seq}. The date
// segment is the posting day, not the voucher's ledger date.
func formatNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s%0*d", prefix, day.Format("020106"), sequenceDigits, seq)
}

// nextSequence derives the next sequence from the greatest issued number for
// a prefix and day. Anything unparsable restarts the sequence at 1 rather
// than failing the posting.
func nextSequence(lastNumber string) int {
	if len(lastNumber) < sequenceDigits {
		return 1
	}
	tail := lastNumber[len(lastNumber)-sequenceDigits:]
	seq, err := strconv.Atoi(tail)
	if err != nil || seq < 0 {
		return 1
	}
	return seq + 1
}
