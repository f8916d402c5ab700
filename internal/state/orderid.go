package state

import (
	"fmt"
	"time"
)

// CounterKey identifies one store's counter for one calendar day. The
// day is part of the key, so the first order of a new day naturally
// starts a fresh counter at 1.
func CounterKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s:%s", prefix, t.Format("0201"))
}

// FormatOrderID builds the human-readable order identifier
// <prefix><day><month>-<counter>, e.g. "CV20108-01".
func FormatOrderID(prefix string, t time.Time, counter int) string {
	return fmt.Sprintf("%s%s-%02d", prefix, t.Format("0201"), counter)
}

// AllocateOrderID reads the counter for the store's current day,
// increments it and returns the formatted id together with the updated
// counter value. It must be called inside the same transition that
// creates the order, so no two orders can observe the same counter.
func AllocateOrderID(counters map[string]int, prefix string, t time.Time) (string, int) {
	key := CounterKey(prefix, t)
	next := counters[key] + 1
	return FormatOrderID(prefix, t, next), next
}
