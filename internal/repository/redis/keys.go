package redis

import "fmt"

const ns = "clubtix:v1"

func KeyEventSummary(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:summary", ns, eventID)
}

// KeyEventDiscounts names the cached active-discount snapshot of one event.
func KeyEventDiscounts(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:discounts", ns, eventID)
}
