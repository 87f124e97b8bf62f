package services

import "time"

// IsStale reports whether a prospect's last contact is old enough to
// require action. A nil lastContact means the prospect has never been
// contacted, which is always stale. Exactly at the threshold counts as
// stale, so a prospect cannot sit unactionable at the boundary.
func IsStale(lastContact *time.Time, threshold time.Duration, now time.Time) bool {
	if lastContact == nil {
		return true
	}
	return now.Sub(*lastContact) >= threshold
}
