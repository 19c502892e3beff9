package models

import "fmt"

// durationUnits is ordered largest-first so the first unit that fits wins.
var durationUnits = []struct {
	seconds int64
	name    string
}{
	{31536000, "year"},
	{2592000, "month"},
	{604800, "week"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
	{1, "second"},
}

// FormatDuration renders a ban duration in seconds as the largest whole unit,
// pluralized when the count exceeds one. A nil or non-positive duration means
// the ban is permanent.
func FormatDuration(seconds *int64) string {
	if seconds == nil || *seconds <= 0 {
		return "Permanent"
	}
	for _, unit := range durationUnits {
		count := *seconds / unit.seconds
		if count > 0 {
			if count > 1 {
				return fmt.Sprintf("%d %ss", count, unit.name)
			}
			return fmt.Sprintf("1 %s", unit.name)
		}
	}
	return "Permanent"
}
