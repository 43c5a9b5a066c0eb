package document

import "time"

// yearLength is the average calendar year, leap days included.
const yearLength = time.Duration(365.25 * 24 * float64(time.Hour))

// LiveAge returns the age to display for a patient whose age was recorded as
// storedAge at createdAt: the stored age plus the whole years elapsed since
// then. A zero createdAt or a createdAt after now adds nothing.
func LiveAge(storedAge int, createdAt, now time.Time) int {
	if createdAt.IsZero() || !now.After(createdAt) {
		return storedAge
	}
	return storedAge + int(now.Sub(createdAt)/yearLength)
}
