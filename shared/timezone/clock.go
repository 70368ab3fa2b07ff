package timezone

import "time"

// Clock abstracts the wall clock so date logic can be exercised with a fixed instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// SystemClock returns a Clock reading the current time in the application timezone.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// StartOfDay truncates t to local midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
