package alert

import "time"

// Clock abstracts time.Now so suppression arithmetic can be tested with a
// controlled clock instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
