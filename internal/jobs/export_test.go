package jobs

import "time"

func (t *Tracker) SetClock(fn func() time.Time) { t.now = fn }
