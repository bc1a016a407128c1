package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// OnceAMinute runs the given function at most once per minute across the process.
var OnceAMinute = &rate.Sometimes{Interval: time.Minute}
