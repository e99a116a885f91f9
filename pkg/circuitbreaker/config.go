package circuitbreaker

import "time"

// Config holds the settings of one breaker. It maps onto envconfig
// sections, so every field has a sensible zero value.
type Config struct {
	Name    string
	Enabled bool

	// MaxRequests is the number of probes let through while half-open; 0 means 1.
	MaxRequests uint

	// Interval clears the failure counts while closed; 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open; 0 means 60 seconds.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint
}
