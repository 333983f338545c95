package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timing values for the pipeline.
// These values can be customized via environment variables.
type Timeouts struct {
	Ready         time.Duration // Timeout for component readiness waits
	OperatorReady time.Duration // Timeout for the operator install wait
	Delete        time.Duration // Timeout for teardown operations
	PollInterval  time.Duration // Interval between readiness probes
	RetryAttempts int           // Maximum number of apply attempts
	RetryDelay    time.Duration // Fixed delay between apply attempts
}

// LoadTimeouts loads timing configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - LLSCTL_TIMEOUT_READY (default: 5m)
//   - LLSCTL_TIMEOUT_OPERATOR_READY (default: 10m)
//   - LLSCTL_TIMEOUT_DELETE (default: 5m)
//   - LLSCTL_POLL_INTERVAL (default: 5s)
//   - LLSCTL_RETRY_MAX_ATTEMPTS (default: 3)
//   - LLSCTL_RETRY_DELAY (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Ready:         parseDuration("LLSCTL_TIMEOUT_READY", 5*time.Minute),
		OperatorReady: parseDuration("LLSCTL_TIMEOUT_OPERATOR_READY", 10*time.Minute),
		Delete:        parseDuration("LLSCTL_TIMEOUT_DELETE", 5*time.Minute),
		PollInterval:  parseDuration("LLSCTL_POLL_INTERVAL", 5*time.Second),
		RetryAttempts: parseInt("LLSCTL_RETRY_MAX_ATTEMPTS", 3),
		RetryDelay:    parseDuration("LLSCTL_RETRY_DELAY", 5*time.Second),
	}
}

// TestTimeouts returns short values suitable for tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		Ready:         100 * time.Millisecond,
		OperatorReady: 100 * time.Millisecond,
		Delete:        100 * time.Millisecond,
		PollInterval:  10 * time.Millisecond,
		RetryAttempts: 2,
		RetryDelay:    10 * time.Millisecond,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
