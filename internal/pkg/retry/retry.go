package retry

import "time"

// Do runs fn up to attempts times, sleeping delay between failures.
// The delay doubles after each attempt up to maxDelay. Returns the last error.
func Do(attempts int, delay, maxDelay time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if maxDelay < delay {
		maxDelay = delay
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		time.Sleep(delay)
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return err
}
