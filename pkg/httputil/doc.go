// Package httputil provides HTTP retry utilities for the VK API client.
//
// # Retry
//
// [Retry] re-runs an operation with bounded exponential backoff, but only
// for errors wrapped with [RetryableError]:
//
//   - Network errors and timeouts
//   - 5xx server errors
//
// API-level errors (an "error" object inside a 200 response) are returned
// on the first attempt. The policy is configurable:
//
//	policy := httputil.Policy{Attempts: 3, Delay: time.Second}
//	err := httputil.Retry(ctx, policy, func() error {
//	    return doRequest()
//	})
//
// # Configuration
//
// [DefaultPolicy] is 3 attempts with a 1 second initial delay, doubling
// after each failure and capped at 30 seconds. [NoRetry] performs a single
// attempt.
package httputil
