// Package vk is a minimal client for the VK API methods the crawler needs.
//
// Every call is a GET against a fixed base URL plus a method path
// ("users.get", "users.getFollowers", ...). The client adds the API version,
// language and access token to the query string, reuses pooled connections
// and applies a per-call timeout.
//
// # Errors
//
// Transport failures, timeouts and non-200 statuses return an error wrapping
// [ErrNetwork]; transient ones are also marked retryable (see
// [httputil.RetryableError]) and retried under the configured policy. A
// 200 response whose body holds an "error" object returns an [*APIError],
// which is never retried. Callers decide whether either kind is fatal; the
// crawler treats both as soft failures.
package vk
