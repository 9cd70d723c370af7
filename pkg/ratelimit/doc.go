// Package ratelimit provides per-credential rate limiting for the crawler.
//
// Each API credential gets its own token bucket sized to the Twitter
// v1.1 per-endpoint allowance (15 requests per 15-minute window for the
// follower/followee cursor endpoints, which are the tightest limits the
// crawler hits). The bucket refills in full once the window elapses.
//
// All limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	limiter := ratelimit.NewTokenBucket(15, 15*time.Minute)
//
//	if !limiter.Allow() {
//	    limiter.Wait()
//	}
//	// Proceed with request
package ratelimit
