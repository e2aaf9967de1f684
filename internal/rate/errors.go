package rate

import "errors"

var (
	// ErrRateLimited marks a rotation attempt rejected by the throttle.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps backing-store failures so they stay
	// distinct from throttle rejections.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
