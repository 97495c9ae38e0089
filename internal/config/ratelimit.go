package config

import "time"

// RateLimitConfig configures the token bucket guarding the public adoption
// form.  A sponsor submits a form once or twice, so the defaults allow a
// burst of 5 and then one submission every 20 seconds per key.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // dimensions joined by "_": ip, user, route
	Prefix         string
	Debug          bool // expose X-RateLimit-* headers
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables and clamps values
// that would make the bucket useless.  TTL is at least five refill
// intervals so an idle bucket is not evicted while it still matters.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       max(envInt("RATE_LIMIT_CAPACITY", 5), 1),
		RefillTokens:   max(envInt("RATE_LIMIT_REFILL_TOKENS", 1), 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 20*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "adopt:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	c.TTL = max(c.TTL, 5*c.RefillInterval)
	return c
}
