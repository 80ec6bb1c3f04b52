package constants

import "time"

// Redis keys
const (
	RedisKeyPoolPrefix = "pools:"
	RedisKeyPoolIndex  = "pools:index"
	RedisKeyRecentOps  = "ops:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelOps = "ops:live"
)

// Limits
const (
	MaxRecentOps    = 100
	CommitRetries   = 5 // optimistic commit attempts before giving up
	DefaultOpsLimit = 50
)

// Timeouts
const (
	StoreOpTimeout = 5 * time.Second
)
