package constants

import "time"

var CacheTTL = struct {
	Card time.Duration
}{
	Card: 30 * 24 * time.Hour, // generated cards are reusable for a month
}

var StageTimeouts = struct {
	TextSynthesis  time.Duration
	ImageSynthesis time.Duration
	PhotoFetch     time.Duration
	CacheOp        time.Duration
	StoreOp        time.Duration
}{
	TextSynthesis:  45 * time.Second,
	ImageSynthesis: 60 * time.Second,
	PhotoFetch:     10 * time.Second,
	CacheOp:        3 * time.Second,
	StoreOp:        5 * time.Second,
}

var InputLimits = struct {
	MinNameLength int
	MaxNameLength int
	MaxBioLength  int
}{
	MinNameLength: 2,
	MaxNameLength: 80,
	MaxBioLength:  2000,
}

var ImageConfig = struct {
	DefaultMIMEType string
	MaxPhotoBytes   int64
	AspectRatio     string
}{
	DefaultMIMEType: "image/jpeg",
	MaxPhotoBytes:   8 << 20, // 8 MiB cap on fetched reference photos
	AspectRatio:     "3:4",
}

var PostgresPool = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
	ConnectTimeout:  5 * time.Second,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour, // dedicated 429 back-off
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var WarmupConfig = struct {
	Concurrency int
	Timeout     time.Duration
}{
	Concurrency: 4,
	Timeout:     15 * time.Second,
}
