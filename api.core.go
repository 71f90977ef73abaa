package main

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Core holds what every HTTP surface of the app shares: logging,
// configuration, statistics and the ops endpoints.
type Core struct {
	logger *zap.Logger
	config *Config
	clock  Clocker
	ids    UIDHandler
	stats  *Statistics
}

// NewCore provides a new instance of Core.
func NewCore(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, stats *Statistics) *Core {
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	return &Core{logger: logger, config: config, clock: clock, ids: ids, stats: stats}
}

// recordStatus counts one more response with the given status code.
func (c *Core) recordStatus(code int) {
	c.stats.mu.Lock()
	c.stats.status[code]++
	c.stats.mu.Unlock()
}
