package config

import (
	"fmt"
	"time"
)

const (
	EnvJobsTTL             = "BRIEFER_JOBS_TTL"
	EnvJobsJanitorInterval = "BRIEFER_JOBS_JANITOR_INTERVAL"
	EnvJobsMaxJobs         = "BRIEFER_JOBS_MAX_JOBS"
)

// JobsConfig bounds the in-memory job tracker.
type JobsConfig struct {
	TTL             string `toml:"ttl"`
	JanitorInterval string `toml:"janitor_interval"`
	MaxJobs         int    `toml:"max_jobs"`
}

func (c *JobsConfig) TTLDuration() time.Duration             { return duration(c.TTL) }
func (c *JobsConfig) JanitorIntervalDuration() time.Duration { return duration(c.JanitorInterval) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *JobsConfig) Finalize() error {
	if c.TTL == "" {
		c.TTL = "1h"
	}
	if c.JanitorInterval == "" {
		c.JanitorInterval = "5m"
	}
	if c.MaxJobs <= 0 {
		c.MaxJobs = 1000
	}

	envString(&c.TTL, EnvJobsTTL)
	envString(&c.JanitorInterval, EnvJobsJanitorInterval)
	envInt(&c.MaxJobs, EnvJobsMaxJobs)

	if err := parseDuration("ttl", c.TTL); err != nil {
		return err
	}
	if err := parseDuration("janitor_interval", c.JanitorInterval); err != nil {
		return err
	}
	if c.JanitorIntervalDuration() <= 0 {
		return fmt.Errorf("janitor_interval must be positive")
	}
	if c.MaxJobs < 1 {
		return fmt.Errorf("max_jobs must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *JobsConfig) Merge(overlay *JobsConfig) {
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.JanitorInterval != "" {
		c.JanitorInterval = overlay.JanitorInterval
	}
	if overlay.MaxJobs != 0 {
		c.MaxJobs = overlay.MaxJobs
	}
}
