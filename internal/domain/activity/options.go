package activity

import (
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultGenerationTimeout = 60 * time.Second
	defaultHistoryLimit      = 20
)

// ServiceConfig configures generation behavior.
type ServiceConfig struct {
	// GenerationTimeout bounds one generation call including place
	// enrichment. Zero uses the default.
	GenerationTimeout time.Duration
	// MaxConcurrent caps parallel generations within one prefetch batch.
	// Zero runs every eligible activity at once.
	MaxConcurrent int
	// RateLimit throttles generation calls; zero disables throttling.
	RateLimit rate.Limit
	Burst     int
}

// ServiceDeps supplies collaborators for the activity service.
type ServiceDeps struct {
	Coordinator *Coordinator
	Generator   Generator
	Places      PlaceSearcher
	Lookup      ActivityLookup
	Events      EventLog
}

// PrefetchReport summarizes one prefetch batch.
type PrefetchReport struct {
	Scheduled []string          `json:"scheduled"`
	Skipped   []string          `json:"skipped"`
	Failed    map[string]string `json:"failed,omitempty"`
}
