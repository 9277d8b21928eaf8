// Package broker builds and dispatches broker tasks, streams back
// per-site results, and drives the asynchronous refresh workflow that
// keeps the criteria cache warm.
package broker

import (
	"strings"

	"github.com/google/uuid"
)

// FailureStrategy mirrors the broker's retry metadata attached to a task —
// it instructs the broker how to redeliver to sites, not a client-side
// retry loop.
type FailureStrategy struct {
	BackoffMillis int64 `json:"backoff_millisecs"`
	MaxTries      int   `json:"max_tries"`
}

// Task is the pure, side-effect-free representation of a broker task
// request addressed to a batch of sites.
type Task struct {
	ID              string          `json:"id"`
	From            string          `json:"from"`
	To              []string        `json:"to"`
	Body            string          `json:"body"`
	Metadata        map[string]any  `json:"metadata"`
	FailureStrategy FailureStrategy `json:"failure_strategy"`
	TTL             string          `json:"ttl"`
}

// TaskConfig carries the fixed fields every task shares, sourced from
// startup configuration.
type TaskConfig struct {
	FromAddress string // this service's own broker address
	TargetApp   string // default "focus"
	Project     string
	QueryBody   string // the fixed, pre-encoded query text
}

// BuildTask constructs a Task addressed to sites. Pure: it never talks to
// the broker itself.
func BuildTask(sites []string, cfg TaskConfig) Task {
	to := make([]string, 0, len(sites))
	brokerDomain := brokerDomainOf(cfg.FromAddress)
	for _, site := range sites {
		to = append(to, cfg.TargetApp+"."+site+"."+brokerDomain)
	}

	return Task{
		ID:   uuid.New().String(),
		From: cfg.FromAddress,
		To:   to,
		Body: cfg.QueryBody,
		Metadata: map[string]any{
			"project": cfg.Project,
			"execute": false,
		},
		FailureStrategy: FailureStrategy{BackoffMillis: 1000, MaxTries: 5},
		TTL:             "360s",
	}
}

// brokerDomainOf splits addr at its first '.' and returns the suffix.
func brokerDomainOf(addr string) string {
	if i := strings.IndexByte(addr, '.'); i >= 0 {
		return addr[i+1:]
	}
	return addr
}

// SiteFromAddress extracts the site identifier from a broker "from"
// address of the form "<app>.<site>.<domain...>" — the second
// dot-separated component. Factored behind this one helper so the
// broker's address scheme can change in one place.
func SiteFromAddress(from string) (string, error) {
	parts := strings.SplitN(from, ".", 3)
	if len(parts) < 2 {
		return "", unexpectedAddressError(from)
	}
	return parts[1], nil
}

func unexpectedAddressError(from string) error {
	return &invalidAddressError{from: from}
}

type invalidAddressError struct {
	from string
}

func (e *invalidAddressError) Error() string {
	return "broker address has no site component: " + e.from
}
