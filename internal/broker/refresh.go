package broker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/samply/prism/internal/cache"
	"github.com/samply/prism/internal/stratum"
)

// RefreshEngine posts one broker task per refresh batch and consumes the
// streamed per-site results into the criteria cache. It is the only
// writer of cache entries.
type RefreshEngine struct {
	client    Client
	cache     *cache.CriteriaCache
	taskCfg   TaskConfig
	waitCount int
}

// NewRefreshEngine wires a RefreshEngine from its collaborators.
func NewRefreshEngine(client Client, criteriaCache *cache.CriteriaCache, taskCfg TaskConfig, waitCount int) *RefreshEngine {
	return &RefreshEngine{
		client:    client,
		cache:     criteriaCache,
		taskCfg:   taskCfg,
		waitCount: waitCount,
	}
}

// PostQuery builds and posts a single task for sites, then detaches a
// background stream consumer for its results. Returns the minted task id.
// An empty sites slice is a no-op. The broker POST itself is never
// retried at this layer — a transport or non-2xx response fails
// immediately with BrokerError; redelivery to sites is the broker's own
// concern via the task's failure_strategy.
func (e *RefreshEngine) PostQuery(ctx context.Context, sites []string) (string, error) {
	if len(sites) == 0 {
		return "", nil
	}

	task := BuildTask(sites, e.taskCfg)
	if err := e.client.PostTask(ctx, task); err != nil {
		return "", err
	}

	go e.consumeResults(context.Background(), task.ID, len(sites))
	return task.ID, nil
}

// consumeResults drains the streamed results for taskID into the cache.
// Detached from the requester: it runs until the stream ends or the
// process exits, and its only observable effect is cache insertion.
func (e *RefreshEngine) consumeResults(ctx context.Context, taskID string, expectedCount int) {
	log := slog.With("task_id", taskID)

	n := expectedCount
	if e.waitCount > 0 && e.waitCount < n {
		n = e.waitCount
	}

	results, err := e.client.StreamResults(ctx, taskID, n)
	if err != nil {
		log.Warn("failed to open results stream", "error", err)
		return
	}

	for result := range results {
		e.handleFrame(log, result)
	}
}

func (e *RefreshEngine) handleFrame(log *slog.Logger, result TaskResult) {
	switch result.Status {
	case StatusClaimed:
		log.Debug("site claimed task", "from", result.From)
		return
	case StatusTempFailed, StatusPermFailed:
		log.Warn("site reported failure", "from", result.From, "status", result.Status)
		return
	case StatusSucceeded:
		// fall through to decode below
	default:
		log.Warn("unexpected work status", "from", result.From, "status", result.Status)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(result.Body)
	if err != nil {
		log.Warn("failed to base64-decode result body", "from", result.From, "error", err)
		return
	}

	var report stratum.MeasureReport
	if err := json.Unmarshal(raw, &report); err != nil {
		log.Warn("failed to deserialize measure report", "from", result.From, "error", err)
		return
	}

	stratifiers, err := stratum.Reduce(report)
	if err != nil {
		log.Warn("failed to reduce measure report", "from", result.From, "error", err)
		return
	}

	site, err := SiteFromAddress(result.From)
	if err != nil {
		log.Warn("failed to extract site from address", "from", result.From, "error", err)
		return
	}

	e.cache.Put(site, stratifiers)
}
