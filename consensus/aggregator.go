package consensus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/docsieve/docsieve/agents"
	"github.com/docsieve/docsieve/model"
)

// ErrNoConsensus is returned when every routed analyzer failed or timed out.
// The underlying item remains valid without a consensus record.
var ErrNoConsensus = errors.New("no analyzer produced a result")

// Config holds aggregation settings.
type Config struct {
	// CallTimeout bounds each individual analyzer call.
	CallTimeout time.Duration
}

// DefaultConfig returns the default aggregation settings.
func DefaultConfig() Config {
	return Config{
		CallTimeout: 30 * time.Second,
	}
}

// FailedCall records one analyzer that did not settle successfully.
type FailedCall struct {
	AnalyzerID string
	Err        error
}

// Aggregator invokes analyzers and merges their results.
type Aggregator struct {
	invoker agents.Invoker
	config  Config
	logger  zerolog.Logger
}

// New creates an Aggregator with default settings and no logging.
func New(invoker agents.Invoker) *Aggregator {
	return NewWithConfig(invoker, DefaultConfig(), zerolog.Nop())
}

// NewWithConfig creates an Aggregator with the given settings.
func NewWithConfig(invoker agents.Invoker, config Config, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		invoker: invoker,
		config:  config,
		logger:  logger,
	}
}

// Enhance invokes every routed analyzer concurrently, waits for all calls to
// settle, and merges the successes into a consensus record. Failed calls are
// reported alongside the result; they abort nothing. When zero analyzers
// succeed the result is nil and the error is ErrNoConsensus.
func (a *Aggregator) Enhance(ctx context.Context, item agents.Item, analyzerIDs []string, contentType model.ContentType) (*model.ConsensusResult, []FailedCall, error) {
	if len(analyzerIDs) == 0 {
		return nil, nil, ErrNoConsensus
	}

	type slot struct {
		result model.AgentResult
		err    error
	}
	slots := make([]slot, len(analyzerIDs))

	var wg sync.WaitGroup
	for i, id := range analyzerIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
			defer cancel()

			slots[i].result, slots[i].err = a.invoker.Invoke(callCtx, id, item, contentType)
		}(i, id)
	}
	wg.Wait()

	// Successes keep analyzer-list order; the merge uses that order as the
	// final tie break.
	var results []model.AgentResult
	var failed []FailedCall
	for i, id := range analyzerIDs {
		if slots[i].err != nil {
			failed = append(failed, FailedCall{AnalyzerID: id, Err: slots[i].err})
			a.logger.Warn().
				Str("analyzer", id).
				Str("item", item.ID()).
				Err(slots[i].err).
				Msg("analyzer call failed")
			continue
		}
		results = append(results, slots[i].result)
	}

	if len(results) == 0 {
		return nil, failed, ErrNoConsensus
	}

	consensus := Merge(results, contentType)
	a.logger.Debug().
		Str("item", item.ID()).
		Int("succeeded", len(results)).
		Int("failed", len(failed)).
		Float64("overall_confidence", consensus.OverallConfidence).
		Msg("consensus computed")

	return consensus, failed, nil
}
