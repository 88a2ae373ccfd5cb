package agents

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/docsieve/docsieve/figures"
	"github.com/docsieve/docsieve/model"
)

// resultSchema is the closed schema every analyzer response must satisfy.
// Anything outside it is rejected at the boundary.
const resultSchema = `{
  "type": "object",
  "required": ["analyzer_id", "fields", "overall_confidence"],
  "properties": {
    "analyzer_id": {"type": "string", "minLength": 1},
    "fields": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["value", "confidence"],
        "properties": {
          "value": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        },
        "additionalProperties": false
      }
    },
    "overall_confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "source_quote": {"type": "string"},
    "insights": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": false
}`

// HTTPConfig holds settings for the HTTP reference invoker.
type HTTPConfig struct {
	// BaseURL is the analyzer service root. Calls POST to
	// BaseURL/analyzers/{id}.
	BaseURL string

	// APIKey, when set, is sent as a bearer token.
	APIKey string

	// MaxRetries bounds retry attempts for retryable failures.
	MaxRetries int

	// InitialBackoff is the first retry delay; later delays double, capped
	// at MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// RequestsPerSecond and Burst parameterize the client-side token
	// bucket. Zero RequestsPerSecond disables rate limiting.
	RequestsPerSecond float64
	Burst             int

	// MaxImageDim caps figure raster payloads; larger rasters are
	// downscaled before encoding.
	MaxImageDim int

	// Breaker parameterizes the per-analyzer circuit breakers.
	Breaker BreakerConfig
}

// DefaultHTTPConfig returns the default invoker settings.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
		MaxImageDim:       1024,
		Breaker:           DefaultBreakerConfig(),
	}
}

// HTTPInvoker calls analyzers over HTTP with retry, rate limiting, response
// validation and a per-analyzer circuit breaker.
type HTTPInvoker struct {
	config     HTTPConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	schema     *jsonschema.Schema
	logger     zerolog.Logger

	breakers *breakerSet
}

// breakerSet lazily creates one Breaker per analyzer id.
type breakerSet struct {
	config   BreakerConfig
	mu       sync.Mutex
	breakers map[string]*Breaker
}

func newBreakerSet(config BreakerConfig) *breakerSet {
	return &breakerSet{
		config:   config,
		breakers: make(map[string]*Breaker),
	}
}

func (s *breakerSet) get(analyzerID string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[analyzerID]
	if !ok {
		b = NewBreaker(s.config)
		s.breakers[analyzerID] = b
	}
	return b
}

// NewHTTPInvoker creates an HTTP invoker. The logger may be a Nop logger.
func NewHTTPInvoker(config HTTPConfig, client *http.Client, logger zerolog.Logger) (*HTTPInvoker, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("invoker: BaseURL is required")
	}
	// The request loop must run at least once.
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if client == nil {
		client = &http.Client{}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("agent_result.json", strings.NewReader(resultSchema)); err != nil {
		return nil, fmt.Errorf("invoker: add result schema: %w", err)
	}
	schema, err := compiler.Compile("agent_result.json")
	if err != nil {
		return nil, fmt.Errorf("invoker: compile result schema: %w", err)
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &HTTPInvoker{
		config:     config,
		httpClient: client,
		limiter:    limiter,
		schema:     schema,
		logger:     logger,
		breakers:   newBreakerSet(config.Breaker),
	}, nil
}

// invokeRequest is the JSON body posted to an analyzer.
type invokeRequest struct {
	AnalyzerID  string `json:"analyzer_id"`
	ContentType string `json:"content_type"`
	Item        struct {
		Kind     string `json:"kind"`
		ID       string `json:"id"`
		Page     int    `json:"page"`
		Text     string `json:"text,omitempty"`
		ImagePNG string `json:"image_png,omitempty"`
	} `json:"item"`
}

// Invoke posts the item to the analyzer endpoint and returns its validated
// result.
func (inv *HTTPInvoker) Invoke(ctx context.Context, analyzerID string, item Item, contentType model.ContentType) (model.AgentResult, error) {
	breaker := inv.breakers.get(analyzerID)
	if !breaker.Allow() {
		return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: ErrCircuitOpen}
	}

	if inv.limiter != nil {
		if err := inv.limiter.Wait(ctx); err != nil {
			return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: err}
		}
	}

	body, err := inv.buildBody(analyzerID, item, contentType)
	if err != nil {
		return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: err}
	}

	result, err := inv.post(ctx, analyzerID, body)
	if err != nil {
		breaker.RecordFailure()
		return model.AgentResult{}, err
	}
	breaker.RecordSuccess()
	return result, nil
}

func (inv *HTTPInvoker) buildBody(analyzerID string, item Item, contentType model.ContentType) ([]byte, error) {
	var req invokeRequest
	req.AnalyzerID = analyzerID
	req.ContentType = contentType.String()
	req.Item.ID = item.ID()
	req.Item.Page = item.Page()
	req.Item.Text = item.Text()

	switch {
	case item.Table != nil:
		req.Item.Kind = "table"
	case item.Figure != nil:
		req.Item.Kind = "figure"
		raster := item.Figure.Raster
		if raster != nil {
			if inv.config.MaxImageDim > 0 {
				raster = figures.Downscale(raster, inv.config.MaxImageDim)
			}
			data, err := figures.EncodePNG(raster)
			if err != nil {
				return nil, fmt.Errorf("encode figure raster: %w", err)
			}
			req.Item.ImagePNG = base64.StdEncoding.EncodeToString(data)
		}
	default:
		return nil, fmt.Errorf("empty item")
	}

	return json.Marshal(req)
}

// post sends the request with exponential backoff on retryable failures.
func (inv *HTTPInvoker) post(ctx context.Context, analyzerID string, body []byte) (model.AgentResult, error) {
	url := strings.TrimRight(inv.config.BaseURL, "/") + "/analyzers/" + analyzerID

	var lastErr *AnalyzerError
	for attempt := 0; attempt <= inv.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := inv.backoff(attempt - 1)
			inv.logger.Warn().
				Str("analyzer", analyzerID).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("retrying analyzer call")

			select {
			case <-ctx.Done():
				return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		if inv.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+inv.config.APIKey)
		}

		resp, err := inv.httpClient.Do(req)
		if err != nil {
			lastErr = &AnalyzerError{AnalyzerID: analyzerID, Err: err}
			if ctx.Err() != nil {
				return model.AgentResult{}, lastErr
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = &AnalyzerError{
				AnalyzerID: analyzerID,
				Status:     resp.StatusCode,
				Err:        fmt.Errorf("%s", strings.TrimSpace(string(payload))),
			}
			if !lastErr.Retryable() {
				return model.AgentResult{}, lastErr
			}
			continue
		}

		result, err := inv.decode(analyzerID, resp.Body)
		resp.Body.Close()
		if err != nil {
			return model.AgentResult{}, err
		}
		return result, nil
	}

	return model.AgentResult{}, lastErr
}

// decode parses and schema-validates an analyzer response body.
func (inv *HTTPInvoker) decode(analyzerID string, body io.Reader) (model.AgentResult, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: err}
	}

	var loose any
	if err := json.Unmarshal(data, &loose); err != nil {
		return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if err := inv.schema.Validate(loose); err != nil {
		return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: fmt.Errorf("response rejected by schema: %w", err)}
	}

	var result model.AgentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.AgentResult{}, &AnalyzerError{AnalyzerID: analyzerID, Err: err}
	}
	if result.AnalyzerID != analyzerID {
		return model.AgentResult{}, &AnalyzerError{
			AnalyzerID: analyzerID,
			Err:        fmt.Errorf("response claims analyzer %q", result.AnalyzerID),
		}
	}
	return result, nil
}

func (inv *HTTPInvoker) backoff(attempt int) time.Duration {
	backoff := float64(inv.config.InitialBackoff) * math.Pow(2, float64(attempt))
	if limit := float64(inv.config.MaxBackoff); backoff > limit {
		backoff = limit
	}
	return time.Duration(backoff)
}
