package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/metrics"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	Logger *slog.Logger
	LLM    LLMClient
	Clock  clockwork.Clock

	// Timeout bounds one classification call.
	Timeout time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.LLM == nil {
		return errors.New("llm client is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return nil
}

// Classifier turns a free-text question into an engine request.
type Classifier struct {
	log *slog.Logger
	cfg Config
}

func New(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &Classifier{log: cfg.Logger, cfg: cfg}, nil
}

type response struct {
	Intent     string           `json:"intent"`
	Parameters *json.RawMessage `json:"parameters"`
}

type parameters struct {
	Locality      *string  `json:"locality"`
	Months        []string `json:"months"`
	GroupBy       *string  `json:"group_by"`
	AddressSearch *string  `json:"address_search"`
}

// Classify never fails: any LLM or parsing error yields an IntentNone request so the caller
// answers the question another way.
func (c *Classifier) Classify(ctx context.Context, question string) engine.Request {
	start := c.cfg.Clock.Now()
	req := c.classify(ctx, question)
	metrics.ClassifyDuration.WithLabelValues(string(req.Intent)).Observe(c.cfg.Clock.Since(start).Seconds())
	return req
}

func (c *Classifier) classify(ctx context.Context, question string) engine.Request {
	question = strings.TrimSpace(question)
	if question == "" {
		return engine.Request{Intent: rollout.IntentNone}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	text, err := c.cfg.LLM.Complete(ctx, IntentPrompt(c.cfg.Clock.Now().Year()), question)
	if err != nil {
		c.log.Error("classify: intent detection failed", "error", err)
		return engine.Request{Intent: rollout.IntentNone}
	}

	req, err := Parse(text)
	if err != nil {
		c.log.Warn("classify: invalid classifier output", "error", err, "response", truncate(text, 500))
		return engine.Request{Intent: rollout.IntentNone}
	}
	c.log.Debug("classify: detected intent", "intent", req.Intent)
	return req
}

// Parse decodes classifier output into a request. Unknown intents map to IntentNone. Parameters
// are left nil when the output omits them, so the engine can report them as missing.
func Parse(text string) (engine.Request, error) {
	raw := extractJSON(text)
	if raw == "" {
		return engine.Request{}, errors.New("no JSON object in response")
	}

	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return engine.Request{}, fmt.Errorf("failed to decode response: %w", err)
	}

	req := engine.Request{Intent: rollout.ParseIntent(resp.Intent)}
	if resp.Parameters == nil || string(*resp.Parameters) == "null" {
		return req, nil
	}

	var p parameters
	if err := json.Unmarshal(*resp.Parameters, &p); err != nil {
		return engine.Request{}, fmt.Errorf("failed to decode parameters: %w", err)
	}

	switch req.Intent {
	case rollout.IntentPorts:
		req.Ports = &rollout.PortsParams{
			Locality: deref(p.Locality),
			Months:   p.Months,
			GroupBy:  rollout.GroupBy(deref(p.GroupBy)),
		}
	case rollout.IntentDeliveredAddresses:
		req.Address = &rollout.AddressParams{
			Locality:      deref(p.Locality),
			Months:        p.Months,
			AddressSearch: deref(p.AddressSearch),
		}
	}
	return req, nil
}

// extractJSON finds the first JSON object in an LLM response, which may be wrapped in a code
// fence or surrounded by prose.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```json"); start != -1 {
		start += len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if start := strings.Index(response, "```"); start != -1 {
		start += len("```")
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(content, "{") {
				return content
			}
		}
	}

	if start := strings.Index(response, "{"); start != -1 {
		return extractObject(response, start)
	}
	return ""
}

// extractObject returns the balanced object starting at start, skipping braces inside strings.
func extractObject(s string, start int) string {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
