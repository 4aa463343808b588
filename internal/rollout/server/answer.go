package server

import (
	"context"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/format"
)

// Answer is the reply to one question.
type Answer struct {
	Text    string          `json:"answer"`
	Intent  rollout.Intent  `json:"intent"`
	Kind    engine.Kind     `json:"kind"`
	Cached  bool            `json:"cached"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
}

// answer classifies the question, resolves analytics intents and falls through to the general
// answer for everything else. step is called before each stage.
func (s *Server) answer(ctx context.Context, question string, step func(string)) Answer {
	step("Анализ запроса…")
	req := s.cfg.Classifier.Classify(ctx, question)
	s.log.Info("server: classified question", "intent", req.Intent)

	if req.Intent != rollout.IntentNone {
		step("Выполняется запрос аналитики…")
		out := s.cfg.Resolver.Resolve(ctx, req)
		if out.Kind != engine.KindNone {
			return Answer{
				Text:    format.Markdown(out),
				Intent:  out.Intent,
				Kind:    out.Kind,
				Cached:  out.Cached,
				Outcome: &out,
			}
		}
	}

	return Answer{
		Text:   s.cfg.Classifier.Answer(ctx, question),
		Intent: rollout.IntentNone,
		Kind:   engine.KindNone,
	}
}
