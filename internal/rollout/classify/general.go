package classify

import (
	"context"
	"strings"
)

// fallbackAnswer is returned when the general LLM answer is unavailable.
const fallbackAnswer = "Я могу помочь с вопросами о платформе Казахтелеком и аналитике строительства сети. " +
	"Пожалуйста, переформулируйте вопрос в этом контексте."

// Answer responds to a question that is not an analytics question, steering the user back to the
// platform. LLM failures fall back to a fixed message.
func (c *Classifier) Answer(ctx context.Context, question string) string {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	text, err := c.cfg.LLM.Complete(ctx, GeneralPrompt, question)
	if err != nil {
		c.log.Error("classify: general answer failed", "error", err)
		return fallbackAnswer
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallbackAnswer
	}
	return text
}
