package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/classify"
	"github.com/spf13/cobra"
)

type AskCmd struct{}

func NewAskCmd() *AskCmd {
	return &AskCmd{}
}

func (c *AskCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask an analytics question in natural language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("ANTHROPIC_API_KEY") == "" {
				return errors.New("ask requires ANTHROPIC_API_KEY to be set")
			}
			question := strings.Join(args, " ")

			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				classifier, err := classify.New(classify.Config{
					Logger:  rt.log,
					LLM:     classify.NewAnthropicLLMClient(rt.log, anthropic.Model(rt.env.AnthropicModel), rt.env.AnthropicMaxTokens),
					Timeout: rt.env.ClassifyTimeout,
				})
				if err != nil {
					return fmt.Errorf("failed to create classifier: %w", err)
				}

				req := classifier.Classify(ctx, question)
				rt.log.Debug("ask: classified question", "intent", req.Intent)
				if req.Intent == rollout.IntentNone {
					fmt.Fprintln(cmd.OutOrStdout(), classifier.Answer(ctx, question))
					return nil
				}
				return printOutcome(cmd, rt.engine.Resolve(ctx, req))
			})
		},
	}
}
