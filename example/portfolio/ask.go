package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/spf13/cobra"
	"github.com/tbxark/voiceagent/agent"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/dispatch"
	"github.com/tbxark/voiceagent/memory"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [utterance...]",
	Short: "Send a single utterance and print the reply",
	Long: `Runs one turn through the assistant. With --session the turn continues
a conversation kept in the configured memory backend.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", memory.DefaultSessionKey, "memory session key")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	a, err := newApp(ctx, logWriter(false))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = memory.WithSessionKey(ctx, askSession)
	out := cmd.OutOrStdout()
	store := a.store()
	engine := agent.NewEngine(ctx, agent.Config{
		Classifier: classifier.NewClient(a.classifier),
		Memory:     store,
		// No speech output; page changes are narrated.
		Effects: dispatch.New(nil, dispatch.NewViewport(out), a.submitter, store),
	})
	engine.Start()
	defer engine.Close()

	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: agent.NewAgent("PortfolioAssistant", "Voice assistant for a portfolio site", engine),
	})
	iter := runner.Run(ctx, []adk.Message{schema.UserMessage(strings.Join(args, " "))})
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			return event.Err
		}
		msg, err := event.Output.MessageOutput.GetMessage()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "assistant (%v): %s\n", msg.Extra["intent"], msg.Content)
	}

	// A confirmed send is still in flight when the reply arrives.
	st := engine.Snapshot()
	if st.ContactForm.IsSubmitting {
		iter, stop := engine.Subscribe()
		defer stop()
		for {
			st, ok := iter.Next()
			if !ok || !st.ContactForm.IsSubmitting {
				break
			}
		}
		st = engine.Snapshot()
		_, _ = fmt.Fprintf(out, "assistant: %s\n", st.History[len(st.History)-1].Content)
	}
	return nil
}
