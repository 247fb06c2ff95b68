package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tbxark/voiceagent/agent"
	"github.com/tbxark/voiceagent/capture"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/dispatch"
	"github.com/tbxark/voiceagent/memory"
	"github.com/tbxark/voiceagent/types"
)

var (
	chatSession   string
	chatRecording string
	chatSpeech    string
	chatVerbose   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Starts a hands-free conversation. Utterances are read line by line from
stdin, or transcribed from --recording with the OpenAI speech API.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "memory session key (random when empty)")
	chatCmd.Flags().StringVar(&chatRecording, "recording", "", "audio file to transcribe instead of reading stdin")
	chatCmd.Flags().StringVar(&chatSpeech, "speech", "", "file to write synthesized speech to (requires --recording)")
	chatCmd.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "write JSON logs to stderr")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, logWriter(chatVerbose))
	if err != nil {
		return err
	}
	defer a.Close()

	session := chatSession
	if session == "" {
		session = uuid.NewString()
	}
	ctx = memory.WithSessionKey(ctx, session)
	out := cmd.OutOrStdout()

	port, closePort, err := a.buildPort(cmd.InOrStdin(), out)
	if err != nil {
		return err
	}
	defer closePort()

	store := a.store()
	engine := agent.NewEngine(ctx, agent.Config{
		Classifier: classifier.NewClient(a.classifier),
		Memory:     store,
		Effects:    dispatch.New(port, dispatch.NewViewport(out), a.submitter, store),
	})
	engine.Start()
	defer engine.Close()
	engine.ToggleOpen()

	st := engine.Snapshot()
	for _, msg := range st.History {
		printMessage(out, msg)
	}
	_, _ = fmt.Fprintf(out, "(session %s, Ctrl-D to quit)\n", session)

	err = engine.Converse(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, agent.ErrCaptureFailed) && strings.HasSuffix(err.Error(), io.EOF.Error()):
		return nil
	default:
		return err
	}
}

func (a *app) buildPort(in io.Reader, out io.Writer) (capture.Port, func(), error) {
	if chatRecording == "" {
		return capture.NewStdioPort(in, out), func() {}, nil
	}
	var speech io.Writer
	closeFn := func() {}
	if chatSpeech != "" {
		f, err := os.Create(chatSpeech)
		if err != nil {
			return nil, nil, fmt.Errorf("create speech output: %w", err)
		}
		speech = f
		closeFn = func() { _ = f.Close() }
	}
	return capture.NewOpenAIPort(a.conf.APIKey, a.conf.BaseURL, capture.OnceSource(capture.FileSource(chatRecording)), speech), closeFn, nil
}

func printMessage(out io.Writer, msg types.Message) {
	_, _ = fmt.Fprintf(out, "%s: %s\n", msg.Role, msg.Content)
}
