package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/config"
	"github.com/tbxark/voiceagent/memory"
	"github.com/tbxark/voiceagent/submit"
)

// app holds the long-lived components built from the config.
type app struct {
	conf       *config.Config
	logger     *slog.Logger
	classifier classifier.Classifier
	cache      memory.Cache[[]byte]
	submitter  submit.Submitter
	inbox      *submit.SQLSubmitter
	closers    []io.Closer
}

func newLogger(level string, out io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl}))
}

func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a := &app{conf: conf, logger: newLogger(conf.LogLevel, logOut)}
	slog.SetDefault(a.logger)

	if a.classifier, err = a.buildClassifier(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if a.cache, err = a.buildCache(); err != nil {
		a.Close()
		return nil, err
	}
	if a.submitter, err = a.buildSubmitter(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) classifierOptions() ([]classifier.Option, error) {
	if a.conf.PromptFile == "" {
		if len(a.conf.GeminiModels) > 0 {
			return []classifier.Option{classifier.WithModels(a.conf.GeminiModels...)}, nil
		}
		return nil, nil
	}
	spec, err := config.LoadPromptSpec(a.conf.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	var opts []classifier.Option
	if strings.TrimSpace(spec.System) != "" {
		opts = append(opts, classifier.WithSystemPrompt(spec.System))
	}
	models := spec.Models
	if len(a.conf.GeminiModels) > 0 {
		models = a.conf.GeminiModels
	}
	if len(models) > 0 {
		opts = append(opts, classifier.WithModels(models...))
	}
	return opts, nil
}

// buildClassifier always ends the chain with the offline classifier so the
// assistant keeps working when the remote one is down.
func (a *app) buildClassifier(ctx context.Context) (classifier.Classifier, error) {
	opts, err := a.classifierOptions()
	if err != nil {
		return nil, err
	}
	local := classifier.NewLocalClassifier()
	switch a.conf.Classifier {
	case config.ClassifierOpenAI:
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  a.conf.APIKey,
			Model:   a.conf.Model,
			BaseURL: a.conf.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create chat model: %w", err)
		}
		remote, err := classifier.NewToolBasedClassifier(cm, opts...)
		if err != nil {
			return nil, err
		}
		return classifier.NewFailbackClassifier(remote, local), nil
	case config.ClassifierGemini:
		remote, err := classifier.NewGenAIClassifier(ctx, a.conf.GeminiAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return classifier.NewFailbackClassifier(remote, local), nil
	case config.ClassifierHTTP:
		return classifier.NewFailbackClassifier(classifier.NewHTTPClassifier(a.conf.AgentEndpoint), local), nil
	default:
		return local, nil
	}
}

func (a *app) buildCache() (memory.Cache[[]byte], error) {
	switch a.conf.MemoryBackend {
	case config.BackendFile:
		return memory.NewFileCache(a.conf.MemoryPath)
	case config.BackendSQLite:
		path := a.conf.MemoryPath
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "memory.db")
		}
		c, err := memory.NewSQLiteCache(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c)
		return c, nil
	default:
		return memory.NewMemoryCache(), nil
	}
}

func (a *app) buildSubmitter() (submit.Submitter, error) {
	var next submit.Submitter
	switch a.conf.Submitter {
	case config.SubmitterSQLite:
		s, err := submit.NewSQLiteSubmitter(filepath.Join(filepath.Dir(a.conf.MemoryPath), "inbox.db"))
		if err != nil {
			return nil, err
		}
		a.inbox = s
		a.closers = append(a.closers, s)
		next = s
	case config.SubmitterPostgres:
		s, err := submit.NewPostgresSubmitter(a.conf.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.inbox = s
		a.closers = append(a.closers, s)
		next = s
	default:
		next = submit.LogSubmitter{Logger: a.logger}
	}
	if a.conf.SubmitDelayMS <= 0 {
		return next, nil
	}
	return submit.DelayedSubmitter{Delay: time.Duration(a.conf.SubmitDelayMS) * time.Millisecond, Next: next}, nil
}

func (a *app) store() *memory.Store {
	return memory.NewStore(a.cache,
		memory.WithKeyFunc(memory.SessionKeyFunc),
		memory.WithHistoryLimit(a.conf.HistoryLimit),
	)
}

func (a *app) Close() {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("close resources", "error", err)
	}
}

func logWriter(verbose bool) io.Writer {
	if verbose {
		return os.Stderr
	}
	return io.Discard
}
