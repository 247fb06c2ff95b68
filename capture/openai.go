package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"
)

// AudioSource yields one recorded utterance and a file name whose extension
// tells the transcription API the audio format.
type AudioSource func(ctx context.Context) (io.ReadCloser, string, error)

// FileSource reads the utterance from a fixed file, e.g. one written by an
// external recorder.
func FileSource(path string) AudioSource {
	return func(ctx context.Context) (io.ReadCloser, string, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open recording: %w", err)
		}
		return f, filepath.Base(path), nil
	}
}

// OnceSource yields src a single time; later captures end with io.EOF.
func OnceSource(src AudioSource) AudioSource {
	var used atomic.Bool
	return func(ctx context.Context) (io.ReadCloser, string, error) {
		if used.Swap(true) {
			return nil, "", io.EOF
		}
		return src(ctx)
	}
}

// OpenAIPort transcribes recorded audio with Whisper and synthesizes speech
// with the OpenAI TTS API. Without a Source it cannot capture; without an
// Output it cannot speak.
type OpenAIPort struct {
	client   *openai.Client
	STTModel string
	TTSModel openai.SpeechModel
	Voice    openai.SpeechVoice
	Source   AudioSource
	Output   io.Writer
}

func NewOpenAIPort(apiKey, baseURL string, source AudioSource, output io.Writer) *OpenAIPort {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIPort{
		client:   openai.NewClientWithConfig(cfg),
		STTModel: openai.Whisper1,
		TTSModel: openai.TTSModel1,
		Voice:    openai.VoiceAlloy,
		Source:   source,
		Output:   output,
	}
}

func (p *OpenAIPort) StartCapture(ctx context.Context) (string, error) {
	if p.Source == nil {
		return "", ErrUnsupported
	}
	audio, name, err := p.Source(ctx)
	if err != nil {
		return "", err
	}
	defer audio.Close()

	tr, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.STTModel,
		Reader:   audio,
		FilePath: name,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return strings.TrimSpace(tr.Text), nil
}

func (p *OpenAIPort) Speak(ctx context.Context, text string) error {
	if p.Output == nil {
		return ErrUnsupported
	}
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          p.TTSModel,
		Input:          text,
		Voice:          p.Voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()
	if _, err := io.Copy(p.Output, resp); err != nil {
		return fmt.Errorf("write speech audio: %w", err)
	}
	return nil
}
