package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAITranscriber sends clips to the hosted transcription endpoint.
type OpenAITranscriber struct {
	client openai.Client
	model  openai.AudioModel
}

func NewOpenAITranscriber(apiKey, baseURL string, opts ...option.RequestOption) *OpenAITranscriber {
	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)
	return &OpenAITranscriber{
		client: openai.NewClient(all...),
		model:  openai.AudioModelWhisper1,
	}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, clip *Clip) (string, error) {
	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(clip.Data), "command."+clip.Format, clip.MIMEType()),
		Model: t.model,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
