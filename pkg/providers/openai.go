package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/xeipuuv/gojsonschema"
)

// OpenAIConfig carries everything the OpenAI-backed providers need. It is
// passed in explicitly at construction time; provider code never reads
// ambient globals.
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	MaxRetries     uint64
}

const defaultRequestTimeout = 2 * time.Minute

// OpenAIClient is the thin seam over the OpenAI SDK, mockable in tests.
type OpenAIClient interface {
	CreateTranscription(ctx context.Context, file *os.File) (string, error)
	CreateStructuredCompletion(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error)
}

type sdkClient struct {
	client openai.Client
	model  string
}

func newSDKClient(cfg OpenAIConfig) *sdkClient {
	return &sdkClient{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}
}

func (c *sdkClient) CreateTranscription(ctx context.Context, file *os.File) (string, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}

func (c *sdkClient) CreateStructuredCompletion(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// OpenAIProvider implements Transcriber and Reasoner against the OpenAI API.
// Transient failures are retried here with exponential backoff; the workflow
// engine itself never retries.
type OpenAIProvider struct {
	client     OpenAIClient
	timeout    time.Duration
	maxRetries uint64
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &OpenAIProvider{
		client:     newSDKClient(cfg),
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
	}
}

// NewOpenAIProviderWithClient wires a custom client, used by tests.
func NewOpenAIProviderWithClient(client OpenAIClient, timeout time.Duration, maxRetries uint64) *OpenAIProvider {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &OpenAIProvider{
		client:     client,
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

// Transcribe sends the audio file to Whisper and returns the transcript
// text. Whisper detects the language itself; the code is left empty here and
// resolved from source metadata upstream.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioPath string) (Transcription, error) {
	text, err := p.retry(ctx, func(callCtx context.Context) (string, error) {
		file, err := os.Open(audioPath)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		defer file.Close()

		return p.client.CreateTranscription(callCtx, file)
	})
	if err != nil {
		return Transcription{}, fmt.Errorf("%w: %w", ErrTranscriptionUnavailable, err)
	}

	return Transcription{Text: text}, nil
}

// Complete requests schema-conformant JSON from the chat model and validates
// the response against the request schema before returning it.
func (p *OpenAIProvider) Complete(ctx context.Context, req StructuredRequest) ([]byte, error) {
	var schemaDoc map[string]any
	if err := json.Unmarshal(req.Schema, &schemaDoc); err != nil {
		return nil, fmt.Errorf("invalid request schema %s: %w", req.SchemaName, err)
	}

	content, err := p.retry(ctx, func(callCtx context.Context) (string, error) {
		return p.client.CreateStructuredCompletion(callCtx, req.System, req.User, req.SchemaName, schemaDoc)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if err := validateAgainstSchema(req.Schema, []byte(content)); err != nil {
		return nil, err
	}

	return []byte(content), nil
}

// retry runs one provider call with a bounded timeout and exponential
// backoff on transient failures. Context cancellation is never retried.
func (p *OpenAIProvider) retry(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	operation := func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		result, err := call(callCtx)
		if err != nil && ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}

		return result, err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.maxRetries), ctx)

	return backoff.RetryWithData(operation, policy)
}

// validateAgainstSchema checks a provider response against the requested
// JSON schema. Nonconformant output is a schema violation, never coerced.
func validateAgainstSchema(schema, doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w: %v", ErrSchemaViolation, details)
	}

	return nil
}
