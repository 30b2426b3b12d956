package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	defaultClassifierModel = "gpt-4o-2024-08-06"
	defaultSummaryModel    = "chatgpt-4o-latest"
	defaultTemperature     = 0.2
)

// OpenAIConfig configures the production client.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	ClassifierModel string
	SummaryModel    string
	Temperature     float32
}

// OpenAIClient implements Client against the OpenAI chat completions API.
type OpenAIClient struct {
	api             *openai.Client
	classifierModel string
	summaryModel    string
	temperature     float32
}

// NewOpenAIClient builds a client from configuration, applying model defaults.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ai: openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	classifierModel := cfg.ClassifierModel
	if classifierModel == "" {
		classifierModel = defaultClassifierModel
	}
	summaryModel := cfg.SummaryModel
	if summaryModel == "" {
		summaryModel = defaultSummaryModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	return &OpenAIClient{
		api:             openai.NewClientWithConfig(clientCfg),
		classifierModel: classifierModel,
		summaryModel:    summaryModel,
		temperature:     temperature,
	}, nil
}

// noteAssignmentSchema constrains the classifier to the Assignment shape.
var noteAssignmentSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"notes": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"description": {Type: jsonschema.String},
				},
				Required: []string{"description"},
			},
		},
		"list": {
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"name":        {Type: jsonschema.String},
				"description": {Type: jsonschema.String},
			},
			Required: []string{"name", "description"},
		},
		"existing_list_name_to_rename": {Type: jsonschema.String},
	},
	Required: []string{"notes", "list"},
}

// ClassifyNote asks the model to place a free-text note into the family's
// list catalogue, returning the structured assignment.
func (c *OpenAIClient) ClassifyNote(ctx context.Context, req ClassificationRequest) (*Assignment, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.classifierModel,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: classifierInstructions(req.OutputLanguage),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: classifierPrompt(req.NoteText, req.ExistingLists),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "note_assignment",
				Schema: &noteAssignmentSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ai: classify note: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrNoResult
	}

	var assignment Assignment
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &assignment); err != nil {
		return nil, ErrNoResult
	}
	if len(assignment.Notes) == 0 || assignment.List.Name == "" {
		return nil, ErrNoResult
	}

	return &assignment, nil
}

// Summarize produces a natural-language digest of the family's notes.
func (c *OpenAIClient) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.summaryModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: summaryInstructions(req.OutputLanguage),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: summaryPrompt(req),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: summarize: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoResult
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrNoResult
	}

	return text, nil
}
