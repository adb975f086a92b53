package vertexclient

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
)

// Adapter is the primary text-generation provider.
type Adapter struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, projectID, region, model string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (a *Adapter) Close() error {
	err := a.client.Close()
	if err != nil && a.log != nil {
		a.log.Error("vertex adapter close failed", "error", err)
	}
	return err
}

func (a *Adapter) Name() string { return "vertex" }

func (a *Adapter) Generate(ctx context.Context, systemInstruction, content string) (string, error) {
	if a.model == "" {
		return "", fmt.Errorf("vertex model is required")
	}
	if content == "" {
		return "", fmt.Errorf("vertex generate request has no content")
	}

	model := a.client.GenerativeModel(a.model)
	if systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(content))
	if err != nil {
		return "", err
	}

	text := collectText(resp)
	if text == "" {
		// Safety blocks and empty candidates count as provider failure
		// so the caller can fall back.
		return "", fmt.Errorf("vertex returned no text candidates")
	}
	return text, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var text string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if p, ok := part.(genai.Text); ok {
				text += string(p)
			}
		}
	}
	return text
}
