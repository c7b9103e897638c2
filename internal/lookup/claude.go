package lookup

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// encyclopediaMaxTokens bounds the summary Claude may return.
const encyclopediaMaxTokens = 512

// encyclopediaPromptTemplate asks for a short factual summary. The term is
// injected via an XML tag to prevent prompt injection.
const encyclopediaPromptTemplate = `You are an encyclopedia lookup service.

Give a concise, factual 2-3 sentence summary of the topic below.
If you do not have reliable knowledge of the topic, reply with exactly UNKNOWN.

<topic>%s</topic>`

// ClaudeProvider answers encyclopedia lookups using the Claude API.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewClaudeProvider creates an encyclopedia provider backed by Claude.
func NewClaudeProvider(apiKey, model string, logger *slog.Logger) *ClaudeProvider {
	if logger == nil {
		logger = slog.Default()
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeProvider{
		client: &c,
		model:  model,
		logger: logger,
	}
}

// Lookup asks Claude for a topic summary. An UNKNOWN reply yields
// Found=false with no error; transport failures are returned to the caller
// for degraded-confidence handling.
func (p *ClaudeProvider) Lookup(ctx context.Context, _ Kind, term string) (Result, error) {
	prompt := fmt.Sprintf(encyclopediaPromptTemplate, xmlEscape(term))

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: encyclopediaMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		System: []anthropic.TextBlockParam{
			{Text: "You are a precise encyclopedia service. Output only the summary or UNKNOWN."},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("calling Claude API: %w", err)
	}

	var responseText string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			responseText = strings.TrimSpace(resp.Content[i].Text)
			break
		}
	}

	if responseText == "" || strings.EqualFold(responseText, "UNKNOWN") {
		p.logger.Debug("encyclopedia miss", "term", term)
		return Result{Found: false, Source: "encyclopedia"}, nil
	}

	p.logger.Debug("encyclopedia hit", "term", term)
	return Result{Found: true, Payload: responseText, Source: "encyclopedia"}, nil
}

// xmlEscape replaces characters with special meaning in XML to prevent
// prompt injection when embedding user content in XML-delimited templates.
func xmlEscape(s string) string {
	var buf strings.Builder
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
