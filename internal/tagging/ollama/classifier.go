// Package ollama classifies images with a vision model served by Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/Oxyrus/photojournal/internal/imagecodec"
	"github.com/Oxyrus/photojournal/internal/tagging"
)

const prompt = `Classify the main content of this photo.
Respond with JSON only, in the form {"labels":[{"label":"<noun>","confidence":<0..1>}]}.
Give up to five short, lowercase, single-concept labels such as "beach", "dog" or "sunset".`

const jpegQuality = 90

var (
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// Classifier implements tagging.Classifier against an Ollama server.
type Classifier struct {
	client *api.Client
	model  string
	logger *slog.Logger
}

type response struct {
	Labels []tagging.Prediction `json:"labels"`
}

// New connects to the Ollama server at baseURL and verifies that model is
// available. Any failure wraps tagging.ErrClassifierUnavailable.
func New(ctx context.Context, baseURL, model string, httpClient *http.Client, logger *slog.Logger) (*Classifier, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model name must not be empty", tagging.ErrClassifierUnavailable)
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid ollama url %q", tagging.ErrClassifierUnavailable, baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	c := &Classifier{
		client: api.NewClient(base, httpClient),
		model:  model,
		logger: logger,
	}

	if _, err := c.client.Show(ctx, &api.ShowRequest{Model: model}); err != nil {
		return nil, fmt.Errorf("%w: load model %q: %v", tagging.ErrClassifierUnavailable, model, err)
	}

	logger.Info("vision model ready", "model", model, "host", base.Host)

	return c, nil
}

// Classify sends input to the vision model and returns its labels in the
// order the model listed them.
func (c *Classifier) Classify(ctx context.Context, input imagecodec.PixelBuffer) ([]tagging.Prediction, error) {
	var buf bytes.Buffer
	if err := imagecodec.EncodeJPEG(&buf, input.Image(), jpegQuality); err != nil {
		return nil, err
	}

	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(buf.Bytes())},
			},
		},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: map[string]any{"temperature": 0},
	}

	var content strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	preds, err := parseLabels(content.String())
	if err != nil {
		c.logger.Debug("unparsable model response", "model", c.model, "response", content.String())
		return nil, err
	}
	return preds, nil
}

func parseLabels(raw string) ([]tagging.Prediction, error) {
	raw = sanitize(raw)
	if raw == "" {
		return nil, fmt.Errorf("ollama: empty response")
	}

	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("ollama: decode labels: %w", err)
	}
	return resp.Labels, nil
}

// sanitize strips code fences and trailing commas and keeps the outermost
// JSON object.
func sanitize(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}

	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}

var _ tagging.Classifier = (*Classifier)(nil)
