package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/codeshift"
)

// Defaults for the Ollama client.
const (
	DefaultTimeout      = codeshift.DefaultModelTimeout
	DefaultProbeTimeout = 5 * time.Second
	DefaultTemperature  = 0.1
	DefaultTopP         = 0.9
)

// OllamaConfig holds configuration for the Ollama provider.
type OllamaConfig struct {
	BaseURL      string        // Used when a request carries none (default: http://localhost:11434)
	Model        string        // Used when a request carries none (default: llama3.2:latest)
	Timeout      time.Duration // Hard limit per generation (default: 180s)
	ProbeTimeout time.Duration // Limit for /api/tags probes (default: 5s)
	Temperature  float64       // Sampling temperature (default: 0.1)
	TopP         float64       // Nucleus sampling (default: 0.9)
	Client       *resty.Client // Custom HTTP client (optional)
}

// OllamaProvider implements ModelTranslator against Ollama's native API.
type OllamaProvider struct {
	http *resty.Client
	cfg  OllamaConfig
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = codeshift.DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = codeshift.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.TopP == 0 {
		cfg.TopP = DefaultTopP
	}

	client := cfg.Client
	if client == nil {
		client = resty.New()
	}
	client.SetHeader("User-Agent", codeshift.UserAgent())

	return &OllamaProvider{http: client, cfg: cfg}
}

type generateOptions struct {
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		Size       int64     `json:"size"`
		ModifiedAt time.Time `json:"modified_at"`
	} `json:"models"`
}

// TranslateCode sends one generation request and returns the cleaned code
// with the model header prepended.
func (p *OllamaProvider) TranslateCode(ctx context.Context, req ModelRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var out generateResponse
	r, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{
			Model:  model,
			Prompt: BuildPrompt(req),
			Stream: false,
			Options: generateOptions{
				Temperature: p.cfg.Temperature,
				TopP:        p.cfg.TopP,
				Stop:        StopSequences(req.To),
			},
		}).
		SetResult(&out).
		Post(p.url(req.BaseURL, "/api/generate"))
	if err != nil {
		return "", &codeshift.ModelUnavailableError{Message: "ollama request failed", Cause: err}
	}
	if r.IsError() {
		return "", &codeshift.ModelUnavailableError{
			Message:    fmt.Sprintf("ollama API error: %s", r.Status()),
			StatusCode: r.StatusCode(),
		}
	}

	return finish(out.Response, req.To)
}

// ListModels returns the models installed on the endpoint.
func (p *OllamaProvider) ListModels(ctx context.Context, baseURL string) ([]codeshift.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	var out tagsResponse
	r, err := p.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(p.url(baseURL, "/api/tags"))
	if err != nil {
		return nil, &codeshift.ModelUnavailableError{Message: "ollama request failed", Cause: err}
	}
	if r.IsError() {
		return nil, &codeshift.ModelUnavailableError{
			Message:    fmt.Sprintf("ollama API error: %s", r.Status()),
			StatusCode: r.StatusCode(),
		}
	}

	models := make([]codeshift.ModelInfo, 0, len(out.Models))
	for _, m := range out.Models {
		models = append(models, codeshift.ModelInfo{Name: m.Name, Size: m.Size, ModifiedAt: m.ModifiedAt})
	}
	return models, nil
}

// Ping reports whether the endpoint answers the tags probe.
func (p *OllamaProvider) Ping(ctx context.Context, baseURL string) error {
	_, err := p.ListModels(ctx, baseURL)
	return err
}

func (p *OllamaProvider) url(baseURL, path string) string {
	if baseURL == "" {
		baseURL = p.cfg.BaseURL
	}
	return strings.TrimRight(baseURL, "/") + path
}

// Verify OllamaProvider implements the model interfaces
var (
	_ ModelTranslator = (*OllamaProvider)(nil)
	_ ModelLister     = (*OllamaProvider)(nil)
)
