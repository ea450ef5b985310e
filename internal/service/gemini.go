package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/auraplay/fortune-server-go/internal/config"
	apperrors "github.com/auraplay/fortune-server-go/internal/errors"
)

const maxUpstreamMessageLen = 200

// Generator is the outbound generation collaborator.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Enabled() bool
}

type GenerateRequest struct {
	Prompt            string
	SystemInstruction string
	MaxOutputTokens   int
	Temperature       float64
	// StructuredOutput asks the model for JSON. Not all models accept
	// the mode; Generate falls back to plain text once when it fails.
	StructuredOutput bool
}

type GeminiClient struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewGeminiClient(cfg *config.Config) *GeminiClient {
	return &GeminiClient{
		client:  &http.Client{Timeout: config.GeminiRequestTimeout},
		baseURL: strings.TrimRight(cfg.GeminiBaseURL, "/"),
		model:   cfg.GeminiModel,
		apiKey:  cfg.GeminiAPIKey,
	}
}

func (c *GeminiClient) Enabled() bool {
	return c.apiKey != ""
}

// Generate calls the generative-language API. When structured output is
// requested and the call fails, it retries exactly once with the mode
// disabled; only the second failure propagates. The retry is a
// compatibility shim for models that reject JSON mode, not a
// transient-failure retry.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	text, err := c.call(ctx, req)
	if err == nil {
		return text, nil
	}

	if !req.StructuredOutput {
		return "", err
	}

	log.Warn().
		Err(err).
		Str("model", c.model).
		Msg("structured output request failed, retrying as plain text")

	req.StructuredOutput = false
	return c.call(ctx, req)
}

func (c *GeminiClient) call(ctx context.Context, req GenerateRequest) (string, error) {
	if req.MaxOutputTokens <= 0 {
		req.MaxOutputTokens = config.DefaultMaxOutputTokens
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	if req.StructuredOutput {
		payload.GenerationConfig.ResponseMimeType = "application/json"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("model", c.model).
			Dur("elapsed", elapsed).
			Msg("gemini request error")
		return "", apperrors.Upstream("Generation request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Upstream("Generation response unreadable", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.Upstream(
			fmt.Sprintf("Generation returned invalid response (status %d)", resp.StatusCode), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := shortenUpstreamMessage(parsed, resp.StatusCode)
		log.Error().
			Str("model", c.model).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Str("upstream", message).
			Msg("gemini request failed")
		return "", apperrors.Upstream(message, nil)
	}

	var text string
	if len(parsed.Candidates) > 0 {
		var sb strings.Builder
		for _, part := range parsed.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		text = sb.String()
	}
	if text == "" {
		return "", apperrors.Upstream("Generation returned no text", nil)
	}

	log.Debug().
		Str("model", c.model).
		Int("chars", len(text)).
		Dur("elapsed", elapsed).
		Msg("gemini request successful")

	return text, nil
}

// shortenUpstreamMessage reduces an upstream error body to a bounded
// human-readable message; raw payloads never reach clients.
func shortenUpstreamMessage(resp geminiResponse, httpStatus int) string {
	message := fmt.Sprintf("upstream status %d", httpStatus)
	if resp.Error != nil && resp.Error.Message != "" {
		message = resp.Error.Message
		if resp.Error.Status != "" {
			message = fmt.Sprintf("%s (%s)", message, resp.Error.Status)
		}
	}
	if len(message) > maxUpstreamMessageLen {
		cut := maxUpstreamMessageLen
		// Back off to a rune boundary so truncation never splits a
		// multi-byte character.
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}
		message = message[:cut] + "..."
	}
	return message
}
