package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/auraplay/fortune-server-go/internal/config"
	apperrors "github.com/auraplay/fortune-server-go/internal/errors"
	"github.com/auraplay/fortune-server-go/internal/model"
)

const (
	defaultSentiment = "neutral"
	hookMaxTokens    = 256
	reportMaxTokens  = 2048
)

type HookResult struct {
	Sentiment string `json:"sentiment"`
	HookLine  string `json:"hookLine"`
}

type ReportSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type ReportResult struct {
	Sections []ReportSection `json:"sections,omitempty"`
	Text     string          `json:"text,omitempty"`
}

// ReadingService enforces the payment gate, builds prompts and shapes
// the collaborator's output for the two generation endpoints.
type ReadingService struct {
	payments       *PaymentService
	generator      Generator
	enforcePayment bool
}

func NewReadingService(payments *PaymentService, generator Generator, enforcePayment bool) *ReadingService {
	return &ReadingService{
		payments:       payments,
		generator:      generator,
		enforcePayment: enforcePayment,
	}
}

// GenerateHook produces the short hook line. Degraded mode (no API key)
// is checked before the payment gate: a misconfigured deployment should
// say so rather than demand payment for nothing.
func (s *ReadingService) GenerateHook(ctx context.Context, req model.ReadingRequest) (*HookResult, error) {
	text, err := s.generate(ctx, req, GenerateRequest{
		Prompt:            buildHookPrompt(req),
		SystemInstruction: hookSystemInstruction,
		MaxOutputTokens:   hookMaxTokens,
		Temperature:       config.DefaultTemperature,
		StructuredOutput:  true,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		HookLine  string `json:"hookLine"`
		Sentiment string `json:"sentiment"`
	}
	if extractJSON(text, &parsed) && parsed.HookLine != "" {
		if parsed.Sentiment == "" {
			parsed.Sentiment = defaultSentiment
		}
		return &HookResult{Sentiment: parsed.Sentiment, HookLine: parsed.HookLine}, nil
	}

	log.Debug().Msg("hook response not parseable as JSON, returning raw text")
	return &HookResult{Sentiment: defaultSentiment, HookLine: sanitizeText(text)}, nil
}

// GenerateReport produces the sectioned report, falling back to plain
// text when the collaborator does not yield a usable section list.
func (s *ReadingService) GenerateReport(ctx context.Context, req model.ReadingRequest) (*ReportResult, error) {
	text, err := s.generate(ctx, req, GenerateRequest{
		Prompt:            buildReportPrompt(req),
		SystemInstruction: reportSystemInstruction,
		MaxOutputTokens:   reportMaxTokens,
		Temperature:       config.DefaultTemperature,
		StructuredOutput:  true,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Sections []ReportSection `json:"sections"`
	}
	if extractJSON(text, &parsed) && len(parsed.Sections) > 0 {
		return &ReportResult{Sections: parsed.Sections}, nil
	}

	log.Debug().Msg("report response not parseable as JSON, returning raw text")
	return &ReportResult{Text: sanitizeText(text)}, nil
}

func (s *ReadingService) generate(ctx context.Context, req model.ReadingRequest, genReq GenerateRequest) (string, error) {
	if !s.generator.Enabled() {
		return "", apperrors.FeatureDisabled("Generation is not configured")
	}

	if s.enforcePayment {
		if err := s.payments.Validate(ctx, req.PaymentID, req.PaymentToken); err != nil {
			return "", err
		}
	}

	return s.generator.Generate(ctx, genReq)
}
