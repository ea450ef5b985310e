package service

import (
	"fmt"
	"strings"

	"github.com/auraplay/fortune-server-go/internal/model"
)

const listPlaceholder = "not provided"

const hookSystemInstruction = `You write one-line emotional hooks for a daily fortune app.
Respond with a JSON object: {"hookLine": "<one short sentence>", "sentiment": "<one word>"}.
No markdown, no extra keys.`

const reportSystemInstruction = `You write a short personal fortune report.
Respond with a JSON object: {"sections": [{"title": "<heading>", "body": "<2-4 sentences>"}]}.
Three to five sections. No markdown, no extra keys.`

// buildProfilePrompt assembles the shared instruction block from the
// caller's profile fields. The output is opaque to the rest of the
// system; fields are defaulted, never validated.
func buildProfilePrompt(req model.ReadingRequest) string {
	var sb strings.Builder

	sb.WriteString("Profile of the person asking for a reading:\n")
	fmt.Fprintf(&sb, "- Personality type: %s\n", valueOrPlaceholder(req.TypeCode))
	fmt.Fprintf(&sb, "- Zodiac sign: %s\n", valueOrPlaceholder(req.Zodiac))
	fmt.Fprintf(&sb, "- Tarot draw: %s\n", joinOrPlaceholder(req.Tarot))
	fmt.Fprintf(&sb, "- Energy level: %s\n", valueOrPlaceholder(req.EnergyLevel))
	fmt.Fprintf(&sb, "- Keywords: %s\n", joinOrPlaceholder(req.Keywords))
	fmt.Fprintf(&sb, "- Their own reflection: %s\n", valueOrPlaceholder(req.Reflection))

	return sb.String()
}

func buildHookPrompt(req model.ReadingRequest) string {
	return buildProfilePrompt(req) +
		"\nWrite the hook line for today's reading based on this profile."
}

func buildReportPrompt(req model.ReadingRequest) string {
	return buildProfilePrompt(req) +
		"\nWrite the full reading report for this profile."
}

func valueOrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return listPlaceholder
	}
	return s
}

func joinOrPlaceholder(values []string) string {
	if len(values) == 0 {
		return listPlaceholder
	}
	return strings.Join(values, ", ")
}
