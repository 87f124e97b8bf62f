package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// systemPrompt sets the drafting persona and the output contract.
const systemPrompt = `You are a sales development assistant drafting outreach emails.
Write in a direct, personal register. Ground every claim in the
provided context; never invent facts about the prospect or their
company. Respond with a single JSON object and nothing else:
{"subject": string, "body": string, "talking_points": [string]}`

// emailTypeInstructions describe each email type to the model.
var emailTypeInstructions = map[domain.EmailType]string{
	domain.EmailTypeColdDrip: "Write a structured cold outreach email: a hook tied to " +
		"the prospect's context, one clear value proposition, and a low-friction ask.",
	domain.EmailTypeShortFollowUp: "Write a compact single-purpose follow-up to an email " +
		"that received no reply. One nudge, no recap of the previous email.",
	domain.EmailTypeActiveResponse: "Write a full response to the prospect's reply. Answer " +
		"what they raised using the conversation context before adding anything new.",
}

// sourceLabels are the human-readable headings for snippet sources.
var sourceLabels = map[domain.SnippetSource]string{
	domain.SourceCRMNotes:      "CRM notes",
	domain.SourceTranscript:    "Call transcripts",
	domain.SourceChat:          "Team chat",
	domain.SourceKnowledgeBase: "Product knowledge",
	domain.SourceWebSearch:     "Web research",
}

// buildUserPrompt renders the prospect facts and the budgeted context
// into the drafting prompt. Snippets keep their aggregation order, so
// higher-priority sources appear first.
func buildUserPrompt(prospect domain.Prospect, pkg *domain.ContextPackage) string {
	var b strings.Builder

	b.WriteString("Prospect:\n")
	writeFact(&b, "Name", prospect.Name)
	writeFact(&b, "Company", prospect.Company)
	writeFact(&b, "Title", prospect.Title)
	writeFact(&b, "Industry", prospect.Industry)
	writeFact(&b, "Country", prospect.Country)
	if prospect.EmployeeCount > 0 {
		fmt.Fprintf(&b, "- Company size: %d employees\n", prospect.EmployeeCount)
	}
	fmt.Fprintf(&b, "- Day %d of the outreach sequence\n", pkg.DayInSequence)

	minWords, maxWords := pkg.EmailType.LengthBand()
	b.WriteString("\nTask:\n")
	b.WriteString(emailTypeInstructions[pkg.EmailType])
	fmt.Fprintf(&b, "\nThe body must be %d-%d words.\n", minWords, maxWords)

	if len(pkg.Snippets) > 0 {
		b.WriteString("\nContext (most reliable first):\n")
		var lastSource domain.SnippetSource
		for _, s := range pkg.Snippets {
			if s.Source != lastSource {
				fmt.Fprintf(&b, "\n%s:\n", sourceLabels[s.Source])
				lastSource = s.Source
			}
			b.WriteString("- " + s.Text + "\n")
		}
	}

	return b.String()
}

func writeFact(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
}

// emailPayload is the expected model output shape.
type emailPayload struct {
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	TalkingPoints []string `json:"talking_points"`
}

// parseEmailResponse decodes the model's JSON output. Models sometimes
// wrap JSON in a markdown code fence or prepend prose, so fences are
// stripped and the first object is extracted before decoding.
func parseEmailResponse(raw string) (*domain.GeneratedEmail, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var payload emailPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if strings.TrimSpace(payload.Subject) == "" || strings.TrimSpace(payload.Body) == "" {
		return nil, fmt.Errorf("model output missing subject or body")
	}

	return &domain.GeneratedEmail{
		Subject:       strings.TrimSpace(payload.Subject),
		Body:          strings.TrimSpace(payload.Body),
		TalkingPoints: payload.TalkingPoints,
	}, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or
// without a language tag.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		if !strings.Contains(text[:idx], "{") {
			text = text[idx+1:]
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(text), "```")
}
