package zoho

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// noteRecord is the raw Notes payload shape.
type noteRecord struct {
	ID          string   `json:"id"`
	NoteTitle   string   `json:"Note_Title"`
	NoteContent string   `json:"Note_Content"`
	CreatedTime flexTime `json:"Created_Time"`
}

type notesResponse struct {
	Data []noteRecord `json:"data"`
	Info struct {
		MoreRecords bool `json:"more_records"`
	} `json:"info"`
}

// draftNotePrefix marks notes written by RecordDraft so that Notes can
// exclude them: feeding our own drafts back in as context would let a
// bad draft reinforce itself on the next run.
const draftNotePrefix = "[outreach draft]"

// Notes returns the prospect's CRM notes newer than since as snippet
// records, newest first. Zoho serves notes newest first already; the
// since bound lets us stop paging at the first stale note.
func (c *CRMClient) Notes(ctx context.Context, prospectID string, since time.Time) ([]domain.SnippetRecord, error) {
	var snippets []domain.SnippetRecord //nolint:prealloc // bounded by since, not page count

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("fields", "Note_Title,Note_Content,Created_Time")
		query.Set("per_page", strconv.Itoa(pageSize))
		query.Set("page", strconv.Itoa(page))

		var resp notesResponse
		path := "/Leads/" + url.PathEscape(prospectID) + "/Notes"
		if err := c.get(ctx, path, query, &resp); err != nil {
			return nil, fmt.Errorf("notes for %s: %w", prospectID, err)
		}

		for _, rec := range resp.Data {
			if rec.CreatedTime.t != nil && rec.CreatedTime.t.Before(since) {
				return snippets, nil
			}
			if strings.HasPrefix(rec.NoteTitle, draftNotePrefix) {
				continue
			}
			text := rec.NoteContent
			if rec.NoteTitle != "" {
				text = rec.NoteTitle + ": " + text
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			snippet := domain.SnippetRecord{
				Text:   text,
				Source: domain.SourceCRMNotes,
			}
			if rec.CreatedTime.t != nil {
				snippet.CapturedAt = *rec.CreatedTime.t
			}
			snippets = append(snippets, snippet)
		}

		if !resp.Info.MoreRecords {
			break
		}
	}

	return snippets, nil
}

// RecordDraft attaches the generated draft to the lead as a note so
// reviewers see it in the CRM timeline. The note is marked with
// draftNotePrefix and the lead record itself is never touched.
func (c *CRMClient) RecordDraft(ctx context.Context, draft domain.Draft) error {
	var content strings.Builder
	content.WriteString("Subject: " + draft.Subject + "\n\n")
	content.WriteString(draft.Body)
	if len(draft.TalkingPoints) > 0 {
		content.WriteString("\n\nTalking points:\n")
		for _, p := range draft.TalkingPoints {
			content.WriteString("- " + p + "\n")
		}
	}
	if len(draft.Flags) > 0 {
		content.WriteString("\nFlags: " + strings.Join(draft.Flags, "; ") + "\n")
	}
	if draft.NextTouchDays > 0 {
		content.WriteString(fmt.Sprintf("\nNext touch: in %d days\n", draft.NextTouchDays))
	} else {
		content.WriteString("\nNext touch: breakup point reached\n")
	}

	payload := map[string]any{
		"data": []map[string]any{
			{
				"Note_Title":   fmt.Sprintf("%s %s (day %d, %s)", draftNotePrefix, draft.EmailType, draft.DayInSequence, draft.Status),
				"Note_Content": content.String(),
				"Parent_Id": map[string]any{
					"module": map[string]any{"api_name": "Leads"},
					"id":     draft.ProspectID,
				},
			},
		},
	}

	if err := c.post(ctx, "/Notes", payload, nil); err != nil {
		return fmt.Errorf("record draft for %s: %w", draft.ProspectID, err)
	}
	return nil
}
