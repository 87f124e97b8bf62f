package zoho

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

// prospectFields are the Leads-module fields requested per record.
// The engagement and sequence fields are org-level custom fields kept
// current by the email tracking integration.
var prospectFields = []string{
	"Full_Name",
	"Email",
	"Company",
	"Description",
	"Industry",
	"Designation",
	"Country",
	"No_of_Employees",
	"Lead_Status",
	"Last_Contacted_At",
	"Last_Outreach_Sent",
	"Last_Reply_At",
	"Sequence_Day",
	"Next_Action_Date",
}

var signalFields = []string{
	"Email_Opens",
	"Email_Clicks",
	"Page_Views",
	"Form_Submissions",
	"Meetings_Held",
	"Last_Signal_At",
}

// leadRecord is the raw Leads payload shape.
type leadRecord struct {
	ID               string   `json:"id"`
	FullName         string   `json:"Full_Name"`
	Email            string   `json:"Email"`
	Company          string   `json:"Company"`
	Description      string   `json:"Description"`
	Industry         string   `json:"Industry"`
	Designation      string   `json:"Designation"`
	Country          string   `json:"Country"`
	NoOfEmployees    flexInt  `json:"No_of_Employees"`
	LeadStatus       string   `json:"Lead_Status"`
	LastContactedAt  flexTime `json:"Last_Contacted_At"`
	LastOutreachSent flexTime `json:"Last_Outreach_Sent"`
	LastReplyAt      flexTime `json:"Last_Reply_At"`
	SequenceDay      flexInt  `json:"Sequence_Day"`
	NextActionDate   flexTime `json:"Next_Action_Date"`

	EmailOpens      flexInt  `json:"Email_Opens"`
	EmailClicks     flexInt  `json:"Email_Clicks"`
	PageViews       flexInt  `json:"Page_Views"`
	FormSubmissions flexInt  `json:"Form_Submissions"`
	MeetingsHeld    flexInt  `json:"Meetings_Held"`
	LastSignalAt    flexTime `json:"Last_Signal_At"`
}

// listResponse is the paginated envelope shared by Zoho list endpoints.
type listResponse struct {
	Data []leadRecord `json:"data"`
	Info struct {
		MoreRecords bool `json:"more_records"`
		Page        int  `json:"page"`
	} `json:"info"`
}

// ListProspects returns all leads in the outreach pipeline, following
// pagination until Zoho reports no more records.
func (c *CRMClient) ListProspects(ctx context.Context) ([]domain.Prospect, error) {
	var prospects []domain.Prospect //nolint:prealloc // total count unknown until the last page

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("fields", strings.Join(prospectFields, ","))
		query.Set("per_page", strconv.Itoa(pageSize))
		query.Set("page", strconv.Itoa(page))

		var resp listResponse
		if err := c.get(ctx, "/Leads", query, &resp); err != nil {
			return nil, fmt.Errorf("list leads page %d: %w", page, err)
		}

		for _, rec := range resp.Data {
			prospects = append(prospects, rec.toProspect())
		}

		if !resp.Info.MoreRecords {
			break
		}
	}

	return prospects, nil
}

// EngagementSignals returns the behavioural counters tracked on the lead.
func (c *CRMClient) EngagementSignals(ctx context.Context, prospectID string) (domain.EngagementSignal, error) {
	query := url.Values{}
	query.Set("fields", strings.Join(signalFields, ","))

	var resp listResponse
	if err := c.get(ctx, "/Leads/"+url.PathEscape(prospectID), query, &resp); err != nil {
		return domain.EngagementSignal{}, fmt.Errorf("engagement signals for %s: %w", prospectID, err)
	}
	if len(resp.Data) == 0 {
		return domain.EngagementSignal{}, fmt.Errorf("engagement signals for %s: %w", prospectID, domain.ErrNotFound)
	}

	rec := resp.Data[0]
	signal := domain.EngagementSignal{
		Opens:           int(rec.EmailOpens),
		Clicks:          int(rec.EmailClicks),
		PageViews:       int(rec.PageViews),
		FormSubmissions: int(rec.FormSubmissions),
		Meetings:        int(rec.MeetingsHeld),
	}
	if rec.LastSignalAt.t != nil {
		signal.LastSignalAt = *rec.LastSignalAt.t
	}
	return signal, nil
}

// toProspect converts a raw lead into a strict domain record.
func (r leadRecord) toProspect() domain.Prospect {
	return domain.Prospect{
		ID:             r.ID,
		Name:           r.FullName,
		Email:          r.Email,
		Company:        r.Company,
		Notes:          r.Description,
		Industry:       r.Industry,
		Title:          r.Designation,
		Country:        r.Country,
		EmployeeCount:  int(r.NoOfEmployees),
		LifecycleStage: strings.ToLower(r.LeadStatus),
		LastContact:    r.LastContactedAt.t,
		LastSend:       r.LastOutreachSent.t,
		LastReply:      r.LastReplyAt.t,
		DayInSequence:  int(r.SequenceDay),
		NextActionDate: r.NextActionDate.t,
	}
}
