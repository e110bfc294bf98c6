// Package sink hands scored submissions to CRM and email systems.
package sink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/pipeline-score/internal/model"
)

// LeadTag marks every lead created by the questionnaire.
const LeadTag = "pipeline-100-lead"

// Record is the flattened view of one submission shared by all sinks.
type Record struct {
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	BusinessName string   `json:"business_name"`
	City         string   `json:"city"`
	Services     []string `json:"services"`
	Radius       int      `json:"radius"`

	QuizID          string       `json:"quiz_id"`
	Score           int          `json:"pipeline_score"`
	Band            model.Band   `json:"score_band"`
	Branch          model.Branch `json:"branch"`
	ScoreBucket     string       `json:"score_bucket"`
	Forecast        string       `json:"forecast"`
	GuaranteeStatus string       `json:"guarantee_status"`
	TopMoves        []string     `json:"top_moves"`
	ResultPath      string       `json:"result_url"`

	Domain  string                 `json:"domain,omitempty"`
	Listing *model.BusinessProfile `json:"gbp,omitempty"`

	HasSEO            bool   `json:"has_seo"`
	SEOMissedLeads    int    `json:"seo_missed_leads"`
	SEOTopOpportunity string `json:"seo_top_opportunity,omitempty"`
	SEOMapPackCount   int    `json:"seo_map_pack_rankings"`
	SEOKeywordCount   int    `json:"seo_keyword_count"`

	UTM     model.UTM `json:"utm"`
	Consent bool      `json:"consent"`
	Tags    []string  `json:"tags"`
}

// Submission is everything known about a scored questionnaire.
type Submission struct {
	Email      string
	Answers    model.QuestionnaireAnswers
	Result     model.ScoreResult
	Summary    model.ResultSummary
	ResultPath string
	UTM        model.UTM
	Consent    bool
}

// NewRecord flattens a submission.
func NewRecord(s Submission) Record {
	a := s.Answers
	rec := Record{
		Email:           strings.TrimSpace(s.Email),
		FullName:        a.FullName,
		BusinessName:    a.BusinessName,
		City:            a.City,
		Services:        append([]string(nil), a.Services...),
		Radius:          a.Radius,
		QuizID:          s.Summary.QuizID,
		Score:           s.Result.Score,
		Band:            s.Result.Band,
		Branch:          s.Summary.Branch,
		ScoreBucket:     s.Summary.ScoreBucket,
		Forecast:        s.Result.Forecast,
		GuaranteeStatus: s.Result.GuaranteeStatus,
		TopMoves:        append([]string(nil), s.Summary.TopActions...),
		ResultPath:      s.ResultPath,
		Domain:          stripScheme(a.Website()),
		UTM:             s.UTM,
		Consent:         s.Consent,
		Tags:            Tags(a, s.Result.Band),
	}
	if a.Business != nil {
		bp := *a.Business
		rec.Listing = &bp
	}
	if a.SEO != nil {
		rec.HasSEO = true
		rec.SEOMissedLeads = a.SEO.TotalMissedLeads
		rec.SEOTopOpportunity = a.SEO.TopOpportunity
		rec.SEOMapPackCount = a.SEO.MapPackCount()
		rec.SEOKeywordCount = len(a.SEO.Rankings)
	}
	return rec
}

// Tags builds the segmentation tags for a lead.
func Tags(a model.QuestionnaireAnswers, band model.Band) []string {
	tags := []string{LeadTag, "score-" + string(band)}
	if len(a.Services) > 0 {
		tags = append(tags, "services-"+strings.ToLower(strings.Join(a.Services, "-")))
	}
	if a.Radius > 0 {
		tags = append(tags, fmt.Sprintf("zone-%dmi", a.Radius))
	}
	return tags
}

// FirstName is the first word of the contact's full name.
func (r Record) FirstName() string {
	if f := strings.Fields(r.FullName); len(f) > 0 {
		return f[0]
	}
	return ""
}

// Move returns the i-th recommended action (0-based) or "".
func (r Record) Move(i int) string {
	if i < 0 || i >= len(r.TopMoves) {
		return ""
	}
	return r.TopMoves[i]
}

// CRMFields are the custom lead fields written to the CRM.
func (r Record) CRMFields() map[string]any {
	f := map[string]any{
		"pipeline_score":   r.Score,
		"score_band":       string(r.Band),
		"branch":           string(r.Branch),
		"result_url":       r.ResultPath,
		"quiz_id":          r.QuizID,
		"business_name":    r.BusinessName,
		"domain":           r.Domain,
		"city":             r.City,
		"top_move_1":       r.Move(0),
		"top_move_2":       r.Move(1),
		"top_move_3":       r.Move(2),
		"guarantee_status": r.GuaranteeStatus,
		"consent":          r.Consent,
	}
	putIf(f, "utm_source", r.UTM.Source)
	putIf(f, "utm_medium", r.UTM.Medium)
	putIf(f, "utm_campaign", r.UTM.Campaign)
	putIf(f, "utm_content", r.UTM.Content)
	putIf(f, "utm_term", r.UTM.Term)

	if bp := r.Listing; bp != nil {
		f["gbp_rating"] = bp.Rating
		f["gbp_review_count"] = bp.ReviewCount
		putIf(f, "gbp_phone", bp.Phone)
		putIf(f, "gbp_website", bp.Website)
		putIf(f, "gbp_place_id", bp.PlaceID)
		putIf(f, "gbp_address", bp.Address)
	}
	if r.HasSEO {
		f["seo_missed_leads"] = r.SEOMissedLeads
		f["seo_top_opportunity"] = r.SEOTopOpportunity
		f["seo_map_pack_rankings"] = r.SEOMapPackCount
		f["seo_keyword_count"] = r.SEOKeywordCount
	}
	return f
}

// ESPFields are the subscriber custom fields. Values are strings; unknown
// listing and SEO values are empty.
func (r Record) ESPFields() map[string]string {
	f := map[string]string{
		"pipeline_score":   strconv.Itoa(r.Score),
		"score_bucket":     r.ScoreBucket,
		"business_name":    r.BusinessName,
		"city":             r.City,
		"top_move_1":       r.Move(0),
		"top_move_2":       r.Move(1),
		"top_move_3":       r.Move(2),
		"guarantee_status": r.GuaranteeStatus,
		"result_url":       r.ResultPath,

		"gbp_rating":          "",
		"gbp_review_count":    "",
		"gbp_phone":           "",
		"gbp_website":         "",
		"seo_missed_leads":    "",
		"seo_top_opportunity": "",
	}
	if bp := r.Listing; bp != nil {
		if bp.Rating > 0 {
			f["gbp_rating"] = strconv.FormatFloat(bp.Rating, 'f', -1, 64)
		}
		if bp.ReviewCount > 0 {
			f["gbp_review_count"] = strconv.Itoa(bp.ReviewCount)
		}
		f["gbp_phone"] = bp.Phone
		f["gbp_website"] = bp.Website
	}
	if r.HasSEO {
		f["seo_missed_leads"] = strconv.Itoa(r.SEOMissedLeads)
		f["seo_top_opportunity"] = r.SEOTopOpportunity
	}
	return f
}

func putIf(m map[string]any, k, v string) {
	if v != "" {
		m[k] = v
	}
}

func stripScheme(u string) string {
	u = strings.TrimSpace(u)
	for _, p := range []string{"https://", "http://"} {
		if len(u) >= len(p) && strings.EqualFold(u[:len(p)], p) {
			return u[len(p):]
		}
	}
	return u
}
