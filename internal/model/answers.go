package model

// SMSCapability describes which SMS automations a contractor has turned on.
type SMSCapability string

const (
	SMSBoth          SMSCapability = "both"
	SMSTextBack      SMSCapability = "text-back"
	SMSAutoresponder SMSCapability = "autoresponder"
	SMSNeither       SMSCapability = "neither"
)

// PageCoverage describes how many offered services have a dedicated page.
type PageCoverage string

const (
	PagesAll  PageCoverage = "all"
	PagesSome PageCoverage = "some"
	PagesNone PageCoverage = "none"
)

// ReviewCountUnknown marks a review count the contractor could not estimate.
const ReviewCountUnknown = -1

// Service radius options offered by the questionnaire, in miles.
const (
	Radius20 = 20
	Radius30 = 30
	Radius45 = 45
)

// QuestionnaireAnswers is a single questionnaire submission.
type QuestionnaireAnswers struct {
	FullName      string        `json:"fullName"`
	BusinessName  string        `json:"businessName"`
	City          string        `json:"city"`
	Services      []string      `json:"services"`
	Radius        int           `json:"radius"`
	ResponseTime  int           `json:"responseTime"` // minutes
	SMSCapability SMSCapability `json:"smsCapability"`
	PremiumPages  PageCoverage  `json:"premiumPages"`
	ReviewCount   int           `json:"reviewCount"` // last 60 days, -1 = unknown

	Business *BusinessProfile `json:"businessData,omitempty"`
	SEO      *SEOIntelligence `json:"seoIntelligence,omitempty"`
}

// HasListing reports whether the business has a discoverable online listing.
func (a QuestionnaireAnswers) HasListing() bool {
	return a.Business != nil && a.Business.HasListing
}

// PlaceID returns the map-service place identifier, if known.
func (a QuestionnaireAnswers) PlaceID() string {
	if a.Business == nil {
		return ""
	}
	return a.Business.PlaceID
}

// Website returns the business website, if known.
func (a QuestionnaireAnswers) Website() string {
	if a.Business == nil {
		return ""
	}
	return a.Business.Website
}

// WithSEO returns a copy of the answers with SEO intelligence attached.
// The receiver is left untouched.
func (a QuestionnaireAnswers) WithSEO(intel SEOIntelligence) QuestionnaireAnswers {
	out := a
	out.Services = append([]string(nil), a.Services...)
	out.SEO = &intel
	return out
}

// WithBusiness returns a copy of the answers with a business profile attached.
func (a QuestionnaireAnswers) WithBusiness(bp BusinessProfile) QuestionnaireAnswers {
	out := a
	out.Services = append([]string(nil), a.Services...)
	out.Business = &bp
	return out
}

// BusinessProfile holds what the map service knows about the business.
type BusinessProfile struct {
	HasListing  bool         `json:"hasGBP"`
	Name        string       `json:"name,omitempty"`
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Rating      float64      `json:"rating,omitempty"`
	ReviewCount int          `json:"reviewCount,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Website     string       `json:"website,omitempty"`
	PlaceID     string       `json:"placeId,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UTM carries campaign attribution captured by the landing page.
type UTM struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Content  string `json:"utm_content,omitempty"`
	Term     string `json:"utm_term,omitempty"`
}
