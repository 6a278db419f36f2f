package models

// CaseListing is a full case needing volunteer help. Pointer fields are
// optional and omitted from the wire form when unset.
type CaseListing struct {
	ID                 string     `json:"id"`
	LegalServerID      int        `json:"legal_server_id"`
	Title              *string    `json:"title,omitempty"`
	Summary            *string    `json:"summary,omitempty"`
	Country            *string    `json:"country,omitempty"`
	ClientLocation     *string    `json:"client_location,omitempty"`
	HoursPerMonth      int        `json:"hours_per_month"`
	NumMonths          *int       `json:"num_months,omitempty"`
	IsRemote           *bool      `json:"is_remote,omitempty"`
	NeedsAttorney      *bool      `json:"needs_attorney,omitempty"`
	NeedsInterpreter   *bool      `json:"needs_interpreter,omitempty"`
	UpcomingDate       *string    `json:"upcoming_date,omitempty"`
	AdjudicatingAgency Agency     `json:"adjudicating_agency"`
	ExperienceNeeded   Experience `json:"experience_needed"`
}

type CaseLanguage struct {
	ListingID string `json:"listing_id"`
	IsoCode   string `json:"iso_code"`
}

// Relief is a form of relief sought in a case.
type Relief struct {
	ListingID  string `json:"listing_id"`
	ReliefCode string `json:"relief_code"`
}

// LimitedAssistance is a short, scoped request for a legal fellow.
type LimitedAssistance struct {
	ID              string     `json:"id"`
	Summary         string     `json:"summary"`
	Languages       []string   `json:"languages"`
	Country         string     `json:"country"`
	ExperienceLevel Experience `json:"experience_level"`
	Deadline        string     `json:"deadline"`
	InterestIDs     []string   `json:"interest_ids"`
}

type TranslationRequest struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary"`
	Languages   []string `json:"languages"`
	InterestIDs []string `json:"interest_ids"`
}

// ListingRef is the part of any listing an interest needs.
type ListingRef struct {
	ID   string
	Kind ListingKind
}

func (c *CaseListing) Ref() ListingRef        { return ListingRef{ID: c.ID, Kind: KindCase} }
func (l *LimitedAssistance) Ref() ListingRef  { return ListingRef{ID: l.ID, Kind: KindLimitedAssistance} }
func (t *TranslationRequest) Ref() ListingRef { return ListingRef{ID: t.ID, Kind: KindTranslationRequest} }
