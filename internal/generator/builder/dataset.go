package builder

import (
	"fmt"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/generator/values"
	"legalaid-seeder/internal/models"
)

// Request is one full generation run.
type Request struct {
	NumCases               int
	NumLimitedAssistances  int
	NumTranslationRequests int
	NumInterests           int
	Kinds                  KindSet
	Users                  []models.UserData
}

// Dataset is the complete, linked output of a build.
// Its JSON form is keyed by table name, matching an exported dataset file.
type Dataset struct {
	GeneratedAt time.Time `json:"generated_at"`

	Cases         []*models.CaseListing `json:"cases"`
	CaseLanguages []models.CaseLanguage `json:"cases_languages"`
	CaseReliefs   []models.Relief       `json:"cases_reliefs"`

	LimitedAssistances  []*models.LimitedAssistance  `json:"limited_assistances"`
	TranslationRequests []*models.TranslationRequest `json:"translation_requests"`

	Profiles         []*models.Profile        `json:"profiles"`
	ProfileLanguages []models.ProfileLanguage `json:"profiles_languages"`
	ProfileRoles     []models.ProfileRole     `json:"profiles_roles"`

	Interests []*models.Interest `json:"interests"`
	Index     *InterestIndex     `json:"-"`
}

// CheckCapacity rejects requests for more interests than there are
// distinct (listing, user) pairs among the enabled listings.
func (r Request) CheckCapacity() error {
	if r.NumInterests == 0 {
		return nil
	}

	listings := 0
	if r.Kinds.Cases {
		listings += r.NumCases
	}
	if r.Kinds.LimitedAssistances {
		listings += r.NumLimitedAssistances
	}
	if r.Kinds.TranslationRequests {
		listings += r.NumTranslationRequests
	}

	if capacity := len(r.Users) * listings; r.NumInterests > capacity {
		return apperrors.NewConfigurationError(fmt.Sprintf(
			"numInterests %d exceeds numUsers × enabled listings (%d × %d = %d)",
			r.NumInterests, len(r.Users), listings, capacity))
	}
	return nil
}

// Build runs every collection builder for req. Interests are only linked
// when req.NumInterests is positive.
func (b *Builder) Build(req Request) (*Dataset, error) {
	ds := &Dataset{
		GeneratedAt: b.f.Values().Now(),
		Index:       NewInterestIndex(),
	}

	cases, err := b.BuildCases(req.NumCases)
	if err != nil {
		return nil, err
	}
	ds.Cases, ds.CaseLanguages, ds.CaseReliefs = cases.Cases, cases.Languages, cases.Reliefs

	if ds.LimitedAssistances, err = b.BuildLimitedAssistances(req.NumLimitedAssistances); err != nil {
		return nil, err
	}
	if ds.TranslationRequests, err = b.BuildTranslationRequests(req.NumTranslationRequests); err != nil {
		return nil, err
	}

	profiles, err := b.BuildProfiles(req.Users)
	if err != nil {
		return nil, err
	}
	ds.Profiles, ds.ProfileLanguages, ds.ProfileRoles = profiles.Profiles, profiles.Languages, profiles.Roles

	ds.Interests = []*models.Interest{}
	if req.NumInterests > 0 {
		listings := Listings{
			Cases:               ds.Cases,
			LimitedAssistances:  ds.LimitedAssistances,
			TranslationRequests: ds.TranslationRequests,
		}
		if ds.Interests, ds.Index, err = b.BuildInterests(req.NumInterests, req.Kinds, listings, ds.Profiles); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// Counts reports the number of rows per table.
func (d *Dataset) Counts() map[string]int {
	return map[string]int{
		models.TableCases:               len(d.Cases),
		models.TableCaseLanguages:       len(d.CaseLanguages),
		models.TableCaseReliefs:         len(d.CaseReliefs),
		models.TableLimitedAssistances:  len(d.LimitedAssistances),
		models.TableTranslationRequests: len(d.TranslationRequests),
		models.TableProfiles:            len(d.Profiles),
		models.TableProfileLanguages:    len(d.ProfileLanguages),
		models.TableProfileRoles:        len(d.ProfileRoles),
		models.TableInterests:           len(d.Interests),
	}
}

// LegalServerIDs returns the codes issued to the dataset's cases.
func (d *Dataset) LegalServerIDs() []int {
	out := make([]int, len(d.Cases))
	for i, c := range d.Cases {
		out[i] = c.LegalServerID
	}
	return out
}

// TableRows is the wire form of one table.
type TableRows struct {
	models.TableSpec
	Rows []interface{}
}

// Rows returns every table in insertion order. Limited-assistance and
// translation-request rows carry interest ids taken from the index; the
// dataset's own listings are not modified.
func (d *Dataset) Rows() []TableRows {
	index := d.index()
	byTable := map[string][]interface{}{}

	for _, c := range d.Cases {
		byTable[models.TableCases] = append(byTable[models.TableCases], c)
	}
	for _, la := range d.LimitedAssistances {
		row := *la
		row.InterestIDs = index.ForListing(la.ID)
		byTable[models.TableLimitedAssistances] = append(byTable[models.TableLimitedAssistances], &row)
	}
	for _, tr := range d.TranslationRequests {
		row := *tr
		row.InterestIDs = index.ForListing(tr.ID)
		byTable[models.TableTranslationRequests] = append(byTable[models.TableTranslationRequests], &row)
	}
	for _, p := range d.Profiles {
		byTable[models.TableProfiles] = append(byTable[models.TableProfiles], p)
	}
	for _, l := range d.CaseLanguages {
		byTable[models.TableCaseLanguages] = append(byTable[models.TableCaseLanguages], l)
	}
	for _, r := range d.CaseReliefs {
		byTable[models.TableCaseReliefs] = append(byTable[models.TableCaseReliefs], r)
	}
	for _, l := range d.ProfileLanguages {
		byTable[models.TableProfileLanguages] = append(byTable[models.TableProfileLanguages], l)
	}
	for _, r := range d.ProfileRoles {
		byTable[models.TableProfileRoles] = append(byTable[models.TableProfileRoles], r)
	}
	for _, it := range d.Interests {
		byTable[models.TableInterests] = append(byTable[models.TableInterests], it)
	}

	out := make([]TableRows, 0, len(models.GeneratedTables))
	for _, spec := range models.GeneratedTables {
		rows := byTable[spec.Name]
		if rows == nil {
			rows = []interface{}{}
		}
		out = append(out, TableRows{TableSpec: spec, Rows: rows})
	}
	return out
}

// Verify checks the cross-entity invariants of the dataset and reports
// every violation at once.
func (d *Dataset) Verify() error {
	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	future := func(what, date string) {
		t, err := values.ParseDate(date)
		if err != nil {
			report("%s: unparseable date %q", what, date)
			return
		}
		if !t.After(d.GeneratedAt) {
			report("%s: date %q is not in the future", what, date)
		}
	}

	listings := map[string]models.ListingKind{}
	addListing := func(id string, kind models.ListingKind) {
		if _, dup := listings[id]; dup {
			report("listing id %s is not unique", id)
		}
		listings[id] = kind
	}

	codes := map[int]bool{}
	for _, c := range d.Cases {
		addListing(c.ID, models.KindCase)
		if codes[c.LegalServerID] {
			report("legal server id %d is not unique", c.LegalServerID)
		}
		codes[c.LegalServerID] = true
		if c.UpcomingDate != nil {
			future("case "+c.ID+" upcoming_date", *c.UpcomingDate)
		}
	}
	for _, la := range d.LimitedAssistances {
		addListing(la.ID, models.KindLimitedAssistance)
		future("limited assistance "+la.ID+" deadline", la.Deadline)
	}
	for _, tr := range d.TranslationRequests {
		addListing(tr.ID, models.KindTranslationRequest)
	}

	profiles := map[string]bool{}
	for _, p := range d.Profiles {
		if profiles[p.UserID] {
			report("profile user id %s is not unique", p.UserID)
		}
		profiles[p.UserID] = true
		future("profile "+p.UserID+" start_date", p.StartDate)
	}

	for _, l := range d.CaseLanguages {
		if listings[l.ListingID] != models.KindCase {
			report("case language %s references unknown case %s", l.IsoCode, l.ListingID)
		}
	}
	for _, r := range d.CaseReliefs {
		if listings[r.ListingID] != models.KindCase {
			report("relief %s references unknown case %s", r.ReliefCode, r.ListingID)
		}
	}
	for _, l := range d.ProfileLanguages {
		if !profiles[l.UserID] {
			report("profile language %s references unknown profile %s", l.IsoCode, l.UserID)
		}
	}
	for _, r := range d.ProfileRoles {
		if !profiles[r.UserID] {
			report("role %s references unknown profile %s", r.Role, r.UserID)
		}
	}

	interestIDs := map[string]bool{}
	pairs := map[models.PairKey]bool{}
	byListing := map[string]map[string]bool{}
	byProfile := map[string]map[string]bool{}
	for _, it := range d.Interests {
		if interestIDs[it.ID] {
			report("interest id %s is not unique", it.ID)
		}
		interestIDs[it.ID] = true
		if pairs[it.Pair()] {
			report("interest pairing (%s, %s) is duplicated", it.ListingID, it.UserID)
		}
		pairs[it.Pair()] = true

		if kind, ok := listings[it.ListingID]; !ok || kind != it.ListingType {
			report("interest %s references unknown %s listing %s", it.ID, it.ListingType, it.ListingID)
		}
		if !profiles[it.UserID] {
			report("interest %s references unknown profile %s", it.ID, it.UserID)
		}
		if it.FormResponse.StartDate != nil {
			future("interest "+it.ID+" start_date", *it.FormResponse.StartDate)
		}
		addTo(byListing, it.ListingID, it.ID)
		addTo(byProfile, it.UserID, it.ID)
	}

	index := d.index()
	for id := range listings {
		if !sameSet(index.ForListing(id), byListing[id]) {
			report("backreferences of listing %s do not match its interests", id)
		}
	}
	for id := range profiles {
		if !sameSet(index.ForProfile(id), byProfile[id]) {
			report("backreferences of profile %s do not match its interests", id)
		}
	}
	if index.Listings() > len(byListing) || index.Profiles() > len(byProfile) {
		report("interest index references interests outside the dataset")
	}

	// Materialized backreferences, as found in exported datasets.
	for _, la := range d.LimitedAssistances {
		if len(la.InterestIDs) > 0 && !sameSet(la.InterestIDs, byListing[la.ID]) {
			report("interest_ids of limited assistance %s do not match its interests", la.ID)
		}
	}
	for _, tr := range d.TranslationRequests {
		if len(tr.InterestIDs) > 0 && !sameSet(tr.InterestIDs, byListing[tr.ID]) {
			report("interest_ids of translation request %s do not match its interests", tr.ID)
		}
	}

	if len(problems) > 0 {
		return apperrors.NewDatasetInvalidError(problems)
	}
	return nil
}

// index falls back to indexing the interest list, for datasets decoded
// from an export.
func (d *Dataset) index() *InterestIndex {
	if d.Index != nil {
		return d.Index
	}
	return IndexInterests(d.Interests)
}

func addTo(m map[string]map[string]bool, key, id string) {
	if m[key] == nil {
		m[key] = map[string]bool{}
	}
	m[key][id] = true
}

func sameSet(ids []string, want map[string]bool) bool {
	if len(ids) != len(want) {
		return false
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
	}
	return true
}
