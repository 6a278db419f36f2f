// Package factory builds one fully populated entity per call.
package factory

import (
	"fmt"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/generator/rng"
	"legalaid-seeder/internal/generator/values"
	"legalaid-seeder/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultCodeDigits      = 4
	DefaultMaxCodeAttempts = 1000

	optionalFieldChance = 0.8
	flagFieldChance     = 0.5
	singleRoleChance    = 0.7
	eoirChance          = 0.7
	preferredNameChance = 0.2
	barNumberDigits     = 6
)

// profileRoles are the roles a volunteer profile can hold.
var profileRoles = []models.Role{models.RoleAttorney, models.RoleInterpreter}

// interestRoles maps a listing kind to the roles an interest in it may claim.
var interestRoles = map[models.ListingKind][]models.Role{
	models.KindCase:               {models.RoleAttorney, models.RoleInterpreter},
	models.KindLimitedAssistance:  {models.RoleLegalFellow},
	models.KindTranslationRequest: {models.RoleTranslator},
}

type Options struct {
	CodeDigits      int
	MaxCodeAttempts int
}

type Factory struct {
	v           *values.Generator
	r           *rng.Rand
	codeDigits  int
	maxAttempts int
}

func New(v *values.Generator, opts Options) (*Factory, error) {
	if v == nil {
		return nil, apperrors.NewInvalidArgumentError("value generator is required")
	}
	if opts.CodeDigits == 0 {
		opts.CodeDigits = DefaultCodeDigits
	}
	if opts.MaxCodeAttempts == 0 {
		opts.MaxCodeAttempts = DefaultMaxCodeAttempts
	}
	if opts.CodeDigits < 1 || opts.CodeDigits > 9 {
		return nil, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("legal service code digits must be between 1 and 9, got %d", opts.CodeDigits))
	}
	if opts.MaxCodeAttempts < 1 {
		return nil, apperrors.NewInvalidArgumentError("max code attempts must be positive")
	}

	return &Factory{
		v:           v,
		r:           v.Rand(),
		codeDigits:  opts.CodeDigits,
		maxAttempts: opts.MaxCodeAttempts,
	}, nil
}

// CodeDigits is the length of issued legal-service codes.
func (f *Factory) CodeDigits() int { return f.codeDigits }

// Values exposes the underlying value generator.
func (f *Factory) Values() *values.Generator { return f.v }

// nextCode draws codes until one is absent from seen, then records it.
func (f *Factory) nextCode(seen *CodeSet) (int, error) {
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		code, err := f.v.NumericCode(f.codeDigits)
		if err != nil {
			return 0, err
		}
		if !seen.Has(code) {
			seen.Add(code)
			return code, nil
		}
	}
	return 0, apperrors.NewCodeSpaceExhaustedError(f.codeDigits, f.maxAttempts, seen.Len())
}

// CaseListing builds a case with a legal-service code unique within seen.
func (f *Factory) CaseListing(seen *CodeSet) (*models.CaseListing, error) {
	if seen == nil {
		return nil, apperrors.NewInvalidArgumentError("legal service code set is required")
	}

	code, err := f.nextCode(seen)
	if err != nil {
		return nil, err
	}

	c := &models.CaseListing{
		ID:                 uuid.NewString(),
		LegalServerID:      code,
		HoursPerMonth:      f.r.Int(20, 200),
		AdjudicatingAgency: f.v.Agency(),
		ExperienceNeeded:   f.v.Experience(),
	}

	if f.r.Chance(optionalFieldChance) {
		if c.Title, err = f.optionalParagraph(2, 8); err != nil {
			return nil, err
		}
	}
	if f.r.Chance(optionalFieldChance) {
		if c.Summary, err = f.optionalParagraph(40, 60); err != nil {
			return nil, err
		}
	}
	if f.r.Chance(optionalFieldChance) {
		c.Country = ptr(f.v.Country())
	}
	if f.r.Chance(optionalFieldChance) {
		c.ClientLocation = ptr(f.v.Location())
	}
	if f.r.Chance(optionalFieldChance) {
		c.NumMonths = ptr(f.r.Int(1, 5))
	}
	if f.r.Chance(flagFieldChance) {
		c.IsRemote = ptr(f.r.Bool())
	}
	if f.r.Chance(flagFieldChance) {
		c.NeedsAttorney = ptr(f.r.Bool())
	}
	if f.r.Chance(flagFieldChance) {
		c.NeedsInterpreter = ptr(f.r.Bool())
	}
	if f.r.Chance(optionalFieldChance) {
		date, err := f.v.DateFromNow(30, 180)
		if err != nil {
			return nil, err
		}
		c.UpcomingDate = &date
	}

	return c, nil
}

// CaseLanguages returns n distinct language rows for a case.
func (f *Factory) CaseLanguages(caseID string, n int) ([]models.CaseLanguage, error) {
	codes, err := f.v.IsoCodes(n)
	if err != nil {
		return nil, err
	}
	out := make([]models.CaseLanguage, len(codes))
	for i, code := range codes {
		out[i] = models.CaseLanguage{ListingID: caseID, IsoCode: code}
	}
	return out, nil
}

// Reliefs returns n distinct relief rows for a case.
func (f *Factory) Reliefs(caseID string, n int) ([]models.Relief, error) {
	codes, err := f.v.ReliefCodes(n)
	if err != nil {
		return nil, err
	}
	out := make([]models.Relief, len(codes))
	for i, code := range codes {
		out[i] = models.Relief{ListingID: caseID, ReliefCode: code}
	}
	return out, nil
}

func (f *Factory) LimitedAssistance() (*models.LimitedAssistance, error) {
	summary, err := f.v.Paragraph(f.r.Int(5, 30))
	if err != nil {
		return nil, err
	}
	languages, err := f.v.IsoList(1, 4)
	if err != nil {
		return nil, err
	}
	deadline, err := f.v.DateFromNow(21, 180)
	if err != nil {
		return nil, err
	}

	return &models.LimitedAssistance{
		ID:              uuid.NewString(),
		Summary:         summary,
		Languages:       languages,
		Country:         f.v.Country(),
		ExperienceLevel: f.v.Experience(),
		Deadline:        deadline,
		InterestIDs:     []string{},
	}, nil
}

func (f *Factory) TranslationRequest() (*models.TranslationRequest, error) {
	languages, err := f.v.IsoList(1, 4)
	if err != nil {
		return nil, err
	}
	summary, err := f.v.Paragraph(f.r.Int(40, 60))
	if err != nil {
		return nil, err
	}

	return &models.TranslationRequest{
		ID:          uuid.NewString(),
		Summary:     summary,
		Languages:   languages,
		InterestIDs: []string{},
	}, nil
}

// ProfileBundle is a profile together with its join rows.
type ProfileBundle struct {
	Profile   *models.Profile
	Languages []models.ProfileLanguage
	Roles     []models.ProfileRole
}

// Profile builds a volunteer profile for user. Attorney-only fields are
// filled after roles are assigned, and only when this profile is an attorney.
func (f *Factory) Profile(user models.UserData) (*ProfileBundle, error) {
	if user.ID == "" {
		return nil, apperrors.NewInvalidArgumentError("profile user id is required")
	}

	startDate, err := f.v.DateFromNow(5, 14)
	if err != nil {
		return nil, err
	}

	p := &models.Profile{
		UserID:        user.ID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Location:      f.v.Location(),
		HoursPerMonth: f.r.Int(40, 240),
		StartDate:     startDate,
	}
	if p.AvailabilityDescription, err = f.optionalParagraph(0, 30); err != nil {
		return nil, err
	}
	if f.r.Chance(preferredNameChance) {
		p.PreferredFirstName = ptr(f.v.FirstName())
	}

	languages, err := f.profileLanguages(p.UserID, f.r.Int(1, 3))
	if err != nil {
		return nil, err
	}

	numRoles := 2
	if f.r.Chance(singleRoleChance) {
		numRoles = 1
	}
	roles, err := f.profileRoles(p.UserID, numRoles)
	if err != nil {
		return nil, err
	}

	if models.HasRole(roles, models.RoleAttorney) {
		bar, err := f.v.NumericCode(barNumberDigits)
		if err != nil {
			return nil, err
		}
		p.BarNumber = ptr(fmt.Sprintf("%0*d", barNumberDigits, bar))
		p.EOIRRegistered = ptr(f.r.Chance(eoirChance))
		p.ImmigrationLawExperience = ptr(f.v.Experience())
		p.Accreditations = f.v.Accreditations()
	}

	return &ProfileBundle{Profile: p, Languages: languages, Roles: roles}, nil
}

func (f *Factory) profileLanguages(userID string, n int) ([]models.ProfileLanguage, error) {
	codes, err := f.v.IsoCodes(n)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProfileLanguage, len(codes))
	for i, code := range codes {
		out[i] = models.ProfileLanguage{
			UserID:   userID,
			IsoCode:  code,
			CanRead:  f.r.Bool(),
			CanWrite: f.r.Bool(),
		}
	}
	return out, nil
}

func (f *Factory) profileRoles(userID string, n int) ([]models.ProfileRole, error) {
	picked, err := rng.PickMany(f.r, profileRoles, n)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProfileRole, len(picked))
	for i, role := range picked {
		out[i] = models.ProfileRole{UserID: userID, Role: role}
	}
	return out, nil
}

// Interest builds an interest of profile in listing. The claimed roles
// come from the fixed per-kind table.
func (f *Factory) Interest(listing models.ListingRef, profile *models.Profile) (*models.Interest, error) {
	if profile == nil {
		return nil, apperrors.NewInvalidArgumentError("interest profile is required")
	}
	allowed, ok := interestRoles[listing.Kind]
	if !ok {
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("unknown listing kind %v", listing.Kind))
	}

	roles := allowed
	if len(allowed) > 1 {
		var err error
		if roles, err = rng.PickMany(f.r, allowed, f.r.Int(1, len(allowed)+1)); err != nil {
			return nil, err
		}
	} else {
		roles = append([]models.Role(nil), allowed...)
	}

	reason, err := f.v.Paragraph(f.r.Int(40, 60))
	if err != nil {
		return nil, err
	}

	it := &models.Interest{
		ID:          uuid.NewString(),
		ListingID:   listing.ID,
		UserID:      profile.UserID,
		ListingType: listing.Kind,
		FormResponse: models.FormResponse{
			InterestReason:  reason,
			RolesInterested: roles,
		},
	}
	if f.r.Chance(optionalFieldChance) {
		date, err := f.v.DateFromNow(1, 30)
		if err != nil {
			return nil, err
		}
		it.FormResponse.StartDate = &date
	}

	return it, nil
}

// optionalParagraph returns nil for an empty paragraph.
func (f *Factory) optionalParagraph(minWords, maxWords int) (*string, error) {
	p, err := f.v.Paragraph(f.r.Int(minWords, maxWords))
	if err != nil || p == "" {
		return nil, err
	}
	return &p, nil
}

func ptr[T any](v T) *T { return &v }
