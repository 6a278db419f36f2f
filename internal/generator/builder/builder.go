// Package builder assembles entity collections and links listings, profiles
// and interests without duplicate pairings or dangling references.
package builder

import (
	"fmt"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/generator/factory"
	"legalaid-seeder/internal/generator/rng"
	"legalaid-seeder/internal/generator/values"
	"legalaid-seeder/internal/models"
)

// Join rows per case, as [min, max).
const (
	minCaseLanguages, maxCaseLanguages = 1, 3
	minCaseReliefs, maxCaseReliefs     = 1, 4
)

// KindSet selects the listing kinds interests may target.
type KindSet struct {
	Cases               bool `json:"cases"`
	LimitedAssistances  bool `json:"limitedAssistances"`
	TranslationRequests bool `json:"translationRequests"`
}

// AllKinds enables every listing kind.
var AllKinds = KindSet{Cases: true, LimitedAssistances: true, TranslationRequests: true}

// Enabled lists the selected kinds in declaration order.
func (k KindSet) Enabled() []models.ListingKind {
	var out []models.ListingKind
	if k.Cases {
		out = append(out, models.KindCase)
	}
	if k.LimitedAssistances {
		out = append(out, models.KindLimitedAssistance)
	}
	if k.TranslationRequests {
		out = append(out, models.KindTranslationRequest)
	}
	return out
}

// Listings holds the candidate listings for interests, per kind.
type Listings struct {
	Cases               []*models.CaseListing
	LimitedAssistances  []*models.LimitedAssistance
	TranslationRequests []*models.TranslationRequest
}

func (l Listings) refs(kind models.ListingKind) []models.ListingRef {
	var out []models.ListingRef
	switch kind {
	case models.KindCase:
		for _, c := range l.Cases {
			out = append(out, c.Ref())
		}
	case models.KindLimitedAssistance:
		for _, la := range l.LimitedAssistances {
			out = append(out, la.Ref())
		}
	case models.KindTranslationRequest:
		for _, tr := range l.TranslationRequests {
			out = append(out, tr.Ref())
		}
	}
	return out
}

// CaseBatch is a set of cases with their join rows.
type CaseBatch struct {
	Cases     []*models.CaseListing
	Languages []models.CaseLanguage
	Reliefs   []models.Relief
}

// ProfileBatch is a set of profiles with their join rows.
type ProfileBatch struct {
	Profiles  []*models.Profile
	Languages []models.ProfileLanguage
	Roles     []models.ProfileRole
}

// Builder drives the factories over requested counts. Cases built by one
// Builder share a single legal-service code seen-set.
type Builder struct {
	f    *factory.Factory
	r    *rng.Rand
	seen *factory.CodeSet
}

// New returns a builder whose code seen-set starts with knownCodes, which
// are codes already issued outside this build.
func New(f *factory.Factory, knownCodes ...int) *Builder {
	return &Builder{
		f:    f,
		r:    f.Values().Rand(),
		seen: factory.NewCodeSet(knownCodes...),
	}
}

// Codes is the seen-set of legal-service codes, including known codes.
func (b *Builder) Codes() *factory.CodeSet { return b.seen }

// Values exposes the value generator, e.g. to synthesize users offline.
func (b *Builder) Values() *values.Generator { return b.f.Values() }

func (b *Builder) BuildCases(n int) (*CaseBatch, error) {
	if n < 0 {
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("case count cannot be negative, got %d", n))
	}
	digits := b.f.CodeDigits()
	space := values.CodeSpace(digits)
	inUse := b.seen.CountBelow(space)
	if free := space - inUse; n > free {
		return nil, apperrors.NewCodeSpaceExhaustedError(digits, 0, inUse).
			WithMetadata("requested", n).
			WithMetadata("free", free)
	}

	batch := &CaseBatch{Cases: make([]*models.CaseListing, 0, n)}
	for i := 0; i < n; i++ {
		c, err := b.f.CaseListing(b.seen)
		if err != nil {
			return nil, err
		}
		langs, err := b.f.CaseLanguages(c.ID, b.r.Int(minCaseLanguages, maxCaseLanguages))
		if err != nil {
			return nil, err
		}
		reliefs, err := b.f.Reliefs(c.ID, b.r.Int(minCaseReliefs, maxCaseReliefs))
		if err != nil {
			return nil, err
		}
		batch.Cases = append(batch.Cases, c)
		batch.Languages = append(batch.Languages, langs...)
		batch.Reliefs = append(batch.Reliefs, reliefs...)
	}
	return batch, nil
}

func (b *Builder) BuildLimitedAssistances(n int) ([]*models.LimitedAssistance, error) {
	if n < 0 {
		return nil, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("limited assistance count cannot be negative, got %d", n))
	}
	out := make([]*models.LimitedAssistance, 0, n)
	for i := 0; i < n; i++ {
		la, err := b.f.LimitedAssistance()
		if err != nil {
			return nil, err
		}
		out = append(out, la)
	}
	return out, nil
}

func (b *Builder) BuildTranslationRequests(n int) ([]*models.TranslationRequest, error) {
	if n < 0 {
		return nil, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("translation request count cannot be negative, got %d", n))
	}
	out := make([]*models.TranslationRequest, 0, n)
	for i := 0; i < n; i++ {
		tr, err := b.f.TranslationRequest()
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, nil
}

// BuildProfiles builds one profile per user.
func (b *Builder) BuildProfiles(users []models.UserData) (*ProfileBatch, error) {
	batch := &ProfileBatch{Profiles: make([]*models.Profile, 0, len(users))}
	for _, u := range users {
		pb, err := b.f.Profile(u)
		if err != nil {
			return nil, err
		}
		batch.Profiles = append(batch.Profiles, pb.Profile)
		batch.Languages = append(batch.Languages, pb.Languages...)
		batch.Roles = append(batch.Roles, pb.Roles...)
	}
	return batch, nil
}

// BuildInterests links up to n interests between enabled listings and
// profiles. Each iteration picks a kind, then a listing of that kind, then
// the first profile in a fresh shuffle not yet paired with that listing.
// An iteration whose listing is paired with every profile is skipped, so
// fewer than n interests may be returned.
func (b *Builder) BuildInterests(n int, kinds KindSet, listings Listings, profiles []*models.Profile) ([]*models.Interest, *InterestIndex, error) {
	enabled := kinds.Enabled()
	if len(enabled) == 0 {
		return nil, nil, apperrors.NewConfigurationError("at least one listing type must be selected")
	}

	refs := make(map[models.ListingKind][]models.ListingRef, len(enabled))
	for _, kind := range enabled {
		r := listings.refs(kind)
		if len(r) == 0 {
			return nil, nil, apperrors.NewConfigurationError(
				fmt.Sprintf("%s listings are selected but none were provided", kind))
		}
		refs[kind] = r
	}

	if n < 0 {
		return nil, nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("interest count cannot be negative, got %d", n))
	}

	index := NewInterestIndex()
	if len(profiles) == 0 {
		return []*models.Interest{}, index, nil
	}

	paired := make(map[models.PairKey]struct{}, n)
	interests := make([]*models.Interest, 0, n)

	for i := 0; i < n; i++ {
		kind, err := rng.PickOne(b.r, enabled)
		if err != nil {
			return nil, nil, err
		}
		listing, err := rng.PickOne(b.r, refs[kind])
		if err != nil {
			return nil, nil, err
		}

		var profile *models.Profile
		for _, p := range rng.Shuffle(b.r, profiles) {
			if _, used := paired[models.PairKey{ListingID: listing.ID, UserID: p.UserID}]; !used {
				profile = p
				break
			}
		}
		if profile == nil {
			continue
		}

		it, err := b.f.Interest(listing, profile)
		if err != nil {
			return nil, nil, err
		}
		paired[it.Pair()] = struct{}{}
		index.Add(it)
		interests = append(interests, it)
	}

	return interests, index, nil
}
