package factory

import (
	"testing"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/generator/refdata"
	"legalaid-seeder/internal/generator/rng"
	"legalaid-seeder/internal/generator/values"
	"legalaid-seeder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T, seed int64, opts Options) *Factory {
	t.Helper()
	tables, err := refdata.Default()
	require.NoError(t, err)
	v, err := values.New(rng.New(seed), tables, values.WithClock(func() time.Time {
		return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	f, err := New(v, opts)
	require.NoError(t, err)
	return f
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))

	f := newTestFactory(t, 1, Options{})
	assert.Equal(t, DefaultCodeDigits, f.CodeDigits())

	_, err = New(f.Values(), Options{CodeDigits: 12})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
	_, err = New(f.Values(), Options{MaxCodeAttempts: -1})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestCaseListing_RequiredFields(t *testing.T) {
	f := newTestFactory(t, 2, Options{})
	seen := NewCodeSet()

	for i := 0; i < 100; i++ {
		c, err := f.CaseListing(seen)
		require.NoError(t, err)

		assert.NotEmpty(t, c.ID)
		assert.GreaterOrEqual(t, c.LegalServerID, 0)
		assert.Less(t, c.LegalServerID, 10000)
		assert.GreaterOrEqual(t, c.HoursPerMonth, 20)
		assert.Less(t, c.HoursPerMonth, 200)
		assert.Contains(t, models.Agencies, c.AdjudicatingAgency)
		assert.Contains(t, models.Experiences, c.ExperienceNeeded)
		if c.NumMonths != nil {
			assert.GreaterOrEqual(t, *c.NumMonths, 1)
			assert.Less(t, *c.NumMonths, 5)
		}
	}
	assert.Equal(t, 100, seen.Len())
}

func TestCaseListing_CodesAreUnique(t *testing.T) {
	f := newTestFactory(t, 3, Options{CodeDigits: 3})
	seen := NewCodeSet()

	codes := map[int]bool{}
	for i := 0; i < 500; i++ {
		c, err := f.CaseListing(seen)
		require.NoError(t, err)
		assert.False(t, codes[c.LegalServerID], "code %d issued twice", c.LegalServerID)
		codes[c.LegalServerID] = true
	}
}

func TestCaseListing_CodeSpaceExhausted(t *testing.T) {
	f := newTestFactory(t, 4, Options{CodeDigits: 1, MaxCodeAttempts: 50})
	seen := NewCodeSet(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	_, err := f.CaseListing(seen)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeSpaceExhausted))
	assert.Equal(t, 10, seen.Len())
}

func TestCaseListing_RequiresSeenSet(t *testing.T) {
	f := newTestFactory(t, 5, Options{})
	_, err := f.CaseListing(nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestCaseJoinRows(t *testing.T) {
	f := newTestFactory(t, 6, Options{})

	langs, err := f.CaseLanguages("case-1", 3)
	require.NoError(t, err)
	require.Len(t, langs, 3)
	for _, l := range langs {
		assert.Equal(t, "case-1", l.ListingID)
	}

	reliefs, err := f.Reliefs("case-1", 4)
	require.NoError(t, err)
	require.Len(t, reliefs, 4)
	distinct := map[string]bool{}
	for _, r := range reliefs {
		assert.Equal(t, "case-1", r.ListingID)
		distinct[r.ReliefCode] = true
	}
	assert.Len(t, distinct, 4)

	_, err = f.Reliefs("case-1", 1000)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestLimitedAssistance(t *testing.T) {
	f := newTestFactory(t, 7, Options{})

	for i := 0; i < 50; i++ {
		la, err := f.LimitedAssistance()
		require.NoError(t, err)
		assert.NotEmpty(t, la.ID)
		assert.NotEmpty(t, la.Summary)
		assert.NotEmpty(t, la.Country)
		assert.NotEmpty(t, la.Deadline)
		assert.GreaterOrEqual(t, len(la.Languages), 1)
		assert.LessOrEqual(t, len(la.Languages), 3)
		assert.NotNil(t, la.InterestIDs)
		assert.Empty(t, la.InterestIDs)
	}
}

func TestTranslationRequest(t *testing.T) {
	f := newTestFactory(t, 8, Options{})

	tr, err := f.TranslationRequest()
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)
	assert.NotEmpty(t, tr.Summary)
	assert.NotEmpty(t, tr.Languages)
	assert.Empty(t, tr.InterestIDs)
}

func TestProfile_AttorneyFieldsFollowOwnRoles(t *testing.T) {
	f := newTestFactory(t, 9, Options{})

	var attorneys, others int
	for i := 0; i < 200; i++ {
		user := f.Values().User()
		b, err := f.Profile(user)
		require.NoError(t, err)

		p := b.Profile
		assert.Equal(t, user.ID, p.UserID)
		assert.Equal(t, user.FirstName, p.FirstName)
		assert.GreaterOrEqual(t, p.HoursPerMonth, 40)
		assert.Less(t, p.HoursPerMonth, 240)

		require.NotEmpty(t, b.Roles)
		assert.LessOrEqual(t, len(b.Roles), 2)
		assert.NotEmpty(t, b.Languages)
		assert.LessOrEqual(t, len(b.Languages), 2)
		for _, r := range b.Roles {
			assert.Equal(t, user.ID, r.UserID)
		}

		if models.HasRole(b.Roles, models.RoleAttorney) {
			attorneys++
			require.NotNil(t, p.BarNumber)
			assert.Len(t, *p.BarNumber, 6)
			assert.NotNil(t, p.EOIRRegistered)
			assert.NotNil(t, p.ImmigrationLawExperience)
			assert.NotEmpty(t, p.Accreditations)
		} else {
			others++
			assert.Nil(t, p.BarNumber)
			assert.Nil(t, p.EOIRRegistered)
			assert.Nil(t, p.ImmigrationLawExperience)
			assert.Empty(t, p.Accreditations)
		}
	}
	assert.Positive(t, attorneys)
	assert.Positive(t, others)
}

func TestProfile_RequiresUserID(t *testing.T) {
	f := newTestFactory(t, 10, Options{})
	_, err := f.Profile(models.UserData{FirstName: "Ana"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestInterest_RolesByKind(t *testing.T) {
	f := newTestFactory(t, 11, Options{})
	b, err := f.Profile(f.Values().User())
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		it, err := f.Interest(models.ListingRef{ID: "case-1", Kind: models.KindCase}, b.Profile)
		require.NoError(t, err)
		assert.Equal(t, "case-1", it.ListingID)
		assert.Equal(t, b.Profile.UserID, it.UserID)
		assert.Equal(t, models.KindCase, it.ListingType)
		assert.NotEmpty(t, it.FormResponse.InterestReason)
		require.NotEmpty(t, it.FormResponse.RolesInterested)
		assert.LessOrEqual(t, len(it.FormResponse.RolesInterested), 2)
		for _, r := range it.FormResponse.RolesInterested {
			assert.Contains(t, []models.Role{models.RoleAttorney, models.RoleInterpreter}, r)
		}
	}

	la, err := f.Interest(models.ListingRef{ID: "la-1", Kind: models.KindLimitedAssistance}, b.Profile)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleLegalFellow}, la.FormResponse.RolesInterested)

	tr, err := f.Interest(models.ListingRef{ID: "tr-1", Kind: models.KindTranslationRequest}, b.Profile)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleTranslator}, tr.FormResponse.RolesInterested)
}

func TestInterest_InvalidInput(t *testing.T) {
	f := newTestFactory(t, 12, Options{})

	_, err := f.Interest(models.ListingRef{ID: "x", Kind: models.KindCase}, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))

	b, err := f.Profile(f.Values().User())
	require.NoError(t, err)
	_, err = f.Interest(models.ListingRef{ID: "x", Kind: models.ListingKind(42)}, b.Profile)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestCodeSet_Values(t *testing.T) {
	s := NewCodeSet(42, 7, 42)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(7))
	assert.False(t, s.Has(8))
	s.Add(1)
	assert.Equal(t, []int{1, 7, 42}, s.Values())
}

func TestCodeSet_ZeroValue(t *testing.T) {
	var s CodeSet
	assert.False(t, s.Has(3))
	s.Add(3)
	assert.True(t, s.Has(3))
	assert.Equal(t, 1, s.Len())
}

func TestCodeSet_CountBelow(t *testing.T) {
	s := NewCodeSet(5, 99, 100, 1094)
	assert.Equal(t, 2, s.CountBelow(100))
	assert.Equal(t, 4, s.CountBelow(10000))
	assert.Equal(t, 0, s.CountBelow(0))
}
