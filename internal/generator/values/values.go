// Package values produces single domain values (names, places, language
// codes, paragraphs, dates) by sampling the reference tables.
package values

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/generator/refdata"
	"legalaid-seeder/internal/generator/rng"
	"legalaid-seeder/internal/models"

	"github.com/google/uuid"
)

// DateLayout is the wire layout of generated dates, before the offset suffix.
const DateLayout = "2006-01-02 15:04:05"

// Paragraph shape.
const (
	minSentenceWords = 10
	maxSentenceWords = 20
	commaBandLow     = 0.4
	commaBandHigh    = 0.6
)

type Generator struct {
	r      *rng.Rand
	tables *refdata.Tables
	now    func() time.Time
}

type Option func(*Generator)

// WithClock replaces time.Now as the origin of relative dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New validates tables once so that every sampler below is infallible.
func New(r *rng.Rand, tables *refdata.Tables, opts ...Option) (*Generator, error) {
	if r == nil {
		return nil, apperrors.NewInvalidArgumentError("random source is required")
	}
	if tables == nil {
		return nil, apperrors.NewEmptyInputError("reference data")
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{r: r, tables: tables, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Rand exposes the shared random source to the entity factories.
func (g *Generator) Rand() *rng.Rand { return g.r }

// Now is the origin of relative dates, in UTC.
func (g *Generator) Now() time.Time { return g.now().UTC() }

func (g *Generator) pick(table []string) string {
	return table[g.r.Index(len(table))]
}

func (g *Generator) FirstName() string { return g.pick(g.tables.FirstNames) }
func (g *Generator) LastName() string  { return g.pick(g.tables.LastNames) }
func (g *Generator) City() string      { return g.pick(g.tables.Cities) }
func (g *Generator) State() string     { return g.pick(g.tables.States) }
func (g *Generator) Country() string   { return g.pick(g.tables.Countries) }
func (g *Generator) Word() string      { return g.pick(g.tables.Gibberish) }
func (g *Generator) IsoCode() string   { return g.pick(g.tables.IsoCodes) }

// Location is "City, ST".
func (g *Generator) Location() string {
	return fmt.Sprintf("%s, %s", g.City(), g.State())
}

func (g *Generator) Experience() models.Experience {
	return models.Experiences[g.r.Index(len(models.Experiences))]
}

func (g *Generator) Agency() models.Agency {
	return models.Agencies[g.r.Index(len(models.Agencies))]
}

// IsoCodes returns n distinct language codes.
func (g *Generator) IsoCodes(n int) ([]string, error) {
	return rng.PickMany(g.r, g.tables.IsoCodes, n)
}

// IsoList returns between min and max-1 distinct language codes.
func (g *Generator) IsoList(min, max int) ([]string, error) {
	return g.IsoCodes(g.r.Int(min, max))
}

// ReliefCodes returns n distinct upper-cased relief codes.
func (g *Generator) ReliefCodes(n int) ([]string, error) {
	codes, err := rng.PickMany(g.r, g.tables.ReliefCodes, n)
	if err != nil {
		return nil, err
	}
	for i, c := range codes {
		codes[i] = strings.ToUpper(c)
	}
	return codes, nil
}

// Accreditations returns one or two distinct accreditations.
func (g *Generator) Accreditations() []string {
	n := g.r.Int(1, 3)
	if n > len(g.tables.Accreditations) {
		n = len(g.tables.Accreditations)
	}
	picked, _ := rng.PickMany(g.r, g.tables.Accreditations, n)
	return picked
}

// NumericCode returns a uniform integer in [0, 10^digits).
func (g *Generator) NumericCode(digits int) (int, error) {
	if digits <= 0 || digits > 9 {
		return 0, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("code length must be between 1 and 9 digits, got %d", digits))
	}
	return g.r.Int(0, CodeSpace(digits)), nil
}

// CodeSpace is the number of distinct codes with the given digit count.
func CodeSpace(digits int) int {
	return int(math.Pow10(digits))
}

// Paragraph builds words of filler text grouped into sentences of 10 to 19
// words. Each sentence has a comma with probability one half, placed after
// the word at 40 to 60 percent of its length.
func (g *Generator) Paragraph(words int) (string, error) {
	if words < 0 {
		return "", apperrors.NewInvalidArgumentError(
			fmt.Sprintf("paragraph word count cannot be negative, got %d", words))
	}
	if words == 0 {
		return "", nil
	}

	sentences := make([]string, 0, words/minSentenceWords+1)
	sentence := make([]string, 0, maxSentenceWords)
	hasComma := g.r.Bool()
	remaining := g.r.Int(minSentenceWords, maxSentenceWords)

	flush := func() {
		sentences = append(sentences, g.polish(sentence, hasComma))
		sentence = sentence[:0]
		hasComma = g.r.Bool()
		remaining = g.r.Int(minSentenceWords, maxSentenceWords)
	}

	for i := 0; i < words; i++ {
		sentence = append(sentence, g.Word())
		remaining--
		if remaining == 0 {
			flush()
		}
	}
	if len(sentence) > 0 {
		flush()
	}

	return strings.Join(sentences, " "), nil
}

// polish capitalizes, punctuates and joins one sentence. Sentences shorter
// than three words never get a comma, which would land on the last word.
func (g *Generator) polish(words []string, comma bool) string {
	out := make([]string, len(words))
	copy(out, words)

	if comma && len(out) >= 3 {
		idx := int(math.Floor(float64(len(out)) * g.r.Float(commaBandLow, commaBandHigh)))
		out[idx] += ","
	}
	out[0] = capitalize(out[0])

	return strings.Join(out, " ") + "."
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// DateFromNow returns now plus a uniform whole number of days in
// [minDays, maxDays), formatted as "YYYY-MM-DD HH:MM:SS ±HH:00". The
// offset suffix is random and does not describe the timestamp, which is
// always UTC.
func (g *Generator) DateFromNow(minDays, maxDays int) (string, error) {
	if minDays <= 0 {
		return "", apperrors.NewInvalidArgumentError(
			fmt.Sprintf("date window minimum must be positive, got %d", minDays))
	}
	if minDays > maxDays {
		return "", apperrors.NewInvalidArgumentError(
			fmt.Sprintf("date window minimum %d exceeds maximum %d", minDays, maxDays))
	}

	offset := g.r.Int(minDays, maxDays)
	future := g.now().UTC().Add(time.Duration(offset) * 24 * time.Hour)

	sign := "+"
	if g.r.Bool() {
		sign = "-"
	}
	tz := g.r.Int(0, 13)

	return fmt.Sprintf("%s %s%02d:00", future.Format(DateLayout), sign, tz), nil
}

// ParseDate reads back the timestamp part of a generated date.
func ParseDate(s string) (time.Time, error) {
	if len(s) < len(DateLayout) {
		return time.Time{}, fmt.Errorf("date %q too short", s)
	}
	return time.ParseInLocation(DateLayout, s[:len(DateLayout)], time.UTC)
}

// Email builds one of first.last@, flast@ or first@ at a guild domain.
func (g *Generator) Email(first, last string) string {
	f, l := emailPart(first), emailPart(last)
	if f == "" {
		f = "user"
	}

	var local string
	switch g.r.Int(0, 3) {
	case 0:
		local = f + "." + l
	case 1:
		local = f[:1] + l
	default:
		local = f
	}
	local = strings.Trim(local, ".")

	return fmt.Sprintf("%s@%s.%s", local, g.pick(g.tables.Guilds), g.pick(g.tables.Extensions))
}

func emailPart(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, s)
}

// User synthesizes a user record for offline builds.
func (g *Generator) User() models.UserData {
	first, last := g.FirstName(), g.LastName()
	return models.UserData{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Email:     g.Email(first, last),
	}
}

// Users synthesizes n user records.
func (g *Generator) Users(n int) []models.UserData {
	out := make([]models.UserData, n)
	for i := range out {
		out[i] = g.User()
	}
	return out
}
