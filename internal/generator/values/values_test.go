package values

import (
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/generator/refdata"
	"legalaid-seeder/internal/generator/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	tables, err := refdata.Default()
	require.NoError(t, err)
	g, err := New(rng.New(seed), tables, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return g
}

func TestNew_RejectsEmptyTables(t *testing.T) {
	_, err := New(rng.New(1), &refdata.Tables{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))

	_, err = New(rng.New(1), nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestParagraph_ZeroAndNegative(t *testing.T) {
	g := newTestGenerator(t, 1)

	out, err := g.Paragraph(0)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	_, err = g.Paragraph(-1)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestParagraph_Shape(t *testing.T) {
	g := newTestGenerator(t, 2)

	for _, words := range []int{1, 2, 9, 10, 19, 20, 45, 60, 200} {
		out, err := g.Paragraph(words)
		require.NoError(t, err)

		assert.Len(t, strings.Fields(out), words, "words=%d", words)
		assert.True(t, strings.HasSuffix(out, "."), "paragraph must end with a period")
		assert.NotContains(t, out, ",.")

		for _, sentence := range strings.Split(strings.TrimSuffix(out, "."), ". ") {
			require.NotEmpty(t, sentence)
			first := []rune(sentence)[0]
			assert.True(t, unicode.IsUpper(first), "sentence %q is not capitalized", sentence)

			n := len(strings.Fields(sentence))
			assert.LessOrEqual(t, n, 19)
			assert.LessOrEqual(t, strings.Count(sentence, ","), 1)
		}
	}
}

func TestParagraph_CommaPlacement(t *testing.T) {
	g := newTestGenerator(t, 3)

	commas := 0
	for i := 0; i < 200; i++ {
		out, err := g.Paragraph(19)
		require.NoError(t, err)
		for _, sentence := range strings.Split(strings.TrimSuffix(out, "."), ". ") {
			words := strings.Fields(sentence)
			for idx, w := range words {
				if strings.HasSuffix(w, ",") {
					commas++
					low := int(float64(len(words)) * 0.4)
					high := int(float64(len(words)) * 0.6)
					assert.GreaterOrEqual(t, idx, low)
					assert.LessOrEqual(t, idx, high)
				}
			}
		}
	}
	assert.Positive(t, commas)
}

var generatedDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} [+-]\d{2}:00$`)

func TestDateFromNow_Window(t *testing.T) {
	g := newTestGenerator(t, 4)

	for i := 0; i < 500; i++ {
		out, err := g.DateFromNow(30, 180)
		require.NoError(t, err)
		assert.Regexp(t, generatedDate, out)

		parsed, err := ParseDate(out)
		require.NoError(t, err)
		assert.False(t, parsed.Before(fixedNow.AddDate(0, 0, 30)), "%s before window", out)
		assert.False(t, parsed.After(fixedNow.AddDate(0, 0, 180)), "%s after window", out)

		tz := out[len(out)-5 : len(out)-3]
		assert.LessOrEqual(t, tz, "12")
	}
}

func TestDateFromNow_EqualBounds(t *testing.T) {
	g := newTestGenerator(t, 5)

	out, err := g.DateFromNow(7, 7)
	require.NoError(t, err)
	parsed, err := ParseDate(out)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), parsed)
}

func TestDateFromNow_InvalidWindow(t *testing.T) {
	g := newTestGenerator(t, 6)

	for _, w := range [][2]int{{0, 10}, {-3, 10}, {11, 10}} {
		_, err := g.DateFromNow(w[0], w[1])
		require.Error(t, err, "window %v", w)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
	}
}

func TestNumericCode(t *testing.T) {
	g := newTestGenerator(t, 7)

	for i := 0; i < 1000; i++ {
		code, err := g.NumericCode(3)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, code, 0)
		assert.Less(t, code, 1000)
	}

	_, err := g.NumericCode(0)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
	_, err = g.NumericCode(10)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))

	assert.Equal(t, 1000, CodeSpace(3))
	assert.Equal(t, 1000000, CodeSpace(6))
}

func TestIsoList_Distinct(t *testing.T) {
	g := newTestGenerator(t, 8)

	for i := 0; i < 200; i++ {
		codes, err := g.IsoList(1, 4)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(codes), 1)
		assert.LessOrEqual(t, len(codes), 3)

		seen := map[string]bool{}
		for _, c := range codes {
			assert.False(t, seen[c])
			seen[c] = true
		}
	}
}

func TestReliefCodes_UpperCased(t *testing.T) {
	g := newTestGenerator(t, 9)

	codes, err := g.ReliefCodes(3)
	require.NoError(t, err)
	for _, c := range codes {
		assert.Equal(t, strings.ToUpper(c), c)
	}
}

func TestLocation(t *testing.T) {
	g := newTestGenerator(t, 10)
	assert.Regexp(t, `^[^,]+, [A-Z]{2}$`, g.Location())
}

var emailShape = regexp.MustCompile(`^[a-z.]+@[a-z0-9]+\.[a-z]+$`)

func TestEmail(t *testing.T) {
	g := newTestGenerator(t, 11)

	shapes := map[string]bool{}
	for i := 0; i < 300; i++ {
		email := g.Email("Ana María", "O'Neil")
		assert.Regexp(t, emailShape, email)
		shapes[strings.SplitN(email, "@", 2)[0]] = true
	}
	assert.True(t, shapes["anamara.oneil"])
	assert.True(t, shapes["aoneil"])
	assert.True(t, shapes["anamara"])
}

func TestUsers(t *testing.T) {
	g := newTestGenerator(t, 12)

	users := g.Users(5)
	require.Len(t, users, 5)
	ids := map[string]bool{}
	for _, u := range users {
		assert.NotEmpty(t, u.FirstName)
		assert.Contains(t, u.Email, "@")
		assert.False(t, ids[u.ID])
		ids[u.ID] = true
	}
}
