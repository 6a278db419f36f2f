package refdata

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "legalaid-seeder/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_AllTablesPopulated(t *testing.T) {
	tables, err := Default()
	require.NoError(t, err)

	for name, size := range tables.Sizes() {
		assert.Positive(t, size, "table %s is empty", name)
	}
	for _, code := range tables.IsoCodes {
		assert.Len(t, code, 3, "iso code %q", code)
	}
}

func TestLoad_EmptyPathUsesEmbedded(t *testing.T) {
	tables, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, tables.FirstNames)
}

func TestLoad_RejectsEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refdata.json")
	body := `{"first_names": ["Ana"], "last_names": []}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "last_names")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSynthesize_TopsUpWithoutTouchingBase(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)
	baseFirst := len(base.FirstNames)
	baseIso := append([]string(nil), base.IsoCodes...)

	out := Synthesize(base, 10)

	assert.Len(t, base.FirstNames, baseFirst)
	assert.GreaterOrEqual(t, len(out.FirstNames), baseFirst)
	assert.Equal(t, baseIso, out.IsoCodes)
	require.NoError(t, out.Validate())

	seen := map[string]bool{}
	for _, name := range out.FirstNames {
		assert.False(t, seen[name], "duplicate first name %q", name)
		seen[name] = true
	}
	for _, g := range out.Guilds {
		assert.NotContains(t, g, ".")
	}
}

func TestDomainLabel(t *testing.T) {
	assert.Equal(t, "acme", domainLabel("Acme.com"))
	assert.Equal(t, "bigcorp", domainLabel("big-corp.io"))
	assert.Equal(t, "local", domainLabel("local"))
}
