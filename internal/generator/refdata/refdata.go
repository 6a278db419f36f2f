// Package refdata loads the static tables (names, places, vocabulary,
// language codes) the value generators sample from. Tables are loaded once
// and must be treated as read-only afterwards.
package refdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	apperrors "legalaid-seeder/internal/common/errors"
)

//go:embed sample_data.json
var embeddedSampleData []byte

type Tables struct {
	FirstNames     []string `json:"first_names"`
	LastNames      []string `json:"last_names"`
	Cities         []string `json:"cities"`
	States         []string `json:"states"`
	Countries      []string `json:"countries"`
	Accreditations []string `json:"accreditations"`
	Gibberish      []string `json:"gibberish"`
	IsoCodes       []string `json:"iso_codes"`
	ReliefCodes    []string `json:"relief_codes"`
	Guilds         []string `json:"guilds"`
	Extensions     []string `json:"extensions"`
}

// Default returns the tables compiled into the binary.
func Default() (*Tables, error) {
	return parse(embeddedSampleData, "embedded sample data")
}

// Load reads tables from path, or the embedded tables when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference data %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, source string) (*Tables, error) {
	var t Tables
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse reference data %s: %w", source, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("reference data %s: %w", source, err)
	}
	return &t, nil
}

// Validate fails with an empty-input error naming the first empty table.
func (t *Tables) Validate() error {
	for _, tbl := range t.named() {
		if len(tbl.values) == 0 {
			return apperrors.NewEmptyInputError(tbl.name + " table")
		}
	}
	return nil
}

// Sizes reports the row count of every table.
func (t *Tables) Sizes() map[string]int {
	out := make(map[string]int)
	for _, tbl := range t.named() {
		out[tbl.name] = len(tbl.values)
	}
	return out
}

type namedTable struct {
	name   string
	values []string
}

func (t *Tables) named() []namedTable {
	return []namedTable{
		{"first_names", t.FirstNames},
		{"last_names", t.LastNames},
		{"cities", t.Cities},
		{"states", t.States},
		{"countries", t.Countries},
		{"accreditations", t.Accreditations},
		{"gibberish", t.Gibberish},
		{"iso_codes", t.IsoCodes},
		{"relief_codes", t.ReliefCodes},
		{"guilds", t.Guilds},
		{"extensions", t.Extensions},
	}
}

func (t *Tables) clone() *Tables {
	return &Tables{
		FirstNames:     append([]string(nil), t.FirstNames...),
		LastNames:      append([]string(nil), t.LastNames...),
		Cities:         append([]string(nil), t.Cities...),
		States:         append([]string(nil), t.States...),
		Countries:      append([]string(nil), t.Countries...),
		Accreditations: append([]string(nil), t.Accreditations...),
		Gibberish:      append([]string(nil), t.Gibberish...),
		IsoCodes:       append([]string(nil), t.IsoCodes...),
		ReliefCodes:    append([]string(nil), t.ReliefCodes...),
		Guilds:         append([]string(nil), t.Guilds...),
		Extensions:     append([]string(nil), t.Extensions...),
	}
}
