package exportdata

import (
	"time"

	"legalaid-seeder/internal/generator/builder"
)

// Input mirrors the build-data request. Zero values for NumUsers,
// Formats and OutputDir fall back to configuration.
type Input struct {
	NumCases               int              `json:"numCases"`
	NumLimitedAssistances  int              `json:"numLimitedAssistances"`
	NumTranslationRequests int              `json:"numTranslationRequests"`
	NumInterests           int              `json:"numInterests"`
	NumUsers               int              `json:"numUsers,omitempty"`
	ListingTypes           *builder.KindSet `json:"listingTypes,omitempty"`
	Formats                []string         `json:"formats,omitempty"`
	OutputDir              string           `json:"outputDir"`
}

func (in *Input) kinds() builder.KindSet {
	if in.ListingTypes == nil {
		return builder.AllKinds
	}
	return *in.ListingTypes
}

type Output struct {
	Message     string         `json:"message"`
	Files       []string       `json:"files"`
	Counts      map[string]int `json:"counts"`
	Users       int            `json:"users"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
