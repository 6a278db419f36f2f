package builddata

import (
	"time"

	"legalaid-seeder/internal/generator/builder"
)

type Input struct {
	NumCases               int              `json:"numCases"`
	NumLimitedAssistances  int              `json:"numLimitedAssistances"`
	NumTranslationRequests int              `json:"numTranslationRequests"`
	NumInterests           int              `json:"numInterests"`
	ListingTypes           *builder.KindSet `json:"listingTypes,omitempty"`
	DryRun                 bool             `json:"dryRun"`
}

// kinds defaults to every listing kind when none were given.
func (in *Input) kinds() builder.KindSet {
	if in.ListingTypes == nil {
		return builder.AllKinds
	}
	return *in.ListingTypes
}

type Output struct {
	Message     string         `json:"message"`
	Counts      map[string]int `json:"counts"`
	Users       int            `json:"users"`
	DryRun      bool           `json:"dryRun"`
	GeneratedAt time.Time      `json:"generatedAt"`
	DurationMs  int64          `json:"durationMs"`
}
