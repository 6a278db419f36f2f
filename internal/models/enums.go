package models

import (
	"encoding/json"
	"fmt"
)

// ListingKind tags which listing table a listing or interest belongs to.
type ListingKind int

const (
	KindCase ListingKind = iota + 1
	KindLimitedAssistance
	KindTranslationRequest
)

// AllListingKinds is ordered the way interest builders enumerate kinds.
var AllListingKinds = []ListingKind{KindCase, KindLimitedAssistance, KindTranslationRequest}

func (k ListingKind) String() string {
	switch k {
	case KindCase:
		return "CASE"
	case KindLimitedAssistance:
		return "LIMITED_ASSISTANCE"
	case KindTranslationRequest:
		return "TRANSLATION_REQUEST"
	default:
		return fmt.Sprintf("ListingKind(%d)", int(k))
	}
}

// Table returns the backend table holding listings of this kind.
func (k ListingKind) Table() string {
	switch k {
	case KindCase:
		return TableCases
	case KindLimitedAssistance:
		return TableLimitedAssistances
	case KindTranslationRequest:
		return TableTranslationRequests
	default:
		return ""
	}
}

func ParseListingKind(s string) (ListingKind, error) {
	for _, k := range AllListingKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown listing kind %q", s)
}

func (k ListingKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ListingKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseListingKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type Role string

const (
	RoleAttorney    Role = "ATTORNEY"
	RoleInterpreter Role = "INTERPRETER"
	RoleLegalFellow Role = "LEGAL_FELLOW"
	RoleTranslator  Role = "TRANSLATOR"
)

type Experience string

const (
	ExperienceLow    Experience = "LOW"
	ExperienceMedium Experience = "MEDIUM"
	ExperienceHigh   Experience = "HIGH"
)

var Experiences = []Experience{ExperienceLow, ExperienceMedium, ExperienceHigh}

// Agency is the adjudicating body of a case.
type Agency string

const (
	AgencyNinthCircuit           Agency = "9TH_CIRCUIT"
	AgencyBIA                    Agency = "BIA"
	AgencyImmigrationCourt       Agency = "IMMIGRATION_COURT"
	AgencyImmigrationEnforcement Agency = "IMMIGRATION_ENFORCEMENT"
	AgencyUSCIS                  Agency = "USCIS"
)

var Agencies = []Agency{
	AgencyNinthCircuit,
	AgencyBIA,
	AgencyImmigrationCourt,
	AgencyImmigrationEnforcement,
	AgencyUSCIS,
}

// Backend table names.
const (
	TableCases               = "cases"
	TableLimitedAssistances  = "limited_assistances"
	TableTranslationRequests = "translation_requests"
	TableProfiles            = "profiles"
	TableInterests           = "interests"
	TableCaseLanguages       = "cases_languages"
	TableCaseReliefs         = "cases_reliefs"
	TableProfileLanguages    = "profiles_languages"
	TableProfileRoles        = "profiles_roles"
	TableTestUsers           = "test_users"
)
