package models

// Profile is a volunteer participant tied to an auth user.
type Profile struct {
	UserID                   string      `json:"user_id"`
	FirstName                string      `json:"first_name"`
	LastName                 string      `json:"last_name"`
	PreferredFirstName       *string     `json:"preferred_first_name,omitempty"`
	Location                 string      `json:"location"`
	HoursPerMonth            int         `json:"hours_per_month"`
	StartDate                string      `json:"start_date"`
	AvailabilityDescription  *string     `json:"availability_description,omitempty"`
	ImmigrationLawExperience *Experience `json:"immigration_law_experience,omitempty"`
	BarNumber                *string     `json:"bar_number,omitempty"`
	EOIRRegistered           *bool       `json:"eoir_registered,omitempty"`
	Accreditations           []string    `json:"accreditations,omitempty"`
}

type ProfileLanguage struct {
	UserID   string `json:"user_id"`
	IsoCode  string `json:"iso_code"`
	CanRead  bool   `json:"can_read"`
	CanWrite bool   `json:"can_write"`
}

type ProfileRole struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// UserData is a provisioned auth user, as stored in test_users.
type UserData struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// HasRole reports whether roles contains r.
func HasRole(roles []ProfileRole, r Role) bool {
	for _, pr := range roles {
		if pr.Role == r {
			return true
		}
	}
	return false
}
