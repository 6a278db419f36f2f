package models

// Interest records that a profile wants to work on a listing.
type Interest struct {
	ID           string       `json:"id"`
	ListingID    string       `json:"listing_id"`
	UserID       string       `json:"user_id"`
	ListingType  ListingKind  `json:"listing_type"`
	FormResponse FormResponse `json:"form_response"`
}

type FormResponse struct {
	InterestReason  string  `json:"interestReason"`
	RolesInterested []Role  `json:"rolesInterested"`
	StartDate       *string `json:"start_date,omitempty"`
}

// PairKey identifies the (listing, user) pairing of an interest.
type PairKey struct {
	ListingID string
	UserID    string
}

func (i *Interest) Pair() PairKey {
	return PairKey{ListingID: i.ListingID, UserID: i.UserID}
}
