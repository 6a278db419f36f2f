package builder

import "legalaid-seeder/internal/models"

// InterestIndex maps listings and profiles to the interests that reference
// them. Interests are stored flat; this index is the only backreference
// bookkeeping and is updated as each interest is built.
type InterestIndex struct {
	byListing map[string][]string
	byProfile map[string][]string
}

func NewInterestIndex() *InterestIndex {
	return &InterestIndex{
		byListing: make(map[string][]string),
		byProfile: make(map[string][]string),
	}
}

func (x *InterestIndex) Add(it *models.Interest) {
	x.byListing[it.ListingID] = append(x.byListing[it.ListingID], it.ID)
	x.byProfile[it.UserID] = append(x.byProfile[it.UserID], it.ID)
}

// ForListing returns the interest ids referencing a listing, in creation
// order. The result is a copy.
func (x *InterestIndex) ForListing(listingID string) []string {
	return append([]string{}, x.byListing[listingID]...)
}

// ForProfile returns the interest ids referencing a profile.
func (x *InterestIndex) ForProfile(userID string) []string {
	return append([]string{}, x.byProfile[userID]...)
}

func (x *InterestIndex) Listings() int { return len(x.byListing) }
func (x *InterestIndex) Profiles() int { return len(x.byProfile) }

// IndexInterests rebuilds an index from a flat interest list.
func IndexInterests(interests []*models.Interest) *InterestIndex {
	x := NewInterestIndex()
	for _, it := range interests {
		x.Add(it)
	}
	return x
}
