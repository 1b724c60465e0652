package models

import "time"

// ServiceCategories is the fixed set of bookable categories.
var ServiceCategories = []string{"hair", "styling", "treatments", "special", "makeup", "nails", "spa"}

// Service represents a bookable offering. A service owns no bookings; it is
// referenced by them. Daily usage is derived from active bookings rather than
// stored as a counter, so there is no reset-at-midnight bookkeeping.
type Service struct {
	ID              string   `bson:"id" json:"id"`
	Name            string   `bson:"name" json:"name"`
	Description     string   `bson:"description" json:"description"`
	LongDescription string   `bson:"longDescription,omitempty" json:"longDescription,omitempty"`
	Category        string   `bson:"category" json:"category"`
	Price           float64  `bson:"price" json:"price"`       // >= 0
	Duration        int      `bson:"duration" json:"duration"` // minutes, >= 15
	Image           string   `bson:"image,omitempty" json:"image,omitempty"` // storage public ID
	Features        []string `bson:"features,omitempty" json:"features,omitempty"`
	Requirements    []string `bson:"requirements,omitempty" json:"requirements,omitempty"`

	IsActive  bool `bson:"isActive" json:"isActive"`
	IsPopular bool `bson:"isPopular" json:"isPopular"`

	Rating       float64 `bson:"rating" json:"rating"`
	TotalReviews int     `bson:"totalReviews" json:"totalReviews"`

	StylistIDs []string `bson:"stylistIds,omitempty" json:"stylistIds,omitempty"`

	CancellationPolicy string `bson:"cancellationPolicy,omitempty" json:"cancellationPolicy,omitempty"`
	MaxBookingsPerDay  int    `bson:"maxBookingsPerDay" json:"maxBookingsPerDay"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ValidCategory reports whether c is one of the fixed service categories.
func ValidCategory(c string) bool {
	for _, cat := range ServiceCategories {
		if cat == c {
			return true
		}
	}
	return false
}

// ServiceFilter narrows catalog listings.
type ServiceFilter struct {
	Category    string
	PopularOnly bool
	ActiveOnly  bool
	Page        int
	Limit       int
}
