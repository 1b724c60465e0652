package models

import (
	"strings"
	"time"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleStylist  = "stylist"
	RoleAdmin    = "admin"
)

// User represents a customer, stylist or admin account.
type User struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // bcrypt hash
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Role     string `bson:"role" json:"role"`
	IsActive bool   `bson:"isActive" json:"isActive"`

	StylistInfo *StylistInfo `bson:"stylistInfo,omitempty" json:"stylistInfo,omitempty"`

	Notifications []Notification `bson:"notifications,omitempty" json:"notifications,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StylistInfo holds stylist-specific profile data.
type StylistInfo struct {
	Specialties  []string            `bson:"specialties,omitempty" json:"specialties,omitempty"`
	Experience   int                 `bson:"experience,omitempty" json:"experience,omitempty"` // years
	Rating       float64             `bson:"rating,omitempty" json:"rating,omitempty"`
	TotalReviews int                 `bson:"totalReviews,omitempty" json:"totalReviews,omitempty"`
	Bio          string              `bson:"bio,omitempty" json:"bio,omitempty"`
	WorkingHours map[string]DayHours `bson:"workingHours,omitempty" json:"workingHours,omitempty"` // keyed by weekday name, lowercase
}

// DayHours describes a stylist's working window for one weekday.
type DayHours struct {
	Start     string `bson:"start" json:"start"` // "HH:MM"
	End       string `bson:"end" json:"end"`     // "HH:MM"
	IsWorking bool   `bson:"isWorking" json:"isWorking"`
}

// HoursFor returns the working window for the weekday of t, if any.
func (si *StylistInfo) HoursFor(t time.Time) (DayHours, bool) {
	if si == nil || si.WorkingHours == nil {
		return DayHours{}, false
	}
	h, ok := si.WorkingHours[strings.ToLower(t.Weekday().String())]
	return h, ok
}
