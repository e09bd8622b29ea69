package user

import (
	"fmt"
	"time"

	"synqAPI/internal/store"
)

type AvailabilityStatus string

const (
	StatusIdle      AvailabilityStatus = "idle"
	StatusAvailable AvailabilityStatus = "available"
	StatusInactive  AvailabilityStatus = "inactive"
)

type User struct {
	UID            string             `json:"uid"`
	Email          string             `json:"email,omitempty"`
	Phone          string             `json:"phone,omitempty"`
	DisplayName    string             `json:"displayName"`
	PhotoURL       string             `json:"photoUrl,omitempty"`
	Memo           string             `json:"memo,omitempty"`
	Status         AvailabilityStatus `json:"status"`
	AvailableSince time.Time          `json:"availableSince,omitempty"`
	City           string             `json:"city,omitempty"`
	State          string             `json:"state,omitempty"`
	Latitude       float64            `json:"latitude,omitempty"`
	Longitude      float64            `json:"longitude,omitempty"`
	Interests      []string           `json:"interests"`
	PushToken      string             `json:"pushToken,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	DisplayName string   `json:"displayName"`
	PhotoURL    string   `json:"photoUrl"`
	Memo        string   `json:"memo"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Interests   []string `json:"interests"`
}

type SetAvailabilityRequest struct {
	Status AvailabilityStatus `json:"status"`
}

type RegisterPushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

func ValidStatus(s AvailabilityStatus) bool {
	return s == StatusIdle || s == StatusAvailable || s == StatusInactive
}

// FromDoc validates a raw user document. Display name is the only field a
// user document cannot live without; onboarding writes the rest incrementally.
func FromDoc(d *store.Doc) (*User, error) {
	displayName, err := d.Str("displayName")
	if err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	status := AvailabilityStatus(d.OptStr("status"))
	if status == "" {
		status = StatusIdle
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("decode user %s: unknown status %q", d.ID, status)
	}
	lat, _ := d.Float("latitude")
	lng, _ := d.Float("longitude")
	return &User{
		UID:            d.ID,
		Email:          d.OptStr("email"),
		Phone:          d.OptStr("phone"),
		DisplayName:    displayName,
		PhotoURL:       d.OptStr("photoUrl"),
		Memo:           d.OptStr("memo"),
		Status:         status,
		AvailableSince: d.OptTime("availableSince"),
		City:           d.OptStr("city"),
		State:          d.OptStr("state"),
		Latitude:       lat,
		Longitude:      lng,
		Interests:      d.OptStrSlice("interests"),
		PushToken:      d.OptStr("pushToken"),
		CreatedAt:      d.OptTime("createdAt"),
		UpdatedAt:      d.OptTime("updatedAt"),
	}, nil
}

func (u *User) ToDoc() map[string]any {
	return map[string]any{
		"email":          u.Email,
		"phone":          u.Phone,
		"displayName":    u.DisplayName,
		"photoUrl":       u.PhotoURL,
		"memo":           u.Memo,
		"status":         string(u.Status),
		"availableSince": u.AvailableSince,
		"city":           u.City,
		"state":          u.State,
		"latitude":       u.Latitude,
		"longitude":      u.Longitude,
		"interests":      u.Interests,
		"pushToken":      u.PushToken,
		"createdAt":      u.CreatedAt,
		"updatedAt":      u.UpdatedAt,
	}
}
