package friendship

import (
	"fmt"
	"time"

	"synqAPI/internal/store"
)

type RequestStatus string

const (
	RequestPending RequestStatus = "pending"
)

// FriendEdge is one half of a friendship: the document stored under
// users/{owner}/friends/{friendId}. A friendship always exists as a
// symmetric pair of these.
type FriendEdge struct {
	FriendID    string    `json:"friendId"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	Since       time.Time `json:"since"`
	MeetupCount int64     `json:"meetupCount"`
	// NotifyOnCreate marks the edge written by the accepting side; the
	// friend-created trigger only pushes for edges carrying it.
	NotifyOnCreate bool `json:"notifyOnCreate,omitempty"`
}

// FriendRequest lives under users/{recipient}/friendRequests/{requestId}.
type FriendRequest struct {
	ID          string        `json:"id"`
	SenderID    string        `json:"senderId"`
	SenderName  string        `json:"senderName"`
	SenderPhoto string        `json:"senderPhoto,omitempty"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type SendRequest struct {
	RecipientID string `json:"recipientId"`
}

func EdgeFromDoc(d *store.Doc) (*FriendEdge, error) {
	friendID, err := d.Str("friendId")
	if err != nil {
		return nil, fmt.Errorf("decode friend edge: %w", err)
	}
	return &FriendEdge{
		FriendID:       friendID,
		DisplayName:    d.OptStr("displayName"),
		PhotoURL:       d.OptStr("photoUrl"),
		Since:          d.OptTime("since"),
		MeetupCount:    d.OptInt("meetupCount"),
		NotifyOnCreate: d.Bool("notifyOnCreate"),
	}, nil
}

func (e *FriendEdge) ToDoc() map[string]any {
	return map[string]any{
		"friendId":       e.FriendID,
		"displayName":    e.DisplayName,
		"photoUrl":       e.PhotoURL,
		"since":          e.Since,
		"meetupCount":    e.MeetupCount,
		"notifyOnCreate": e.NotifyOnCreate,
	}
}

func RequestFromDoc(d *store.Doc) (*FriendRequest, error) {
	senderID, err := d.Str("senderId")
	if err != nil {
		return nil, fmt.Errorf("decode friend request: %w", err)
	}
	return &FriendRequest{
		ID:          d.ID,
		SenderID:    senderID,
		SenderName:  d.OptStr("senderName"),
		SenderPhoto: d.OptStr("senderPhoto"),
		Status:      RequestStatus(d.OptStr("status")),
		CreatedAt:   d.OptTime("createdAt"),
	}, nil
}

func (r *FriendRequest) ToDoc() map[string]any {
	return map[string]any{
		"senderId":    r.SenderID,
		"senderName":  r.SenderName,
		"senderPhoto": r.SenderPhoto,
		"status":      string(r.Status),
		"createdAt":   r.CreatedAt,
	}
}
