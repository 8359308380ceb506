package models

import "time"

// TeamMember represents one person on the "masterskaja" page. Order is
// persisted and re-sequenced to 0..n-1 after every create, delete, and
// reorder so the admin drag-and-drop list never shows gaps.
type TeamMember struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Role           *string   `json:"role"`
	Label          *string   `json:"label"`
	ImageURL       *string   `json:"imageUrl"`
	MobileImageURL *string   `json:"mobileImageUrl"`
	IsFeatured     bool      `json:"isFeatured"`
	Order          int       `json:"order"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
