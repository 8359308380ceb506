package models

import "time"

// PageSeo is a per-page SEO override keyed by page slug (e.g. "home",
// "kontakty"). Pages without a row fall back to the frontend's static
// defaults, so absence is a valid state and not an error.
type PageSeo struct {
	Slug        string     `json:"slug" db:"slug"`
	Title       *string    `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Keywords    StringList `json:"keywords" db:"keywords"`
	OGImageURL  *string    `json:"ogImageUrl" db:"og_image_url"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
