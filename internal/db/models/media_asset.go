package models

import "time"

// MediaAsset is one entry in the shared media library: an image that has been
// uploaded or fetched at least once. Assets are deduplicated by URL — creating
// an asset with a known URL returns the existing row instead of inserting a
// duplicate.
type MediaAsset struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}
