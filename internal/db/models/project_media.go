// project_media.go defines the per-project media rows: photos (feature +
// gallery) and supplementary scheme drawings. Both are owned exclusively by
// their project and are removed by the ON DELETE CASCADE constraint.
package models

import "time"

// MediaKind distinguishes the roles a media row can play within a project.
type MediaKind string

const (
	// MediaKindFeature marks the single hero image of a project. At most one
	// FEATURE row exists per project and it always sits at order 0.
	MediaKindFeature MediaKind = "FEATURE"
	// MediaKindGallery marks an ordered photo-gallery image.
	MediaKindGallery MediaKind = "GALLERY"
	// MediaKindScheme is kept for legacy rows imported before schemes moved to
	// their own table; new scheme images are written to project_schemes.
	MediaKindScheme MediaKind = "SCHEME"
)

// ProjectMedia is a single image attached to a project.
type ProjectMedia struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	URL       string    `json:"url"`
	Caption   *string   `json:"caption"`
	Kind      MediaKind `json:"kind"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProjectScheme is a supplementary plan/diagram image, separate from the
// photo gallery.
type ProjectScheme struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}
