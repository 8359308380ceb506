// project.go defines the Project model and its structured content JSON column,
// along with the build/parse helpers the admin editor round-trips through.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Project represents a single portfolio project shown on the public site.
// Order defines the display sequence across all projects and is kept gap-free
// (0..n-1) by the repository after every create, delete, and reorder.
type Project struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Tagline      *string         `json:"tagline"`
	Location     *string         `json:"location"`
	Year         *string         `json:"year"`
	Area         *string         `json:"area"`
	Scope        *string         `json:"scope"`
	Intro        *string         `json:"intro"`
	HeroImageURL *string         `json:"heroImageUrl"`
	Order        int             `json:"order"`
	Categories   StringList      `json:"categories"`
	Content      *ProjectContent `json:"content"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	// Relations, populated by GetBySlug only.
	Gallery []*ProjectMedia  `json:"gallery,omitempty"`
	Schemes []*ProjectScheme `json:"schemes,omitempty"`
}

// ProjectFact is a single label/value pair in the project fact sheet
// (e.g. "Площадь" → "240 м²").
type ProjectFact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ContentSEO holds the per-project SEO override embedded in the content column.
type ContentSEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	OGImage     string `json:"ogImage,omitempty"`
}

// IsEmpty reports whether every SEO field is unset.
func (s *ContentSEO) IsEmpty() bool {
	return s == nil || (s.Title == "" && s.Description == "" && s.Keywords == "" && s.OGImage == "")
}

// ProjectContent is the structured body of a project, stored as a nullable
// JSON column. Empty optional sections are omitted entirely rather than being
// serialized as empty arrays or objects, so a content value built from no
// input marshals to nothing at all (the column stays NULL).
type ProjectContent struct {
	Body     []string      `json:"body,omitempty"`
	BodyHTML string        `json:"bodyHtml,omitempty"`
	Facts    []ProjectFact `json:"facts,omitempty"`
	SEO      *ContentSEO   `json:"seo,omitempty"`
}

// BuildContent assembles a ProjectContent from its parts, collapsing empty
// sections to their zero form. It returns nil when every part is empty so the
// caller stores NULL instead of "{}".
func BuildContent(body []string, bodyHTML string, facts []ProjectFact, seo *ContentSEO) *ProjectContent {
	c := &ProjectContent{BodyHTML: bodyHTML}
	for _, p := range body {
		if p != "" {
			c.Body = append(c.Body, p)
		}
	}
	for _, f := range facts {
		if f.Label != "" || f.Value != "" {
			c.Facts = append(c.Facts, f)
		}
	}
	if !seo.IsEmpty() {
		c.SEO = seo
	}
	if c.IsEmpty() {
		return nil
	}
	return c
}

// IsEmpty reports whether the content carries no data at all.
func (c *ProjectContent) IsEmpty() bool {
	return c == nil || (len(c.Body) == 0 && c.BodyHTML == "" && len(c.Facts) == 0 && c.SEO.IsEmpty())
}

// Value implements driver.Valuer. Empty content is stored as NULL.
func (c *ProjectContent) Value() (driver.Value, error) {
	if c.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *ProjectContent) Scan(src interface{}) error {
	if src == nil {
		*c = ProjectContent{}
		return nil
	}
	b, err := asBytes(src)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		*c = ProjectContent{}
		return nil
	}
	return json.Unmarshal(b, c)
}

// ParseContent decodes a raw content column value. A NULL or empty column
// yields nil, mirroring BuildContent's collapse of empty input.
func ParseContent(raw []byte) (*ProjectContent, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var c ProjectContent
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, nil
	}
	return &c, nil
}
