package models

import "time"

// Setting keys used by the contact and appearance admin pages. The value shape
// under each key is owned by the admin frontend; the backend stores it opaquely.
const (
	SettingContact    = "contact"
	SettingSocials    = "socials"
	SettingAppearance = "appearance"
)

// SiteSetting is a generic key → JSON document row used for contact info,
// social links, and appearance image URLs.
type SiteSetting struct {
	Key       string    `json:"key" db:"setting_key"`
	Value     JSONMap   `json:"value" db:"setting_value"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Global block slugs. Blocks are seeded from the legacy appearance setting
// when absent, so older deployments keep their images after upgrading.
const (
	BlockHomeHero       = "home-hero"
	BlockTransitionLogo = "transition-logo"
	BlockPricingTable   = "pricing-table"
)

// GlobalBlock is a named, admin-editable site-wide slot (home hero image,
// page-transition logo, pricing table).
type GlobalBlock struct {
	Slug      string    `json:"slug" db:"slug"`
	Data      JSONMap   `json:"data" db:"data"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
