// Package repositories implements the data access layer (repository pattern)
// for the studio backend. Each repository type encapsulates all database
// queries for a domain entity. Handlers never issue SQL directly — all
// database access goes through this layer, which makes query logic testable
// in isolation and prevents accidental cross-domain data access.
//
// Lookup methods return (nil, nil) when a row does not exist; the caller maps
// that to 404. Uniqueness violations surface as ErrSlugTaken / ErrLoginTaken
// so handlers can return 409 without inspecting driver error codes.
package repositories

import "errors"

// ErrSlugTaken is returned when creating or renaming onto a slug that is
// already in use by another row.
var ErrSlugTaken = errors.New("slug already in use")

// ErrLoginTaken is returned when creating an admin user with a login that
// already exists.
var ErrLoginTaken = errors.New("login already in use")

// ErrUnknownSlug is returned by reorder operations when the supplied list
// references a slug or id that does not exist; the transaction is rolled back.
var ErrUnknownSlug = errors.New("unknown slug in reorder list")
