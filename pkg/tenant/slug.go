// Package tenant implements the isolation and routing layer: slug
// validation, partition provisioning, per-tenant connection pooling,
// and request-time tenant resolution.
package tenant

import (
	"errors"
	"regexp"
	"strings"
)

// Slug is a validated partition name. The empty Slug is invalid; every
// non-empty value was produced by ParseSlug. Only a Slug may ever be
// interpolated into a schema-level statement or a connection target.
type Slug string

const (
	// SlugMinLength is the shortest slug a centre may choose.
	SlugMinLength = 3
	// SlugMaxLength matches the PostgreSQL identifier limit.
	SlugMaxLength = 63
)

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedSchemas would collide with system namespaces.
var reservedSchemas = map[string]struct{}{
	"public":             {},
	"pg_catalog":         {},
	"information_schema": {},
	"pg_toast":           {},
}

// Slug validation errors. All are terminal for the calling request.
var (
	ErrSlugFormat   = errors.New("slug must start with a lowercase letter and contain only lowercase letters, digits, and underscores")
	ErrSlugLength   = errors.New("slug must be between 3 and 63 characters")
	ErrSlugReserved = errors.New("slug collides with a reserved schema name")
)

// ParseSlug normalizes and validates a candidate partition name.
// The normalized form is the only form ever passed downstream; no other
// code path may interpolate tenant-supplied input into DDL or a
// connection target.
func ParseSlug(candidate string) (Slug, error) {
	normalized := strings.ToLower(strings.TrimSpace(candidate))

	if len(normalized) < SlugMinLength || len(normalized) > SlugMaxLength {
		return "", ErrSlugLength
	}
	if !slugPattern.MatchString(normalized) {
		return "", ErrSlugFormat
	}
	if _, reserved := reservedSchemas[normalized]; reserved {
		return "", ErrSlugReserved
	}

	return Slug(normalized), nil
}

func (s Slug) String() string { return string(s) }
