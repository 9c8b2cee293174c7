package api

import (
	"time"
)

// DefaultVersion is the version of the record served before anything was published.
const DefaultVersion = "1.0.0"

// DefaultNotes are the release notes of the record served before anything was published.
const DefaultNotes = "Initial release"

// PubDateLayout is the layout used for synthesized publication dates.
const PubDateLayout = "2006-01-02T15:04:05.000Z07:00"

// UpdateRecord represents the content of the served update manifest.
//
// Notes and PubDate are nil when the publisher left them out, so that the
// record is served back without them.
type UpdateRecord struct {
	Version   string                    `json:"version"            yaml:"version"`
	Notes     *string                   `json:"notes,omitempty"    yaml:"notes,omitempty"`
	PubDate   *string                   `json:"pub_date,omitempty" yaml:"pub_date,omitempty"` //nolint:tagliatelle
	Platforms map[string]PlatformTarget `json:"platforms"          yaml:"platforms"`
}

// PlatformTarget represents the download for a given platform.
// The signature is passed through as supplied by the operator, a nil value is
// served as null.
type PlatformTarget struct {
	Signature *string `json:"signature" yaml:"signature"`
	URL       *string `json:"url"       yaml:"url"`
}

// NewPlatformTarget returns a target with the given signature and URL.
func NewPlatformTarget(signature string, url string) PlatformTarget {
	return PlatformTarget{Signature: &signature, URL: &url}
}

// Text returns a pointer to s, for the optional record fields.
func Text(s string) *string {
	return &s
}

// Value returns the string s points to, or an empty string if s is nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// DefaultUpdateRecord returns the record synthesized when nothing is stored yet.
func DefaultUpdateRecord(now time.Time) UpdateRecord {
	platforms := make(map[string]PlatformTarget, len(WellKnownPlatforms))
	for _, platform := range WellKnownPlatforms {
		platforms[string(platform)] = NewPlatformTarget("", "")
	}

	return UpdateRecord{
		Version:   DefaultVersion,
		Notes:     Text(DefaultNotes),
		PubDate:   Text(now.UTC().Format(PubDateLayout)),
		Platforms: platforms,
	}
}

// UpdateRecordPost represents the response to a successful record update.
type UpdateRecordPost struct {
	Success bool         `json:"success" yaml:"success"`
	Data    UpdateRecord `json:"data"    yaml:"data"`
}
