// Package constants defines shared defaults for the anifeed application.
package constants

import "time"

// Defaults applied when neither a flag nor an input is set.
const (
	DefaultLanguage    = "romaji"
	DefaultPostCount   = 5
	DefaultTimezone    = "UTC"
	DefaultDatePattern = "{D}/{M}/{Y} {h}:{m}"
	DefaultTextFormat  = "md"
)

// CacheTTL bounds how stale a cached AniList response may be. Activity
// changes often, so this stays short.
const CacheTTL = 10 * time.Minute

// RequestTimeout bounds a whole run, fetch included.
const RequestTimeout = 30 * time.Second
