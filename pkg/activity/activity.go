// Package activity turns AniList list activities into Markdown or HTML lines.
package activity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/codeGROOVE-dev/anifeed/pkg/tzconvert"
)

// ErrInvalidTimezone is returned when Options.Timezone cannot be resolved.
var ErrInvalidTimezone = tzconvert.ErrInvalidTimezone

// TextFormat selects the output flavour of a rendered line.
type TextFormat string

// FormatMarkdown renders Markdown links. Every other value renders HTML anchors.
const FormatMarkdown TextFormat = "md"

// Title holds the title variants of a media entry. Missing variants are empty.
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// Media is the anime or manga an activity refers to.
type Media struct {
	Title   Title  `json:"title"`
	SiteURL string `json:"siteUrl"`
}

// Raw is one list activity as returned by AniList.
type Raw struct {
	Type      string `json:"type"`
	Progress  string `json:"progress"`
	Status    string `json:"status"`
	Media     Media  `json:"media"`
	CreatedAt int64  `json:"createdAt"`
}

// Options is the rendering configuration shared by every activity in a run.
type Options struct {
	Timezone    string
	Language    Language
	DatePattern string
	Format      TextFormat
}

// Rendered is a normalized activity ready to be printed.
type Rendered struct {
	Type      string
	Glyph     string
	CreatedAt string
	Progress  string
	Status    string
	Title     string
	URL       string
}

// ResolveTitle picks the preferred title, falling back to romaji and then native.
// All three may be empty, in which case the result is empty.
func (t Title) ResolveTitle(preferred Language) string {
	var title string
	switch preferred {
	case LanguageEnglish:
		title = t.English
	case LanguageNative:
		title = t.Native
	default:
		title = t.Romaji
	}
	if title == "" {
		title = t.Romaji
	}
	if title == "" {
		title = t.Native
	}
	return title
}

// Normalize builds a Rendered activity from raw using opts.
func Normalize(raw Raw, opts Options) (Rendered, error) {
	glyph, err := Glyph(raw.Type)
	if err != nil {
		return Rendered{}, err
	}

	createdAt, err := FormatTimestamp(raw.CreatedAt, opts.Timezone, opts.DatePattern)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{
		Type:      raw.Type,
		Glyph:     glyph,
		CreatedAt: createdAt,
		Progress:  raw.Progress,
		Status:    raw.Status,
		Title:     raw.Media.Title.ResolveTitle(opts.Language),
		URL:       raw.Media.SiteURL,
	}, nil
}

// String renders the activity as a list item in the given format.
func (r Rendered) String(format TextFormat) string {
	var progress string
	if r.Progress != "" {
		progress = r.Progress + " of "
	}

	if format == FormatMarkdown {
		return fmt.Sprintf("-   %s %s %s[%s](%s) (%s)",
			r.Glyph, capitalize(r.Status), progress, r.Title, r.URL, r.CreatedAt)
	}
	return fmt.Sprintf("-   %s %s %s<a href='%s'>%s</a> (%s)<br>",
		r.Glyph, capitalize(r.Status), progress, r.URL, r.Title, r.CreatedAt)
}

// Render normalizes raw and renders it in one step.
func Render(raw Raw, opts Options) (string, error) {
	r, err := Normalize(raw, opts)
	if err != nil {
		return "", err
	}
	return r.String(opts.Format), nil
}

// capitalize upper-cases the first rune and lower-cases the rest:
// "watched episode" -> "Watched episode", "READ" -> "Read".
func capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}

// IsEmpty reports whether no title variant is set.
func (t Title) IsEmpty() bool {
	return strings.TrimSpace(t.Romaji+t.English+t.Native) == ""
}
