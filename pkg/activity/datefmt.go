package activity

import (
	"strings"
	"time"

	"github.com/codeGROOVE-dev/anifeed/pkg/tzconvert"
)

// dateTokens maps pattern tokens to Go reference layouts. Longest tokens first
// so that {MW} is never read as {M} followed by text.
var dateTokens = []struct {
	token  string
	layout string
}{
	{"{MW}", "January"},
	{"{h}", "15"},
	{"{m}", "04"},
	{"{D}", "02"},
	{"{M}", "01"},
	{"{Y}", "2006"},
}

type dateSegment struct {
	text   string
	layout bool
}

// DatePattern is a compiled user date pattern such as "{D}/{M}/{Y} {h}:{m}".
type DatePattern struct {
	segments []dateSegment
}

// CompilePattern splits pattern into literal text and layout segments.
// Literal text is never handed to time.Format, so digits like the 2 in
// "2nd" survive untouched.
func CompilePattern(pattern string) DatePattern {
	var p DatePattern
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, dateSegment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		matched := false
		if pattern[i] == '{' {
			for _, tok := range dateTokens {
				if strings.HasPrefix(pattern[i:], tok.token) {
					flush()
					p.segments = append(p.segments, dateSegment{text: tok.layout, layout: true})
					i += len(tok.token)
					matched = true
					break
				}
			}
		}
		if !matched {
			lit.WriteByte(pattern[i])
			i++
		}
	}
	flush()

	return p
}

// Layout returns the pattern as a single Go layout string. Literal text is
// included verbatim, so it is only suitable for display.
func (p DatePattern) Layout() string {
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteString(seg.text)
	}
	return b.String()
}

// Format renders t according to the pattern.
func (p DatePattern) Format(t time.Time) string {
	var b strings.Builder
	for _, seg := range p.segments {
		if seg.layout {
			b.WriteString(t.Format(seg.text))
			continue
		}
		b.WriteString(seg.text)
	}
	return b.String()
}

// FormatTimestamp converts a Unix epoch (seconds, UTC) to wall-clock time in
// the named IANA timezone and renders it with pattern.
func FormatTimestamp(epoch int64, timezone, pattern string) (string, error) {
	local, err := tzconvert.EpochToLocal(epoch, timezone)
	if err != nil {
		return "", err
	}
	return CompilePattern(pattern).Format(local), nil
}
