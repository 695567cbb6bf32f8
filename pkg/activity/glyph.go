package activity

import (
	"errors"
	"fmt"
)

// ErrUnknownActivityType is returned for activity types with no glyph.
var ErrUnknownActivityType = errors.New("unknown activity type")

// Activity types returned by the AniList list-activity query.
const (
	TypeAnimeList = "ANIME_LIST"
	TypeMangaList = "MANGA_LIST"
)

var glyphs = map[string]string{
	TypeAnimeList: "📺",
	TypeMangaList: "📖",
}

// Glyph returns the display glyph for an activity type.
func Glyph(activityType string) (string, error) {
	g, ok := glyphs[activityType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownActivityType, activityType)
	}
	return g, nil
}
