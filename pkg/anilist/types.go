package anilist

import (
	"encoding/json"

	"github.com/codeGROOVE-dev/anifeed/pkg/activity"
)

// wireActivity mirrors a ListActivity node. Nullable fields are pointers.
type wireActivity struct {
	Type      string          `json:"type"`
	CreatedAt int64           `json:"createdAt"`
	Progress  json.RawMessage `json:"progress"`
	Status    *string         `json:"status"`
	Media     struct {
		Title struct {
			Romaji  *string `json:"romaji"`
			English *string `json:"english"`
			Native  *string `json:"native"`
		} `json:"title"`
		SiteURL string `json:"siteUrl"`
	} `json:"media"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// progress is documented as a string but some clients have seen plain numbers.
func progress(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (w *wireActivity) toRaw() activity.Raw {
	return activity.Raw{
		Type:      w.Type,
		CreatedAt: w.CreatedAt,
		Progress:  progress(w.Progress),
		Status:    deref(w.Status),
		Media: activity.Media{
			Title: activity.Title{
				Romaji:  deref(w.Media.Title.Romaji),
				English: deref(w.Media.Title.English),
				Native:  deref(w.Media.Title.Native),
			},
			SiteURL: w.Media.SiteURL,
		},
	}
}
