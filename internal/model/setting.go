package model

import "time"

// Known setting keys read by the public page.
const (
	SettingSiteTitle       = "siteTitle"
	SettingSiteDescription = "siteDescription"
	SettingGifURL          = "gifUrl"
	SettingLoadingPhrases  = "loadingPhrases" // JSON array of strings
)

// Setting is an untyped key/value pair controlling site display.
type Setting struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     *string   `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SiteInfo is the resolved display configuration, with defaults applied.
type SiteInfo struct {
	Title          string
	Description    string
	GifURL         string
	LoadingPhrases []string
}
