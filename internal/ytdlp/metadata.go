package ytdlp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metadata models the subset of yt-dlp's --dump-single-json output the
// service reads.
type Metadata struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Uploader          string       `json:"uploader"`
	Duration          float64      `json:"duration"`
	Thumbnail         string       `json:"thumbnail"`
	ViewCount         *int64       `json:"view_count"`
	Formats           []Format     `json:"formats"`
	Subtitles         LanguageKeys `json:"subtitles"`
	AutomaticCaptions LanguageKeys `json:"automatic_captions"`
}

// Format is one entry of the formats list.
type Format struct {
	FormatID       string   `json:"format_id"`
	Format         string   `json:"format"`
	FormatNote     string   `json:"format_note"`
	Ext            string   `json:"ext"`
	Width          *int     `json:"width"`
	Height         *int     `json:"height"`
	ACodec         string   `json:"acodec"`
	VCodec         string   `json:"vcodec"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	URL            string   `json:"url"`
}

// LanguageKeys holds the keys of a language-keyed JSON object in document
// order. Values are skipped.
type LanguageKeys []string

// UnmarshalJSON implements json.Unmarshaler.
func (k *LanguageKeys) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*k = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ytdlp: expected object of languages, got %v", tok)
	}

	keys := LanguageKeys{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ytdlp: unexpected language key %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	*k = keys
	return nil
}
