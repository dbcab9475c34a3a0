package model

// MediaRequest holds the query parameters shared by the media endpoints
type MediaRequest struct {
	URL            string `form:"url" binding:"required"`
	FormatID       string `form:"format"`
	Language       string `form:"lang"`
	SubtitleFormat string `form:"-"`
}

// InfoResponse is the simplified metadata returned by GET /info
type InfoResponse struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Uploader      string             `json:"uploader"`
	Length        float64            `json:"length"`
	Thumbnail     string             `json:"thumbnail"`
	Formats       []FormatDescriptor `json:"formats"`
	Subtitles     []string           `json:"subtitles"`
	AutoSubtitles []string           `json:"auto_subtitles"`
	Raw           RawInfo            `json:"raw"`
}

// RawInfo carries fields passed through from the tool unchanged
type RawInfo struct {
	ViewCount int64 `json:"view_count"`
}

// FormatDescriptor represents one downloadable variant
type FormatDescriptor struct {
	FormatID      string `json:"format_id"`
	Extension     string `json:"ext"`
	Width         *int   `json:"width"`
	Height        *int   `json:"height"`
	AudioCodec    string `json:"acodec"`
	VideoCodec    string `json:"vcodec"`
	FileSize      *int64 `json:"filesize"`
	FileSizeHuman string `json:"filesize_human"`
	Note          string `json:"note"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}
