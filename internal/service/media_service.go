package service

import (
	"context"
	"errors"
	"strings"

	"mediarelay/internal/model"
	"mediarelay/internal/ytdlp"
	"mediarelay/pkg/logger"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DefaultSubtitleFormat is used when the caller does not ask for one
const DefaultSubtitleFormat = "srt"

// ErrNoSubtitles is returned when no subtitle language could be chosen
var ErrNoSubtitles = errors.New("no subtitles available")

// MediaService turns media requests into yt-dlp invocations
type MediaService struct {
	client *ytdlp.Client
}

// NewMediaService creates a new media service
func NewMediaService(client *ytdlp.Client) *MediaService {
	return &MediaService{client: client}
}

// ToolVersion reports the yt-dlp version
func (s *MediaService) ToolVersion(ctx context.Context) (string, error) {
	return s.client.Version(ctx)
}

// GetInfo fetches metadata for mediaURL and simplifies it
func (s *MediaService) GetInfo(ctx context.Context, mediaURL string) (*model.InfoResponse, error) {
	md, err := s.client.DumpJSON(ctx, mediaURL)
	if err != nil {
		return nil, err
	}

	info := parseMetadata(md)
	logger.LogInfo("Media info retrieved",
		zap.String("id", info.ID),
		zap.String("title", info.Title),
		zap.Int("formats", len(info.Formats)))
	return info, nil
}

// parseMetadata converts yt-dlp metadata to the response shape
func parseMetadata(md *ytdlp.Metadata) *model.InfoResponse {
	formats := []model.FormatDescriptor{}
	for _, f := range md.Formats {
		if format := parseFormat(f); format != nil {
			formats = append(formats, *format)
		}
	}

	var viewCount int64
	if md.ViewCount != nil {
		viewCount = *md.ViewCount
	}

	return &model.InfoResponse{
		ID:            md.ID,
		Title:         md.Title,
		Uploader:      md.Uploader,
		Length:        md.Duration,
		Thumbnail:     md.Thumbnail,
		Formats:       formats,
		Subtitles:     keysOrEmpty(md.Subtitles),
		AutoSubtitles: keysOrEmpty(md.AutomaticCaptions),
		Raw:           model.RawInfo{ViewCount: viewCount},
	}
}

// parseFormat projects a yt-dlp format, skipping variants that carry neither
// a size nor a direct URL
func parseFormat(f ytdlp.Format) *model.FormatDescriptor {
	size := positiveSize(f.Filesize)
	if size == nil {
		size = positiveSize(f.FilesizeApprox)
	}
	if size == nil && f.URL == "" {
		return nil
	}

	format := &model.FormatDescriptor{
		FormatID:      f.FormatID,
		Extension:     f.Ext,
		Width:         f.Width,
		Height:        f.Height,
		AudioCodec:    f.ACodec,
		VideoCodec:    f.VCodec,
		FileSize:      size,
		FileSizeHuman: "unknown",
		Note:          f.FormatNote,
	}
	if size != nil {
		format.FileSizeHuman = humanize.Bytes(uint64(*size))
	}
	if format.Note == "" {
		format.Note = f.Format
	}
	return format
}

func positiveSize(v *float64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	n := int64(*v)
	return &n
}

func keysOrEmpty(keys ytdlp.LanguageKeys) []string {
	if keys == nil {
		return []string{}
	}
	return []string(keys)
}

// StartDownload spawns a media stream for the request
func (s *MediaService) StartDownload(ctx context.Context, req *model.MediaRequest) (ytdlp.Stream, error) {
	return s.client.StreamDownload(ctx, req.URL, req.FormatID)
}

// SubtitleSelection is the subtitle track a request resolved to
type SubtitleSelection struct {
	Language string
	Format   string
	Auto     bool
}

// ResolveSubtitles picks the language and format for req. An explicit lang
// wins; otherwise the first manual subtitle key, then the first automatic
// caption key. A failed metadata lookup leaves no candidates.
func (s *MediaService) ResolveSubtitles(ctx context.Context, req *model.MediaRequest) (*SubtitleSelection, error) {
	sel := &SubtitleSelection{
		Language: req.Language,
		Format:   NormalizeSubtitleFormat(req.SubtitleFormat),
	}
	if sel.Language != "" {
		return sel, nil
	}

	md, err := s.client.DumpJSON(ctx, req.URL)
	if err != nil {
		logger.LogWarn("Subtitle metadata lookup failed",
			zap.String("url", req.URL),
			zap.String("details", ytdlp.Diagnostic(err)))
		md = &ytdlp.Metadata{}
	}

	switch {
	case len(md.Subtitles) > 0:
		sel.Language = md.Subtitles[0]
	case len(md.AutomaticCaptions) > 0:
		sel.Language = md.AutomaticCaptions[0]
		sel.Auto = true
	default:
		return nil, ErrNoSubtitles
	}
	return sel, nil
}

// StartSubtitles spawns a subtitle stream for a resolved selection
func (s *MediaService) StartSubtitles(ctx context.Context, mediaURL string, sel *SubtitleSelection) (ytdlp.Stream, error) {
	return s.client.StreamSubtitles(ctx, mediaURL, ytdlp.SubtitleOptions{
		Language: sel.Language,
		Format:   sel.Format,
		Auto:     sel.Auto,
	})
}

// NormalizeSubtitleFormat lower-cases f, defaulting to srt
func NormalizeSubtitleFormat(f string) string {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "" {
		return DefaultSubtitleFormat
	}
	return f
}
