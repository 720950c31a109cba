package download

import (
	"context"

	"cliplib/internal/media"
)

// Info is the raw attribute bag the extraction engine reports for a URL,
// convertible to a metadata record.
type Info struct {
	ID           string
	Title        string
	Channel      string
	ChannelURL   string
	Duration     int64
	UploadDate   string // raw YYYYMMDD
	ViewCount    int64
	Description  string
	ThumbnailURL string
	Tags         []string
	URL          string
	Extractor    string
}

// Request describes one fetch.
type Request struct {
	URL        string
	Kind       media.Kind
	Resolution string // video cap, e.g. "720p"
	Bitrate    string // audio kbps, e.g. "192"
	TargetDir  string
	BaseName   string // filename without extension
}

// Result is the written file of a successful fetch.
type Result struct {
	Filename string
	Filepath string
	Kind     media.Kind
}

// ProgressFunc receives percent and a display message as a fetch advances.
type ProgressFunc func(percent float64, message string)

// Engine is the boundary to the external extraction engine. The library
// and metadata layers never call it directly; only the supervisor does.
type Engine interface {
	FetchInfo(ctx context.Context, url string) (*Info, error)
	Download(ctx context.Context, req Request, progress ProgressFunc) (*Result, error)
}
