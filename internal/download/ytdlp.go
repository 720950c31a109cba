package download

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"cliplib/internal/media"
)

// YTDLP drives the yt-dlp binary as the extraction engine.
type YTDLP struct {
	binPath string
	logger  zerolog.Logger
}

func NewYTDLP(logger zerolog.Logger) *YTDLP {
	binPath := "yt-dlp"
	if path, err := exec.LookPath("yt-dlp"); err == nil {
		binPath = path
	}
	return &YTDLP{
		binPath: binPath,
		logger:  logger.With().Str("component", "ytdlp").Logger(),
	}
}

func (y *YTDLP) IsAvailable() bool {
	_, err := exec.LookPath(y.binPath)
	return err == nil
}

type ytdlpInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Channel     string   `json:"channel"`
	Uploader    string   `json:"uploader"`
	ChannelURL  string   `json:"channel_url"`
	UploaderURL string   `json:"uploader_url"`
	Duration    float64  `json:"duration"`
	UploadDate  string   `json:"upload_date"`
	ViewCount   int64    `json:"view_count"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Tags        []string `json:"tags"`
	Extractor   string   `json:"extractor"`
}

// FetchInfo extracts item attributes without downloading.
func (y *YTDLP) FetchInfo(ctx context.Context, url string) (*Info, error) {
	args := []string{
		"--dump-json",
		"--no-warnings",
		"--skip-download",
		url,
	}
	cmd := exec.CommandContext(ctx, y.binPath, args...)
	output, err := cmd.Output()
	if err != nil {
		y.logger.Debug().Err(err).Str("url", url).Msg("yt-dlp info failed")
		return nil, fmt.Errorf("fetch info: %w", err)
	}

	var raw ytdlpInfo
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse info: %w", err)
	}

	info := &Info{
		ID:           raw.ID,
		Title:        raw.Title,
		Channel:      raw.Channel,
		ChannelURL:   raw.ChannelURL,
		Duration:     int64(raw.Duration),
		UploadDate:   raw.UploadDate,
		ViewCount:    raw.ViewCount,
		Description:  raw.Description,
		ThumbnailURL: raw.Thumbnail,
		Tags:         raw.Tags,
		URL:          url,
		Extractor:    raw.Extractor,
	}
	if info.Channel == "" {
		info.Channel = raw.Uploader
	}
	if info.ChannelURL == "" {
		info.ChannelURL = raw.UploaderURL
	}
	return info, nil
}

var progressRe = regexp.MustCompile(`\[download\]\s+([\d.]+)%`)

// Download fetches the media file into req.TargetDir. Video requests merge
// to mp4 capped at the requested resolution; audio requests extract mp3.
func (y *YTDLP) Download(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	outTemplate := filepath.Join(req.TargetDir, req.BaseName+".%(ext)s")

	var args []string
	if req.Kind == media.KindAudio {
		bitrate := req.Bitrate
		if bitrate == "" {
			bitrate = "192"
		}
		args = []string{
			"-x",
			"--audio-format", "mp3",
			"--audio-quality", bitrate + "K",
			"--newline",
			"-o", outTemplate,
			req.URL,
		}
	} else {
		height := strings.TrimSuffix(req.Resolution, "p")
		if height == "" {
			height = "720"
		}
		format := fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best[height<=%s]", height, height)
		args = []string{
			"-f", format,
			"--merge-output-format", "mp4",
			"--newline",
			"-o", outTemplate,
			req.URL,
		}
	}

	cmd := exec.CommandContext(ctx, y.binPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if m := progressRe.FindStringSubmatch(line); m != nil && progress != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				progress(pct, "Downloading...")
			}
		}
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	return y.findOutput(req)
}

// findOutput locates the written file; yt-dlp decides the final extension.
func (y *YTDLP) findOutput(req Request) (*Result, error) {
	exts := media.VideoExtensions()
	if req.Kind == media.KindAudio {
		exts = media.AudioExtensions()
	}
	for _, ext := range exts {
		path := filepath.Join(req.TargetDir, req.BaseName+ext)
		if _, err := os.Stat(path); err == nil {
			return &Result{
				Filename: req.BaseName + ext,
				Filepath: path,
				Kind:     req.Kind,
			}, nil
		}
	}
	return nil, fmt.Errorf("download: output file not found for %q", req.BaseName)
}
