// Package streaming serves raw media files with single-range HTTP
// semantics for seekable playback. It knows nothing about metadata
// records; callers hand it a resolved file path.
package streaming

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"cliplib/internal/errs"
	"cliplib/internal/media"
)

const chunkSize = 8192

// Descriptor is the computed response plan for one request: size, MIME
// type, and the byte window to serve.
type Descriptor struct {
	Size        int64
	ContentType string
	IsRange     bool
	Start       int64
	End         int64
	Length      int64
}

// Resolve computes the descriptor for a file and an optional Range header.
// A missing file reports ErrNotFound as a value so callers can map it to a
// 404 without special-casing.
func Resolve(path, rangeHeader string) (*Descriptor, error) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: media file", errs.ErrNotFound)
	}

	d := &Descriptor{
		Size:        fi.Size(),
		ContentType: media.ContentType(path),
		Start:       0,
		End:         fi.Size() - 1,
		Length:      fi.Size(),
	}
	if rangeHeader == "" {
		return d, nil
	}

	start, end, err := parseRange(rangeHeader, fi.Size())
	if err != nil {
		return nil, err
	}
	d.IsRange = true
	d.Start = start
	d.End = end
	d.Length = end - start + 1
	return d, nil
}

// parseRange handles the single-range form bytes=<start>-<end>. A missing
// start defaults to 0 and a missing end to size-1. Multi-range requests
// are not supported.
func parseRange(header string, size int64) (start, end int64, err error) {
	spec := strings.TrimPrefix(header, "bytes=")
	parts := strings.SplitN(spec, "-", 2)

	start = 0
	end = size - 1
	if parts[0] != "" {
		start, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: malformed range %q", errs.ErrValidation, header)
		}
	}
	if len(parts) > 1 && parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: malformed range %q", errs.ErrValidation, header)
		}
	}
	if start < 0 || start > end || end >= size {
		return 0, 0, fmt.Errorf("%w: unsatisfiable range %q", errs.ErrValidation, header)
	}
	return start, end, nil
}

// Handler writes media responses. Each request opens its own file handle,
// so streams are unaffected by concurrent metadata writes.
type Handler struct {
	logger zerolog.Logger
}

func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger.With().Str("component", "streaming").Logger()}
}

// ServeFile streams the file, honoring a Range header with a 206 partial
// response. The body is copied in fixed-size chunks totaling exactly the
// computed length; a client disconnect simply stops the copy.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request, path string) {
	d, err := Resolve(path, r.Header.Get("Range"))
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			http.Error(w, "Invalid range", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "Cannot read file", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(d.Length, 10))

	status := http.StatusOK
	if d.IsRange {
		status = http.StatusPartialContent
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", d.Start, d.End, d.Size))
	}
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := file.Seek(d.Start, io.SeekStart); err != nil {
		return
	}
	if err := copyChunks(w, file, d.Length); err != nil {
		// Broken pipe on seek/close from the player is routine.
		h.logger.Debug().Err(err).Str("path", path).Msg("stream aborted")
	}
}

func copyChunks(w io.Writer, src io.Reader, length int64) error {
	buf := make([]byte, chunkSize)
	remaining := length
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := src.Read(buf[:n])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return werr
			}
			remaining -= int64(read)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}
