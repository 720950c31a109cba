package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cliplib/internal/cache"
	"cliplib/internal/download"
	"cliplib/internal/errs"
	"cliplib/internal/folders"
	"cliplib/internal/library"
	"cliplib/internal/media"
	"cliplib/internal/metadata"
	"cliplib/internal/streaming"
	"cliplib/internal/thumbs"
)

const Version = "0.1.0"

type Handler struct {
	folders    *folders.Store
	repo       *metadata.Repository
	index      *library.Index
	thumbs     *thumbs.Cache
	thumbCache *cache.LRU
	streamer   *streaming.Handler
	supervisor *download.Supervisor
	engine     download.Engine
	logger     zerolog.Logger
}

func NewHandler(
	store *folders.Store,
	repo *metadata.Repository,
	index *library.Index,
	thumbCache *thumbs.Cache,
	lru *cache.LRU,
	supervisor *download.Supervisor,
	engine download.Engine,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		folders:    store,
		repo:       repo,
		index:      index,
		thumbs:     thumbCache,
		thumbCache: lru,
		streamer:   streaming.NewHandler(logger),
		supervisor: supervisor,
		engine:     engine,
		logger:     logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: Version})
}

// Folder handlers

func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	infos, err := h.folders.List()
	if err != nil {
		h.writeStoreError(w, err, "failed to list folders")
		return
	}
	if infos == nil {
		infos = []folders.Info{}
	}
	writeJSON(w, http.StatusOK, FolderListResponse{
		Folders:    infos,
		Configured: h.folders.Configured(),
	})
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	name, err := h.folders.Create(req.Name)
	if err != nil {
		h.writeStoreError(w, err, "failed to create folder")
		return
	}
	writeJSON(w, http.StatusCreated, FolderResponse{Name: name})
}

func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req RenameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	name, err := h.folders.Rename(chi.URLParam(r, "name"), req.NewName)
	if err != nil {
		h.writeStoreError(w, err, "failed to rename folder")
		return
	}
	writeJSON(w, http.StatusOK, FolderResponse{Name: name})
}

func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	moved, err := h.folders.Delete(chi.URLParam(r, "name"))
	if err != nil {
		h.writeStoreError(w, err, "failed to delete folder")
		return
	}
	writeJSON(w, http.StatusOK, DeleteFolderResponse{MovedFiles: moved})
}

func (h *Handler) RenameDefaultFolder(w http.ResponseWriter, r *http.Request) {
	var req RenameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	name, err := h.folders.RenameDefault(req.NewName)
	if err != nil {
		h.writeStoreError(w, err, "failed to rename default folder")
		return
	}
	writeJSON(w, http.StatusOK, FolderResponse{Name: name})
}

// MoveFile moves a media file between folders and keeps the owning
// record's file reference in step.
func (h *Handler) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req MoveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	finalName, err := h.folders.MoveFile(req.Filename, req.SourceFolder, req.TargetFolder)
	if err != nil {
		h.writeStoreError(w, err, "failed to move file")
		return
	}

	if req.VideoID != "" {
		if kind, ok := media.KindOf(finalName); ok {
			if err := h.repo.AddFile(req.VideoID, kind, finalName, req.TargetFolder); err != nil {
				h.logger.Warn().Err(err).Str("video_id", req.VideoID).Msg("file moved but record update failed")
			}
		}
	}
	writeJSON(w, http.StatusOK, MoveFileResponse{Filename: finalName, Folder: req.TargetFolder})
}

// Library handlers

func (h *Handler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := h.index.Library(r.URL.Query().Get("folder"))
	if err != nil {
		h.writeStoreError(w, err, "failed to read library")
		return
	}
	if items == nil {
		items = []library.Entry{}
	}
	writeJSON(w, http.StatusOK, LibraryResponse{Items: items})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	entry, err := h.index.Item(videoID, r.URL.Query().Get("folder"))
	if err != nil {
		h.writeStoreError(w, err, "failed to read item")
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{
		Item:      entry,
		StreamURL: "/api/v1/library/" + videoID + "/stream",
	})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	err := h.repo.UpdateFields(chi.URLParam(r, "id"), metadata.FieldUpdates{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.writeStoreError(w, err, "failed to update item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateItemTags(w http.ResponseWriter, r *http.Request) {
	var req UpdateTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	if err := h.repo.UpdateTags(chi.URLParam(r, "id"), req.Tags); err != nil {
		h.writeStoreError(w, err, "failed to update tags")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteItem removes the record, all referenced files, and the thumbnail.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	entry, err := h.index.Item(videoID, "")
	if err != nil {
		h.writeStoreError(w, err, "failed to resolve item")
		return
	}

	for _, ref := range entry.Files {
		path := filepath.Join(h.folders.FolderPath(ref.Folder), ref.Filename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.logger.Warn().Err(err).Str("path", path).Msg("failed to remove media file")
		}
	}
	// Reconciled legacy file, not listed in the record.
	if len(entry.Files) == 0 && !entry.LinkOnly {
		if err := os.Remove(entry.Filepath); err != nil && !os.IsNotExist(err) {
			h.logger.Warn().Err(err).Str("path", entry.Filepath).Msg("failed to remove media file")
		}
	}

	if err := h.repo.Delete(videoID); err != nil {
		h.writeStoreError(w, err, "failed to delete record")
		return
	}
	if err := h.thumbs.Delete(videoID); err != nil && !errors.Is(err, errs.ErrNotFound) {
		h.logger.Warn().Err(err).Str("video_id", videoID).Msg("failed to delete thumbnail")
	}
	h.thumbCache.Delete(videoID)

	h.logger.Info().Str("video_id", videoID).Msg("item deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAllTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.index.AllTags()
	if err != nil {
		h.writeStoreError(w, err, "failed to collect tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// Streaming

func (h *Handler) StreamItem(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	if folder := r.URL.Query().Get("folder"); folder != "" {
		if _, err := h.index.Item(videoID, folder); err != nil {
			writeError(w, http.StatusNotFound, "MEDIA_NOT_FOUND", "Media not found")
			return
		}
	}
	prefer := media.KindVideo
	if r.URL.Query().Get("type") == "audio" {
		prefer = media.KindAudio
	}
	path, err := h.index.MediaPath(videoID, prefer)
	if err != nil {
		writeError(w, http.StatusNotFound, "MEDIA_NOT_FOUND", "Media not found")
		return
	}
	h.streamer.ServeFile(w, r, path)
}

// Thumbnails

func (h *Handler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	if data, ok := h.thumbCache.Get(videoID); ok {
		serveThumbnail(w, data)
		return
	}
	path, ok := h.thumbs.Path(videoID)
	if !ok {
		writeError(w, http.StatusNotFound, "THUMBNAIL_NOT_FOUND", "Thumbnail not available")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "THUMBNAIL_NOT_FOUND", "Thumbnail not available")
		return
	}
	h.thumbCache.Set(videoID, data)
	serveThumbnail(w, data)
}

func serveThumbnail(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Download handlers

// SaveLink persists a link-only record: metadata and thumbnail, no file.
func (h *Handler) SaveLink(w http.ResponseWriter, r *http.Request) {
	var req SaveLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "url is required")
		return
	}
	folder := req.Folder
	if folder == "" {
		folder = h.folders.DefaultFolder()
	}

	info, err := h.engine.FetchInfo(r.Context(), req.URL)
	if err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("info fetch failed")
		writeError(w, http.StatusBadGateway, "EXTRACTION_FAILED", "Could not get video information")
		return
	}

	videoID := info.ID
	if videoID == "" {
		videoID = metadata.DeriveID(req.URL)
	}
	if h.repo.Exists(videoID) {
		writeJSON(w, http.StatusOK, SaveLinkResponse{VideoID: videoID, AlreadyExists: true})
		return
	}

	item := itemFromInfo(info)
	if err := h.repo.Save(videoID, item, folder, "", ""); err != nil {
		h.writeStoreError(w, err, "failed to save record")
		return
	}
	if _, err := h.thumbs.Save(videoID, info.ThumbnailURL); err != nil {
		h.logger.Warn().Err(err).Str("video_id", videoID).Msg("thumbnail fetch failed")
	}

	writeJSON(w, http.StatusCreated, SaveLinkResponse{VideoID: videoID})
}

// StartDownload fetches item attributes, then launches the one-slot
// download job. On completion the record gains a file reference and the
// thumbnail is cached; a record saved earlier as link-only is upgraded in
// place.
func (h *Handler) StartDownload(w http.ResponseWriter, r *http.Request) {
	var req StartDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "url is required")
		return
	}
	kind := media.KindVideo
	if req.Type == "audio" {
		kind = media.KindAudio
	}
	folder := req.Folder
	if folder == "" {
		folder = h.folders.DefaultFolder()
	}
	targetDir := h.folders.FolderPath(folder)
	if fi, err := os.Stat(targetDir); err != nil || !fi.IsDir() {
		writeError(w, http.StatusNotFound, "FOLDER_NOT_FOUND", "Target folder does not exist")
		return
	}

	info, err := h.engine.FetchInfo(r.Context(), req.URL)
	if err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("info fetch failed")
		writeError(w, http.StatusBadGateway, "EXTRACTION_FAILED", "Could not get video information")
		return
	}
	videoID := info.ID
	if videoID == "" {
		videoID = metadata.DeriveID(req.URL)
	}

	// The job outlives this request; its context must not be the request's.
	job, err := h.supervisor.Start(context.Background(), download.Request{
		URL:        req.URL,
		Kind:       kind,
		Resolution: req.Resolution,
		Bitrate:    req.Bitrate,
		TargetDir:  targetDir,
		BaseName:   videoID,
	}, func(result *download.Result, err error) {
		if err != nil {
			return
		}
		h.recordDownload(videoID, info, folder, result)
	})
	if errors.Is(err, download.ErrBusy) {
		writeError(w, http.StatusConflict, "DOWNLOAD_BUSY", "A download is already in progress")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start download")
		return
	}

	writeJSON(w, http.StatusAccepted, StartDownloadResponse{
		JobID:   job.ID,
		VideoID: videoID,
		Status:  string(download.StatusStarting),
	})
}

func (h *Handler) recordDownload(videoID string, info *download.Info, folder string, result *download.Result) {
	if h.repo.Exists(videoID) {
		if err := h.repo.AddFile(videoID, result.Kind, result.Filename, folder); err != nil {
			h.logger.Error().Err(err).Str("video_id", videoID).Msg("failed to record file")
			return
		}
		if err := h.repo.MarkDownloaded(videoID); err != nil {
			h.logger.Warn().Err(err).Str("video_id", videoID).Msg("failed to clear link-only marker")
		}
	} else {
		item := itemFromInfo(info)
		if err := h.repo.Save(videoID, item, folder, result.Kind, result.Filename); err != nil {
			h.logger.Error().Err(err).Str("video_id", videoID).Msg("failed to save record")
			return
		}
	}
	if _, err := h.thumbs.Save(videoID, info.ThumbnailURL); err != nil {
		h.logger.Warn().Err(err).Str("video_id", videoID).Msg("thumbnail fetch failed")
	}
}

func (h *Handler) DownloadProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProgressResponse{Snapshot: h.supervisor.Progress()})
}

func (h *Handler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CancelResponse{Cancelled: h.supervisor.Cancel()})
}

// itemFromInfo converts the engine's attribute bag into a record.
func itemFromInfo(info *download.Info) *metadata.Item {
	tags := info.Tags
	if len(tags) == 0 {
		tags = metadata.ExtractHashtags(info.Description)
	}
	return &metadata.Item{
		Title:        info.Title,
		Channel:      info.Channel,
		ChannelURL:   info.ChannelURL,
		Platform:     metadata.DetectPlatform(info.URL),
		Duration:     info.Duration,
		DurationStr:  metadata.FormatDuration(info.Duration),
		UploadDate:   info.UploadDate,
		ViewCount:    info.ViewCount,
		Description:  info.Description,
		ThumbnailURL: info.ThumbnailURL,
		Tags:         metadata.NormalizeTags(tags),
		URL:          info.URL,
	}
}

// Helpers

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, errs.ErrCollision):
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", logMsg)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}
