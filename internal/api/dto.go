package api

import (
	"cliplib/internal/download"
	"cliplib/internal/folders"
	"cliplib/internal/library"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Folder DTOs

type FolderListResponse struct {
	Folders    []folders.Info `json:"folders"`
	Configured bool           `json:"configured"`
}

type CreateFolderRequest struct {
	Name string `json:"name"`
}

type RenameFolderRequest struct {
	NewName string `json:"new_name"`
}

type FolderResponse struct {
	Name string `json:"name"`
}

type DeleteFolderResponse struct {
	MovedFiles int `json:"moved_files"`
}

type MoveFileRequest struct {
	VideoID      string `json:"video_id"`
	Filename     string `json:"filename"`
	SourceFolder string `json:"source_folder"`
	TargetFolder string `json:"target_folder"`
}

type MoveFileResponse struct {
	Filename string `json:"filename"`
	Folder   string `json:"folder"`
}

// Library DTOs

type LibraryResponse struct {
	Items []library.Entry `json:"items"`
}

type ItemResponse struct {
	Item      *library.Entry `json:"item"`
	StreamURL string         `json:"stream_url"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

type UpdateTagsRequest struct {
	Tags []string `json:"tags"`
}

type UpdateItemRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Download DTOs

type SaveLinkRequest struct {
	URL    string `json:"url"`
	Folder string `json:"folder"`
}

type SaveLinkResponse struct {
	VideoID       string `json:"video_id"`
	AlreadyExists bool   `json:"already_exists"`
}

type StartDownloadRequest struct {
	URL        string `json:"url"`
	Type       string `json:"type"` // video or audio
	Resolution string `json:"resolution"`
	Bitrate    string `json:"bitrate"`
	Folder     string `json:"folder"`
}

type StartDownloadResponse struct {
	JobID   string `json:"job_id"`
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
}

type ProgressResponse struct {
	download.Snapshot
}

type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}
