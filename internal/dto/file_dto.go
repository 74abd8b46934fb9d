package dto

import "github.com/ahmetcoskunkizilkaya/filevault/internal/models"

type FileListResponse struct {
	Files       []models.File `json:"files"`
	Total       int64         `json:"total"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
}
