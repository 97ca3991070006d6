// Package storage keeps mail attachments on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/welldanyogia/projecthub-backend/internal/logger"
	"github.com/welldanyogia/projecthub-backend/internal/models"
)

// Storage errors
var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrBlockedExt    = errors.New("file extension is blocked")
)

// Upload limits per mail
const (
	MaxFileSize    = 10 * 1024 * 1024
	MaxAttachments = 10
)

// Attachment folders, chosen by MIME type
const (
	FolderImages    = "images"
	FolderDocuments = "documents"
	FolderOthers    = "others"
)

// BlockedExtensions contains file extensions that are not allowed
var BlockedExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true,
	".pif": true, ".scr": true, ".vbs": true, ".js": true,
	".jar": true, ".ps1": true, ".sh": true, ".bash": true,
	".msi": true, ".dll": true, ".sys": true,
}

// Upload is one incoming attachment
type Upload struct {
	Name     string
	MimeType string
	Content  io.Reader
}

// FileStorage stores attachment bodies
type FileStorage interface {
	// Save writes the upload under a generated name and returns the unsaved
	// attachment row describing it
	Save(upload Upload) (models.Attachment, error)
	Open(filePath string) (io.ReadCloser, error)
	Delete(filePath string) error
}

// localStorage implements FileStorage on the local filesystem
type localStorage struct {
	basePath string
	security *logger.SecurityLogger
}

// NewLocalStorage creates the storage root and its folders
func NewLocalStorage(basePath string, security *logger.SecurityLogger) (FileStorage, error) {
	for _, folder := range []string{FolderImages, FolderDocuments, FolderOthers} {
		if err := os.MkdirAll(filepath.Join(basePath, folder), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &localStorage{basePath: basePath, security: security}, nil
}

// FolderFor picks the folder an attachment of the given MIME type goes to
func FolderFor(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FolderImages
	case strings.Contains(mimeType, "pdf"), strings.Contains(mimeType, "document"):
		return FolderDocuments
	default:
		return FolderOthers
	}
}

// ValidateFile checks file extension and size
func ValidateFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if BlockedExtensions[ext] {
		return ErrBlockedExt
	}

	if size > MaxFileSize {
		return ErrFileTooLarge
	}

	return nil
}

// validatePath ensures path is within basePath
func (s *localStorage) validatePath(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		s.security.PathTraversalAttempt("", s.basePath, filePath)
		return "", ErrPathTraversal
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, cleanPath))
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.security.PathTraversalAttempt("", s.basePath, filePath)
		return "", ErrPathTraversal
	}

	return absPath, nil
}

// Save stores an upload. Bodies over MaxFileSize are removed and rejected
// even when the caller under-reported the size.
func (s *localStorage) Save(upload Upload) (models.Attachment, error) {
	ext := strings.ToLower(filepath.Ext(upload.Name))
	if BlockedExtensions[ext] {
		return models.Attachment{}, ErrBlockedExt
	}

	name := uuid.NewString() + ext
	relPath := filepath.ToSlash(filepath.Join(FolderFor(upload.MimeType), name))
	fullPath := filepath.Join(s.basePath, relPath)

	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, io.LimitReader(upload.Content, MaxFileSize+1))
	if err != nil {
		os.Remove(fullPath)
		return models.Attachment{}, fmt.Errorf("failed to write file: %w", err)
	}
	if written > MaxFileSize {
		os.Remove(fullPath)
		return models.Attachment{}, ErrFileTooLarge
	}

	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	slog.Debug("attachment stored", slog.String("path", relPath), slog.Int64("size", written))

	return models.Attachment{
		OriginalName: upload.Name,
		FileName:     name,
		FilePath:     relPath,
		MimeType:     mimeType,
		FileSize:     written,
	}, nil
}

// Open retrieves a file by its relative path
func (s *localStorage) Open(filePath string) (io.ReadCloser, error) {
	fullPath, err := s.validatePath(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a file by its relative path. A missing file is not an error.
func (s *localStorage) Delete(filePath string) error {
	fullPath, err := s.validatePath(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
