// Package service implements per-user audio upload and listing.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"soundvault/internal/audio/domain"
	audiorepo "soundvault/internal/audio/repository"
	"soundvault/internal/db/uow"
)

// Sentinel errors for audio service; handler maps them to HTTP status codes.
var (
	ErrConflict         = errors.New("file with this name already exists")
	ErrBadRequest       = errors.New("file name is required")
	ErrUnsupportedMedia = errors.New("unsupported audio format")
	ErrInternal         = errors.New("internal error")
)

// BlobStore persists file contents.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
}

// Upload is an incoming file: the client-side name, its declared content type and its body.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadResult names the stored file.
type UploadResult struct {
	FilenameOriginal string `json:"filename_original"`
	FilenameUnique   string `json:"filename_unique"`
}

// FileEntry is one item of a listing.
type FileEntry struct {
	Filepath         string `json:"filepath"`
	FilenameOriginal string `json:"filename_original"`
}

// Listing is the set of files owned by a user.
type Listing struct {
	UserID int64       `json:"user_id"`
	Files  []FileEntry `json:"files"`
}

// Service stores audio files and their metadata.
type Service struct {
	uow   uow.Runner
	blobs BlobStore
}

// NewService returns an audio service.
func NewService(runner uow.Runner, blobs BlobStore) *Service {
	return &Service{uow: runner, blobs: blobs}
}

// Upload stores file for the user under the name filenameCustom. The name must be unique per user.
// The client filename decides the extension and must carry a supported audio type.
func (s *Service) Upload(ctx context.Context, userID int64, filenameCustom string, file Upload) (*UploadResult, error) {
	if filenameCustom == "" {
		return nil, ErrBadRequest
	}
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		existing, err := repos.AudioFiles.GetByOriginalName(ctx, userID, filenameCustom)
		if err != nil {
			return fmt.Errorf("%w: lookup file: %w", ErrInternal, err)
		}
		if existing != nil {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, asInternal(err)
	}

	if file.Filename == "" {
		return nil, ErrBadRequest
	}
	if !domain.AllowedContentType(file.ContentType) || !domain.AllowedExtension(file.Filename) {
		return nil, ErrUnsupportedMedia
	}

	unique := uuid.NewString() + domain.Extension(file.Filename)
	path, err := s.blobs.Save(ctx, unique, file.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: save file: %w", ErrInternal, err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		return repos.AudioFiles.Create(ctx, &domain.AudioFile{
			UserID:           userID,
			FilenameOriginal: filenameCustom,
			FilenameUnique:   unique,
			Filepath:         path,
		})
	})
	if err != nil {
		_ = s.blobs.Remove(context.WithoutCancel(ctx), unique)
		if errors.Is(err, audiorepo.ErrDuplicateFile) {
			return nil, ErrConflict
		}
		return nil, asInternal(err)
	}
	return &UploadResult{FilenameOriginal: filenameCustom, FilenameUnique: unique}, nil
}

// List returns every file the user uploaded.
func (s *Service) List(ctx context.Context, userID int64) (*Listing, error) {
	out := &Listing{UserID: userID, Files: []FileEntry{}}
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		files, err := repos.AudioFiles.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, f := range files {
			out.Files = append(out.Files, FileEntry{Filepath: f.Filepath, FilenameOriginal: f.FilenameOriginal})
		}
		return nil
	})
	if err != nil {
		return nil, asInternal(err)
	}
	return out, nil
}

func asInternal(err error) error {
	if errors.Is(err, ErrInternal) || errors.Is(err, ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
