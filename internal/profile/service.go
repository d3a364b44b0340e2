// Package profile manages the user's display profile: full name and
// avatar. Rows are keyed by the auth user id and merged on save, so a
// partial update never clears the other columns' local values.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/remote"
)

var (
	ErrNoUploader = errors.New("avatar upload is not supported by this backend")
	ErrEmptyName  = errors.New("full name cannot be empty")
)

type Service struct {
	store    remote.ProfileStore
	uploader remote.AvatarUploader
}

// NewService builds a profile service. The uploader may be nil for
// backends without object storage; AttachAvatar then reports ErrNoUploader.
func NewService(store remote.ProfileStore, uploader remote.AvatarUploader) *Service {
	return &Service{store: store, uploader: uploader}
}

func (s *Service) Get(ctx context.Context, userID string) (remote.Profile, error) {
	if userID == "" {
		return remote.Profile{}, core.ErrMissingUser
	}
	return s.store.FetchProfile(ctx, userID)
}

// SetFullName saves the display name, preserving the current avatar.
func (s *Service) SetFullName(ctx context.Context, userID, fullName string) (remote.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return remote.Profile{}, ErrEmptyName
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return remote.Profile{}, err
	}
	current.FullName = &fullName
	return s.save(ctx, current)
}

// AttachAvatar uploads the image and points the profile at its public
// URL. The object path is scoped under the user id so uploads from other
// accounts can never collide.
func (s *Service) AttachAvatar(ctx context.Context, userID, filename, contentType string, data []byte) (remote.Profile, error) {
	if s.uploader == nil {
		return remote.Profile{}, ErrNoUploader
	}
	if userID == "" {
		return remote.Profile{}, core.ErrMissingUser
	}
	if len(data) == 0 {
		return remote.Profile{}, fmt.Errorf("avatar image is empty")
	}

	path := fmt.Sprintf("%s/%d-%s", userID, time.Now().Unix(), filename)
	publicURL, err := s.uploader.UploadAvatar(ctx, path, contentType, data)
	if err != nil {
		return remote.Profile{}, fmt.Errorf("upload avatar: %w", err)
	}

	slog.InfoContext(ctx, "Avatar uploaded",
		applog.FieldComponent, applog.ComponentProfile,
		applog.FieldOperation, applog.OpUpload,
		applog.FieldUserID, userID)

	current, err := s.Get(ctx, userID)
	if err != nil {
		return remote.Profile{}, err
	}
	current.AvatarURL = &publicURL
	return s.save(ctx, current)
}

func (s *Service) save(ctx context.Context, p remote.Profile) (remote.Profile, error) {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return remote.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}
