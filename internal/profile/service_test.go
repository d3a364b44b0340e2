package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"saldo/internal/core"
	"saldo/internal/remote"
	"saldo/internal/remote/memory"
)

type fakeUploader struct {
	lastPath        string
	lastContentType string
	err             error
}

func (f *fakeUploader) UploadAvatar(_ context.Context, path, contentType string, _ []byte) (string, error) {
	f.lastPath = path
	f.lastContentType = contentType
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example/avatars/" + path, nil
}

func TestGetFreshProfileIsEmptyRow(t *testing.T) {
	s := NewService(memory.New(), nil)
	got, err := s.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "u1" || got.FullName != nil || got.AvatarURL != nil {
		t.Fatalf("fresh profile = %+v", got)
	}
}

func TestGetWithoutUser(t *testing.T) {
	s := NewService(memory.New(), nil)
	if _, err := s.Get(context.Background(), ""); !errors.Is(err, core.ErrMissingUser) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetFullName(t *testing.T) {
	store := memory.New()
	s := NewService(store, nil)

	got, err := s.SetFullName(context.Background(), "u1", "  Mario Rossi  ")
	if err != nil {
		t.Fatalf("set full name: %v", err)
	}
	if got.FullName == nil || *got.FullName != "Mario Rossi" {
		t.Fatalf("full name = %v, want trimmed", got.FullName)
	}
	if got.UpdatedAt == "" {
		t.Fatalf("updated_at not stamped")
	}

	if _, err := s.SetFullName(context.Background(), "u1", "   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("blank name err = %v", err)
	}
}

func TestSetFullNamePreservesAvatar(t *testing.T) {
	store := memory.New()
	url := "https://cdn.example/a.png"
	if err := store.UpsertProfile(context.Background(), remote.Profile{ID: "u1", AvatarURL: &url}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewService(store, nil)
	got, err := s.SetFullName(context.Background(), "u1", "Mario")
	if err != nil {
		t.Fatalf("set full name: %v", err)
	}
	if got.AvatarURL == nil || *got.AvatarURL != url {
		t.Fatalf("avatar lost on name change: %+v", got)
	}
}

func TestAttachAvatar(t *testing.T) {
	store := memory.New()
	up := &fakeUploader{}
	s := NewService(store, up)

	got, err := s.AttachAvatar(context.Background(), "u1", "me.png", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("attach avatar: %v", err)
	}
	if !strings.HasPrefix(up.lastPath, "u1/") || !strings.HasSuffix(up.lastPath, "-me.png") {
		t.Errorf("object path = %q, want user-scoped", up.lastPath)
	}
	if up.lastContentType != "image/png" {
		t.Errorf("content type = %q", up.lastContentType)
	}
	if got.AvatarURL == nil || !strings.Contains(*got.AvatarURL, up.lastPath) {
		t.Errorf("avatar url = %v", got.AvatarURL)
	}

	stored, _ := store.FetchProfile(context.Background(), "u1")
	if stored.AvatarURL == nil {
		t.Errorf("avatar url not persisted")
	}
}

func TestAttachAvatarWithoutUploader(t *testing.T) {
	s := NewService(memory.New(), nil)
	if _, err := s.AttachAvatar(context.Background(), "u1", "me.png", "image/png", []byte{1}); !errors.Is(err, ErrNoUploader) {
		t.Fatalf("err = %v", err)
	}
}

func TestAttachAvatarUploadFailureLeavesProfile(t *testing.T) {
	store := memory.New()
	up := &fakeUploader{err: errors.New("bucket gone")}
	s := NewService(store, up)

	if _, err := s.AttachAvatar(context.Background(), "u1", "me.png", "image/png", []byte{1}); err == nil {
		t.Fatalf("expected upload error")
	}
	stored, _ := store.FetchProfile(context.Background(), "u1")
	if stored.AvatarURL != nil {
		t.Fatalf("profile updated despite failed upload")
	}
}
