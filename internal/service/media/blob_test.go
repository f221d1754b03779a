package media

import (
	"errors"
	"strings"
	"testing"
)

func TestBlobStorePutAndResolve(t *testing.T) {
	store := NewBlobStore(0)

	blob, err := store.Put("cat.png", "", strings.NewReader("\x89PNG\r\n\x1a\nrest"))
	if err != nil {
		t.Fatalf("Put err: %v", err)
	}
	if blob.ContentType != "image/png" {
		t.Fatalf("expected sniffed image/png, got %s", blob.ContentType)
	}
	if !strings.HasPrefix(blob.URL(), URLPrefix) {
		t.Fatalf("unexpected url: %s", blob.URL())
	}

	got, err := store.Resolve(blob.URL())
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if got.Name != "cat.png" {
		t.Fatalf("unexpected name: %s", got.Name)
	}
}

func TestBlobStoreLimits(t *testing.T) {
	store := NewBlobStore(4)

	if _, err := store.Put("big.bin", "", strings.NewReader("12345")); !errors.Is(err, ErrBlobTooLarge) {
		t.Fatalf("expected ErrBlobTooLarge, got %v", err)
	}
	if _, err := store.Put("empty.bin", "", strings.NewReader("")); !errors.Is(err, ErrEmptyBlob) {
		t.Fatalf("expected ErrEmptyBlob, got %v", err)
	}
	if _, err := store.Put("ok.bin", "text/plain", strings.NewReader("1234")); err != nil {
		t.Fatalf("expected blob at the limit to fit, got %v", err)
	}
}

func TestBlobStoreResolveUnknown(t *testing.T) {
	store := NewBlobStore(0)
	if _, err := store.Resolve("https://elsewhere/x"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
	if _, err := store.Get("missing"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestIsImage(t *testing.T) {
	if !IsImage("Photo.JPEG") || IsImage("voice.mp3") {
		t.Fatal("unexpected IsImage result")
	}
}
