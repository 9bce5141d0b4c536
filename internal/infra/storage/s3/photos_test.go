package s3

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestObjectURLAndHost(t *testing.T) {
	if got := objectURL("http://cdn.local/", "photos", "/properties/p-1/a.jpg"); got != "http://cdn.local/photos/properties/p-1/a.jpg" {
		t.Fatalf("objectURL = %s", got)
	}
	for in, want := range map[string]string{
		"http://minio:9000": "minio:9000",
		"minio:9000":        "minio:9000",
		"https://s3.aws":    "s3.aws",
	} {
		if got := hostOf(in); got != want {
			t.Fatalf("hostOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewPhotoStoreValidatesConfig(t *testing.T) {
	if _, err := NewPhotoStore(Config{Bucket: "b"}, nil); err == nil {
		t.Fatal("expected endpoint error")
	}
	if _, err := NewPhotoStore(Config{Endpoint: "http://minio:9000"}, nil); err == nil {
		t.Fatal("expected bucket error")
	}
	store, err := NewPhotoStore(Config{Endpoint: "http://minio:9000", Bucket: "b"}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.publicURL != "http://minio:9000" {
		t.Fatalf("public url should default to endpoint, got %s", store.publicURL)
	}
	if _, err := store.Upload(context.Background(), " / ", strings.NewReader("x"), "image/png"); err == nil {
		t.Fatal("expected key error")
	}
}

func TestDisabledRejectsUploads(t *testing.T) {
	if _, err := (Disabled{}).Upload(context.Background(), "k", strings.NewReader("x"), ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
