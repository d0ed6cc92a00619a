package storage

import (
	"testing"

	"github.com/google/uuid"
)

func TestArchiveKey(t *testing.T) {
	id := uuid.MustParse("6f1c1a52-8e0e-4a43-9d8c-1d3e0b5c7a11")
	cases := map[string]string{
		".wav": "calls/6f1c1a52-8e0e-4a43-9d8c-1d3e0b5c7a11.wav",
		"MP3":  "calls/6f1c1a52-8e0e-4a43-9d8c-1d3e0b5c7a11.mp3",
		"":     "calls/6f1c1a52-8e0e-4a43-9d8c-1d3e0b5c7a11",
	}
	for ext, want := range cases {
		if got := ArchiveKey(id, ext); got != want {
			t.Errorf("ArchiveKey(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestAudioContentType(t *testing.T) {
	for _, ext := range []string{".wav", ".mp3", ".m4a", ".flac", ".ogg"} {
		if ct := AudioContentType(ext); ct == "application/octet-stream" {
			t.Errorf("expected audio content type for %s", ext)
		}
	}
	if ct := AudioContentType(".bin"); ct != "application/octet-stream" {
		t.Errorf("unexpected content type %q for .bin", ct)
	}
}
