package domain

import "testing"

func TestAllowedExtension(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"song.mp3", true},
		{"SONG.MP3", true},
		{"take.wav", true},
		{"a.ogg", true},
		{"b.aac", true},
		{"c.m4a", true},
		{"notes.txt", false},
		{"noext", false},
		{"archive.mp3.zip", false},
	}
	for _, tt := range tests {
		if got := AllowedExtension(tt.name); got != tt.want {
			t.Errorf("AllowedExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAllowedContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"", true},
		{"audio/mpeg", true},
		{"Audio/WAV", true},
		{"audio/x-m4a", true},
		{"text/plain", false},
		{"application/octet-stream", false},
	}
	for _, tt := range tests {
		if got := AllowedContentType(tt.ct); got != tt.want {
			t.Errorf("AllowedContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	if got := Extension("My Song.MP3"); got != ".mp3" {
		t.Errorf("Extension = %q, want .mp3", got)
	}
}
