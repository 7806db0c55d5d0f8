package driveidx_test

import (
	"testing"

	"drive-indexer/internal/driveidx"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"/", "/"},
		{"/Volumes/Archive/", "/Volumes/Archive"},
		{"/Volumes/Archive//", "/Volumes/Archive"},
		{"  /mnt/usb  ", "/mnt/usb"},
		{`E:\`, "E:/"},
		{"E:", "E:/"},
		{`E:\Footage\2021\`, "E:/Footage/2021"},
		{"relative/dir/", "relative/dir"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := driveidx.NormalizePath(tt.in); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		root, rel string
		want      string
	}{
		{"/Volumes/Archive", "Footage/a.mov", "/Volumes/Archive/Footage/a.mov"},
		{"/Volumes/Archive", "/Footage/a.mov", "/Volumes/Archive/Footage/a.mov"},
		{"/Volumes/Archive", "", "/Volumes/Archive"},
		{"E:/", "a.mov", "E:/a.mov"},
		{"/", "a.mov", "/a.mov"},
		{"", "a.mov", "a.mov"},
	}

	for _, tt := range tests {
		t.Run(tt.root+"+"+tt.rel, func(t *testing.T) {
			t.Parallel()
			if got := driveidx.JoinPath(tt.root, tt.rel); got != tt.want {
				t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.root, tt.rel, got, tt.want)
			}
		})
	}
}
