package gcsuploader

import (
	"errors"
	"testing"
	"time"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{name: "nested object", uri: "gs://finwise-imports/imports/2026/march.csv", wantBucket: "finwise-imports", wantObject: "imports/2026/march.csv"},
		{name: "top level object", uri: "gs://bucket/file.csv", wantBucket: "bucket", wantObject: "file.csv"},
		{name: "missing scheme", uri: "bucket/file.csv", wantErr: true},
		{name: "bucket only", uri: "gs://bucket", wantErr: true},
		{name: "empty object", uri: "gs://bucket/", wantErr: true},
		{name: "empty bucket", uri: "gs:///file.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURI) {
					t.Fatalf("expected ErrInvalidURI, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
			if got := BuildGCSURI(bucket, object); got != tt.uri {
				t.Errorf("BuildGCSURI() = %q, want %q", got, tt.uri)
			}
		})
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/imports/march.csv", "march.csv"},
		{"gs://bucket/file.csv", "file.csv"},
		{"gs://bucket", "bucket"},
	}

	for _, tt := range tests {
		if got := ExtractFilenameFromGCSURI(tt.uri); got != tt.want {
			t.Errorf("ExtractFilenameFromGCSURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestImportObjectName(t *testing.T) {
	at := time.Date(2026, 1, 15, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	tests := []struct {
		filename string
		want     string
	}{
		{"march.csv", "imports/2026/01/15/abc-march.csv"},
		{"../../etc/march.csv", "imports/2026/01/15/abc-march.csv"},
		{`C:\Users\me\march.csv`, "imports/2026/01/15/abc-march.csv"},
		{"", "imports/2026/01/15/abc-upload.csv"},
	}

	for _, tt := range tests {
		if got := ImportObjectName("abc", tt.filename, at); got != tt.want {
			t.Errorf("ImportObjectName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
