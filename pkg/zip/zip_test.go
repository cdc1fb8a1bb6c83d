package zip

import (
	stdzip "archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestArchiveAssetsRoundTrip(t *testing.T) {
	modified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assets := []Asset{
		{Filename: "source.jpg", MIME: "image/jpeg", Data: []byte("jpeg"), Modified: modified},
		{Filename: "notes.txt", MIME: "text/plain", Data: bytes.Repeat([]byte("a"), 1024), Modified: modified},
	}
	archive, err := ArchiveAssets(assets)
	if err != nil {
		t.Fatalf("ArchiveAssets returned error: %v", err)
	}

	zr, err := stdzip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != len(assets) {
		t.Fatalf("archive has %d files, want %d", len(zr.File), len(assets))
	}
	wantMethod := []uint16{stdzip.Store, stdzip.Deflate}
	for i, f := range zr.File {
		if f.Name != assets[i].Filename {
			t.Fatalf("file %d name = %q, want %q", i, f.Name, assets[i].Filename)
		}
		if f.Method != wantMethod[i] {
			t.Fatalf("file %s method = %d, want %d", f.Name, f.Method, wantMethod[i])
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !bytes.Equal(data, assets[i].Data) {
			t.Fatalf("file %s content mismatch", f.Name)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               ".jpg",
		"image/png":                ".png",
		"image/webp":               ".webp",
		"application/octet-stream": ".bin",
	}
	for mime, want := range tests {
		if got := Extension(mime); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", mime, got, want)
		}
	}
}
