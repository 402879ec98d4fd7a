package codex

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codex-storage/go-codex/errors"
)

func TestUploadChunksSequentially(t *testing.T) {
	lib := newFakeLib()
	ctx := context.Background()
	n := newTestNode(t, lib)
	defer n.Close(ctx)

	data := []byte("twelve bytes")
	cid, err := n.Upload(ctx, bytes.NewReader(data), UploadOptions{Filename: "notes.txt", ChunkSize: 5})
	if err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	if cid == "" {
		t.Error("Upload() returned an empty cid")
	}

	var got []byte
	for _, chunk := range lib.uploadedChunks {
		got = append(got, chunk...)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("uploaded %q, want %q", got, data)
	}
	if len(lib.uploadedChunks) != 3 {
		t.Errorf("uploaded %d chunks, want 3", len(lib.uploadedChunks))
	}

	want := []string{"new", "upload.init", "upload.chunk", "upload.chunk", "upload.chunk", "upload.finalize"}
	if got := lib.callNames(); !equalStrings(got, want) {
		t.Errorf("call order = %v, want %v", got, want)
	}
}

func TestUploadEmptyContent(t *testing.T) {
	lib := newFakeLib()
	ctx := context.Background()
	n := newTestNode(t, lib)
	defer n.Close(ctx)

	if _, err := n.Upload(ctx, bytes.NewReader(nil), UploadOptions{}); err != nil {
		t.Fatalf("Upload() of empty content = %v", err)
	}
	if got := lib.callCount("upload.chunk"); got != 0 {
		t.Errorf("empty upload issued %d chunks", got)
	}
	if got := lib.callCount("upload.finalize"); got != 1 {
		t.Errorf("empty upload finalized %d times, want 1", got)
	}
}

func TestUploadNilReader(t *testing.T) {
	lib := newFakeLib()
	ctx := context.Background()
	n := newTestNode(t, lib)
	defer n.Close(ctx)

	if _, err := n.Upload(ctx, nil, UploadOptions{}); !errors.IsKind(err, errors.KindInvalidParameter) {
		t.Errorf("Upload(nil) = %v, want invalid parameter", err)
	}
	if got := lib.callCount("upload.init"); got != 0 {
		t.Errorf("nil reader opened %d sessions", got)
	}
}

type failingReader struct {
	data []byte
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, fmt.Errorf("disk pulled")
}

func TestUploadReaderFailureCancelsSession(t *testing.T) {
	lib := newFakeLib()
	ctx := context.Background()
	n := newTestNode(t, lib)
	defer n.Close(ctx)

	_, err := n.Upload(ctx, &failingReader{data: []byte("partial")}, UploadOptions{})
	if err == nil {
		t.Fatal("Upload() with failing reader succeeded")
	}
	if got := lib.callCount("upload.cancel"); got != 1 {
		t.Errorf("cancel issued %d times, want 1", got)
	}
	if got := lib.callCount("upload.finalize"); got != 0 {
		t.Errorf("failed upload finalized %d times", got)
	}
}

func TestUploadChunkFailureCancelsSession(t *testing.T) {
	lib := newFakeLib()
	lib.script("upload.chunk", 1, "repo full")
	ctx := context.Background()
	n := newTestNode(t, lib)
	defer n.Close(ctx)

	_, err := n.Upload(ctx, strings.NewReader("data"), UploadOptions{})
	if !errors.IsNative(err) {
		t.Fatalf("Upload() = %v, want native failure", err)
	}
	if got := lib.callCount("upload.cancel"); got != 1 {
		t.Errorf("cancel issued %d times, want 1", got)
	}
}

func TestUploadFileRecordsBaseName(t *testing.T) {
	lib := newFakeLib()
	ctx := context.Background()
	n := newTestNode(t, lib)
	defer n.Close(ctx)

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := n.UploadFile(ctx, path, UploadOptions{}); err != nil {
		t.Fatalf("UploadFile() = %v", err)
	}
	if got := lib.lastUploadFilename(); got != "report.pdf" {
		t.Errorf("recorded filename = %q, want %q", got, "report.pdf")
	}

	if _, err := n.UploadFile(ctx, path, UploadOptions{Filename: "renamed.pdf"}); err != nil {
		t.Fatalf("UploadFile() with override = %v", err)
	}
	if got := lib.lastUploadFilename(); got != "renamed.pdf" {
		t.Errorf("recorded filename = %q, want %q", got, "renamed.pdf")
	}

	if _, err := n.UploadFile(ctx, filepath.Join(t.TempDir(), "absent"), UploadOptions{}); err == nil {
		t.Error("UploadFile() of a missing file succeeded")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
