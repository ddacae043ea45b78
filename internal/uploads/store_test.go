package uploads

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["files"][0]
}

func TestSave(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	f, err := store.Save(fileHeader(t, "proof.png", "not really a png"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if f.DisplayName != "proof.png" {
		t.Errorf("expected display name proof.png, got %q", f.DisplayName)
	}
	if !strings.HasSuffix(f.StorageName, ".png") {
		t.Errorf("expected .png storage name, got %q", f.StorageName)
	}
	if f.Path != "/uploads/"+f.StorageName {
		t.Errorf("unexpected path %q", f.Path)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), f.StorageName))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "not really a png" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestSave_HostileFilename(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	f, err := store.Save(fileHeader(t, "../../etc/passwd", "x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.Contains(f.StorageName, "/") || strings.Contains(f.StorageName, "..") {
		t.Errorf("storage name must not contain path parts: %q", f.StorageName)
	}
	if f.DisplayName != "passwd" {
		t.Errorf("expected base name passwd, got %q", f.DisplayName)
	}
}

func TestSafeExt(t *testing.T) {
	cases := map[string]string{
		"report.pdf":         ".pdf",
		"photo.JPG":          ".jpg",
		"archive.tar.gz":     ".gz",
		"noext":              "",
		"trick.p%f":          "",
		"weird.averylongext": "",
	}
	for name, want := range cases {
		if got := safeExt(name); got != want {
			t.Errorf("safeExt(%q) = %q, want %q", name, got, want)
		}
	}
}
