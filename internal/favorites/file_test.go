package favorites

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := fs.Save(ctx, "acmeconf_favs", []string{"TALK-1", "TALK-2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := fs.Load(ctx, "acmeconf_favs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"TALK-1", "TALK-2"}) {
		t.Fatalf("round trip = %v", got)
	}
}

func TestFileStorageMissingKeyReadsEmpty(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := fs.Load(context.Background(), "never_saved")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestFileStorageMalformedFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := fs.Load(context.Background(), "broken")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty set for malformed file, got %v", got)
	}

	// The next save replaces the broken file outright.
	if err := fs.Save(context.Background(), "broken", []string{"TALK-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = fs.Load(context.Background(), "broken")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"TALK-1"}) {
		t.Fatalf("reload = %v", got)
	}
}

func TestFileStorageSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := fs.Save(ctx, "k", []string{"TALK-1", "TALK-2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := fs.Save(ctx, "k", []string{"TALK-3"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := fs.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"TALK-3"}) {
		t.Fatalf("overwrite = %v", got)
	}
}

func TestFileStorageNilSavesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := fs.Save(context.Background(), "k", nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "k.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected empty JSON array on disk, got %s", data)
	}
}

func TestFileStorageRequiresDirectory(t *testing.T) {
	if _, err := NewFileStorage(""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
