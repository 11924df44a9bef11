package hdf5

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// tempPath returns a path for a new file inside a per-test directory.
func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestCreate(t *testing.T) {
	testFile := tempPath(t, "test.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !f.Writable() {
		t.Error("File should be writable")
	}
	if f.Root() == nil {
		t.Fatal("Root group should not be nil")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	if f2.Writable() {
		t.Error("Opened file should be read-only")
	}
	if f2.Version() < 2 {
		t.Errorf("Expected superblock version >= 2, got %d", f2.Version())
	}
	members, err := f2.Root().Members()
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("Expected empty root, got %v", members)
	}
}

func TestCreateWithOptions(t *testing.T) {
	testFile := tempPath(t, "test_options.h5")

	f, err := Create(testFile, WithAddressSize(4))
	if err != nil {
		t.Fatalf("Create with options failed: %v", err)
	}
	if f.superblock.OffsetSize != 4 {
		t.Errorf("Expected offset size 4, got %d", f.superblock.OffsetSize)
	}
	if f.superblock.LengthSize != 4 {
		t.Errorf("Expected length size 4, got %d", f.superblock.LengthSize)
	}
	if _, err := f.Root().CreateDataset("x", []int16{1, 2}); err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	if f2.superblock.OffsetSize != 4 {
		t.Errorf("Expected offset size 4 after reopen, got %d", f2.superblock.OffsetSize)
	}
	ds, err := f2.OpenDataset("x")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	var got []int16
	if err := ds.Read(&got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected [1 2], got %v", got)
	}
}

func TestCreateTruncates(t *testing.T) {
	testFile := tempPath(t, "test_truncate.h5")
	if err := os.WriteFile(testFile, []byte("previous contents that are not HDF5"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open after truncating create failed: %v", err)
	}
	f2.Close()
}

func TestCreateExclusive(t *testing.T) {
	testFile := tempPath(t, "test_exclusive.h5")

	f, err := Create(testFile, WithExclusive())
	if err != nil {
		t.Fatalf("Create on fresh path failed: %v", err)
	}
	f.Close()

	_, err = Create(testFile, WithExclusive())
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Expected fs.ErrExist, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	f, err := Create(tempPath(t, "test_close.h5"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := f.OpenGroup("anything"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestOpenNotHDF5(t *testing.T) {
	testFile := tempPath(t, "not.h5")
	if err := os.WriteFile(testFile, []byte("This is not an HDF5 file"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(testFile)
	if !errors.Is(err, ErrNotHDF5) {
		t.Errorf("Expected ErrNotHDF5, got %v", err)
	}
}

func TestOpenNotExists(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.h5"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	testFile := tempPath(t, "test_ro.h5")
	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	if _, err := f2.Root().CreateGroup("g"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("CreateGroup: expected ErrReadOnly, got %v", err)
	}
	if err := f2.Root().SetAttr("a", "b"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SetAttr: expected ErrReadOnly, got %v", err)
	}
	if _, err := f2.Root().CreateDataset("d", []int8{1}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("CreateDataset: expected ErrReadOnly, got %v", err)
	}
}
