package hdf5

import (
	"errors"
	"testing"
)

func buildWalkFile(t *testing.T) *File {
	return writeAndReopen(t, func(f *File) {
		if err := f.Root().SetAttr("title", "root"); err != nil {
			t.Fatalf("SetAttr failed: %v", err)
		}
		g1, err := f.Root().CreateGroup("g1")
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if err := g1.SetAttr("user", "alice"); err != nil {
			t.Fatalf("SetAttr failed: %v", err)
		}
		if _, err := g1.CreateDataset("ds1", []float32{1, 2, 3, 4}, WithShape(2, 2)); err != nil {
			t.Fatalf("CreateDataset failed: %v", err)
		}
		g2, err := f.Root().CreateGroup("g2")
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if err := g2.SetAttr("mdKeys", []string{"k1", "k2"}); err != nil {
			t.Fatalf("SetAttr failed: %v", err)
		}
	})
}

func TestWalk(t *testing.T) {
	f := buildWalkFile(t)

	var paths []string
	var kinds []string
	err := Walk(f.Root(), func(path string, obj interface{}, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		switch obj.(type) {
		case *Group:
			kinds = append(kinds, "group")
		case *Dataset:
			kinds = append(kinds, "dataset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	wantPaths := []string{"/", "/g1", "/g1/ds1", "/g2"}
	wantKinds := []string{"group", "group", "dataset", "group"}
	if len(paths) != len(wantPaths) {
		t.Fatalf("Expected %v, got %v", wantPaths, paths)
	}
	for i := range wantPaths {
		if paths[i] != wantPaths[i] || kinds[i] != wantKinds[i] {
			t.Errorf("Entry %d: expected %s (%s), got %s (%s)", i, wantPaths[i], wantKinds[i], paths[i], kinds[i])
		}
	}
}

func TestWalkStop(t *testing.T) {
	f := buildWalkFile(t)

	stop := errors.New("stop")
	count := 0
	err := Walk(f.Root(), func(path string, obj interface{}, err error) error {
		count++
		if path == "/g1" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Expected stop error, got %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 visits before stopping, got %d", count)
	}
}

func TestWalkAttrs(t *testing.T) {
	f := buildWalkFile(t)

	var infos []AttrInfo
	err := f.WalkAttrs(func(info AttrInfo) error {
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkAttrs failed: %v", err)
	}

	if len(infos) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(infos))
	}

	tests := []struct {
		path       string
		objectPath string
		objectType string
		name       string
	}{
		{"/@title", "/", "group", "title"},
		{"/g1@user", "/g1", "group", "user"},
		{"/g2@mdKeys", "/g2", "group", "mdKeys"},
	}
	for i, tt := range tests {
		info := infos[i]
		if info.Path != tt.path || info.ObjectPath != tt.objectPath ||
			info.ObjectType != tt.objectType || info.Name != tt.name {
			t.Errorf("Attribute %d: expected %+v, got path=%s object=%s type=%s name=%s",
				i, tt, info.Path, info.ObjectPath, info.ObjectType, info.Name)
		}
		if info.Err != nil {
			t.Errorf("Attribute %d: unexpected error %v", i, info.Err)
		}
	}

	if v, ok := infos[1].Value.(string); !ok || v != "alice" {
		t.Errorf("user: expected 'alice', got %v (%T)", infos[1].Value, infos[1].Value)
	}
	keys, ok := infos[2].Value.([]string)
	if !ok || len(keys) != 2 || keys[0] != "k1" || keys[1] != "k2" {
		t.Errorf("mdKeys: expected [k1 k2], got %v (%T)", infos[2].Value, infos[2].Value)
	}
}

func TestWalkAttrsClosed(t *testing.T) {
	f := buildWalkFile(t)
	f.Close()

	if err := f.WalkAttrs(func(AttrInfo) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestWalkEntersSharedGroupOnce(t *testing.T) {
	f, err := Open(legacyFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	var paths []string
	err = Walk(f.Root(), func(path string, obj any, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	// "alias" sorts first and is a soft link to "/sample".
	want := []string{"/", "/alias", "/alias/ds"}
	if len(paths) != len(want) {
		t.Fatalf("Expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, want[i], paths[i])
		}
	}
}
