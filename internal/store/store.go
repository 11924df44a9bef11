// Package store adapts the HDF5 engine to the primitives the dotTHz codec
// needs: top-level groups, string attributes and typed N-D datasets.
// Every failure is reported as an *Error carrying one of the error kinds.
package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/robert-malhotra/go-dotthz/internal/hdf5"
)

// File is an open container, either created for writing or opened read-only.
type File struct {
	h5   *hdf5.File
	path string
}

// Create creates a container at path. An existing file is truncated when
// overwrite is set; otherwise Create fails with ErrIO.
func Create(path string, overwrite bool) (*File, error) {
	var opts []hdf5.FileOption
	if !overwrite {
		opts = append(opts, hdf5.WithExclusive())
	}
	f, err := hdf5.Create(path, opts...)
	if err != nil {
		return nil, newError("create", path, "", ErrIO, err)
	}
	return &File{h5: f, path: path}, nil
}

// Open opens an existing container for reading.
func Open(path string) (*File, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, newError("open", path, "", classify(err, ErrFormat), err)
	}
	return &File{h5: f, path: path}, nil
}

// Path returns the path the container was created or opened with.
func (f *File) Path() string {
	return f.path
}

// Close releases the file. Closing twice is a no-op.
func (f *File) Close() error {
	if err := f.h5.Close(); err != nil {
		return newError("close", f.path, "", ErrIO, err)
	}
	return nil
}

// Groups lists the top-level groups in storage order. Anything else at the
// root, datasets or attributes of the root group itself, is a format error.
func (f *File) Groups() ([]string, error) {
	if attrs := f.h5.Root().Attrs(); len(attrs) > 0 {
		return nil, newError("list groups", f.path, "", ErrFormat,
			fmt.Errorf("attribute %q on the root group cannot be represented", attrs[0]))
	}
	members, err := f.h5.Root().Members()
	if err != nil {
		return nil, newError("list groups", f.path, "", classify(err, ErrFormat), err)
	}
	for _, name := range members {
		if _, err := f.h5.Root().OpenGroup(name); err != nil {
			return nil, newError("list groups", f.path, name, classify(err, ErrFormat), err)
		}
	}
	return members, nil
}

// CreateGroup creates a top-level group.
func (f *File) CreateGroup(name string) (*Group, error) {
	if err := checkName(name); err != nil {
		return nil, newError("create group", f.path, name, ErrFormat, err)
	}
	g, err := f.h5.Root().CreateGroup(name)
	if err != nil {
		return nil, newError("create group", f.path, name, classify(err, ErrIO), err)
	}
	return &Group{file: f, name: name, g: g}, nil
}

// OpenGroup opens a top-level group of a container opened for reading.
func (f *File) OpenGroup(name string) (*Group, error) {
	g, err := f.h5.Root().OpenGroup(name)
	if err != nil {
		return nil, newError("open group", f.path, name, classify(err, ErrIO), err)
	}
	return &Group{file: f, name: name, g: g}, nil
}

// Group is a top-level group of a container.
type Group struct {
	file *File
	name string
	g    *hdf5.Group
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

func (g *Group) fail(op, object string, kind, err error) error {
	if object == "" {
		object = g.name
	} else {
		object = g.name + "/" + object
	}
	return newError(op, g.file.path, object, kind, err)
}

// WriteAttr stores a string or []string attribute under key.
func (g *Group) WriteAttr(key string, value any) error {
	switch v := value.(type) {
	case string:
		if strings.ContainsRune(v, 0) {
			return g.fail("write attribute", key, ErrType, errors.New("string contains NUL"))
		}
	case []string:
		for _, s := range v {
			if strings.ContainsRune(s, 0) {
				return g.fail("write attribute", key, ErrType, errors.New("string contains NUL"))
			}
		}
	default:
		return g.fail("write attribute", key, ErrType, fmt.Errorf("value of type %T", value))
	}
	if err := g.g.SetAttr(key, value); err != nil {
		return g.fail("write attribute", key, classify(err, ErrIO), err)
	}
	return nil
}

// Attrs lists the attribute names of the group in storage order.
func (g *Group) Attrs() []string {
	return g.g.Attrs()
}

// ReadAttr reads a string attribute. Scalars come back as string, 1-D
// arrays as []string.
func (g *Group) ReadAttr(key string) (any, error) {
	a := g.g.Attr(key)
	if a == nil {
		return nil, g.fail("read attribute", key, ErrNotFound, nil)
	}
	if !a.IsString() {
		return nil, g.fail("read attribute", key, ErrType, errors.New("not a string attribute"))
	}
	if a.IsScalar() {
		s, err := a.ReadScalarString()
		if err != nil {
			return nil, g.fail("read attribute", key, ErrFormat, err)
		}
		return s, nil
	}
	vals, err := a.ReadString()
	if err != nil {
		return nil, g.fail("read attribute", key, ErrFormat, err)
	}
	if vals == nil {
		vals = []string{}
	}
	return vals, nil
}

// ReadString reads a scalar string attribute. A one-element array is
// accepted as well.
func (g *Group) ReadString(key string) (string, error) {
	v, err := g.ReadAttr(key)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case []string:
		if len(v) == 1 {
			return v[0], nil
		}
	}
	return "", g.fail("read attribute", key, ErrType, errors.New("not a scalar string"))
}

// ReadStrings reads a string array attribute. A scalar reads as a
// one-element slice.
func (g *Group) ReadStrings(key string) ([]string, error) {
	v, err := g.ReadAttr(key)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	return v.([]string), nil
}

// AttrValue reads an attribute of any type the engine understands.
func (g *Group) AttrValue(key string) (any, error) {
	a := g.g.Attr(key)
	if a == nil {
		return nil, g.fail("read attribute", key, ErrNotFound, nil)
	}
	v, err := a.Value()
	if err != nil {
		return nil, g.fail("read attribute", key, ErrType, err)
	}
	return v, nil
}

// Datasets lists the datasets of the group in storage order. Nested groups
// are a format error.
func (g *Group) Datasets() ([]string, error) {
	members, err := g.g.Members()
	if err != nil {
		return nil, g.fail("list datasets", "", classify(err, ErrFormat), err)
	}
	for _, name := range members {
		if _, err := g.g.OpenDataset(name); err != nil {
			return nil, g.fail("list datasets", name, classify(err, ErrFormat), err)
		}
	}
	return members, nil
}

// WriteDataset stores data, a flat slice of a fixed-width numeric type,
// under the given shape. An empty shape stores a scalar.
func (g *Group) WriteDataset(name string, shape []uint64, data any) error {
	if err := checkName(name); err != nil {
		return g.fail("write dataset", name, ErrFormat, err)
	}
	t := reflect.TypeOf(data)
	if t == nil || t.Kind() != reflect.Slice || !numeric(t.Elem()) {
		return g.fail("write dataset", name, ErrType, fmt.Errorf("data of type %T", data))
	}
	if _, err := g.g.CreateDataset(name, data, hdf5.WithShape(shape...)); err != nil {
		return g.fail("write dataset", name, classify(err, ErrIO), err)
	}
	return nil
}

// ReadDataset returns the element type, the shape (nil for a scalar) and a
// flat slice holding the values. A dataset carrying attributes is a format
// error.
func (g *Group) ReadDataset(name string) (reflect.Type, []uint64, any, error) {
	ds, err := g.g.OpenDataset(name)
	if err != nil {
		return nil, nil, nil, g.fail("read dataset", name, classify(err, ErrFormat), err)
	}
	if attrs := ds.Attrs(); len(attrs) > 0 {
		return nil, nil, nil, g.fail("read dataset", name, ErrFormat,
			fmt.Errorf("dataset attribute %q cannot be represented", attrs[0]))
	}
	elem, err := ds.GoType()
	if err != nil {
		return nil, nil, nil, g.fail("read dataset", name, ErrType, err)
	}
	if !numeric(elem) {
		return nil, nil, nil, g.fail("read dataset", name, ErrType, fmt.Errorf("element type %v", elem))
	}

	ptr := reflect.New(reflect.SliceOf(elem))
	if err := ds.Read(ptr.Interface()); err != nil {
		return nil, nil, nil, g.fail("read dataset", name, ErrFormat, err)
	}
	values := ptr.Elem()
	if values.IsNil() {
		values = reflect.MakeSlice(values.Type(), 0, 0)
	}
	if uint64(values.Len()) != ds.NumElements() {
		return nil, nil, nil, g.fail("read dataset", name, ErrFormat,
			fmt.Errorf("read %d of %d elements", values.Len(), ds.NumElements()))
	}

	var shape []uint64
	if s := ds.Shape(); len(s) > 0 {
		shape = append(shape, s...)
	}
	return elem, shape, values.Interface(), nil
}

func numeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func checkName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "/") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
