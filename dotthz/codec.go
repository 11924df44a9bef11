package dotthz

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/robert-malhotra/go-dotthz/internal/store"
)

// Save writes c to path. See WithOverwrite and WithAtomicWrite for how an
// existing file is treated. Without WithAtomicWrite a failure part-way
// leaves a partially written file behind.
func (c *Container) Save(path string, opts ...Option) error {
	return Save(c, path, opts...)
}

// Save writes c to path as a dotTHz file.
func Save(c *Container, path string, opts ...Option) error {
	o := newOptions(opts)
	if err := c.validate(path); err != nil {
		return err
	}

	start := time.Now()
	if o.atomic {
		if err := saveAtomic(c, path, o); err != nil {
			return err
		}
	} else if err := write(c, path, o.overwrite, o.logger); err != nil {
		return err
	}
	o.logger.Info("saved container", "path", path, "groups", c.Len(), "elapsed", time.Since(start))
	return nil
}

// saveAtomic writes to a temporary file next to path and moves it into
// place once the write has succeeded. Without overwrite the move is a hard
// link, which fails if path appeared in the meantime. The new file takes the
// permissions of the file it replaces, or 0644.
func saveAtomic(c *Container, path string, o *options) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		if !o.overwrite {
			return newError("save", path, "", ErrIO, fs.ErrExist)
		}
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return newError("save", path, "", ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	err = tmp.Chmod(mode)
	tmp.Close()
	if err != nil {
		return newError("save", path, "", ErrIO, err)
	}

	if err := write(c, tmpPath, true, o.logger); err != nil {
		return err
	}
	if err := place(tmpPath, path, o.overwrite); err != nil {
		return newError("save", path, "", ErrIO, err)
	}
	return nil
}

// place moves the finished file tmp to path. The caller removes tmp.
func place(tmp, path string, overwrite bool) error {
	if overwrite {
		return os.Rename(tmp, path)
	}
	return os.Link(tmp, path)
}

func write(c *Container, path string, overwrite bool, logger *slog.Logger) (err error) {
	f, err := store.Create(path, overwrite)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if c.Len() == 0 {
		return nil
	}
	for p := c.Groups.Oldest(); p != nil; p = p.Next() {
		if err := writeMeasurement(f, p.Key, p.Value, logger); err != nil {
			return err
		}
	}
	return nil
}

func writeMeasurement(f *store.File, name string, m *Measurement, logger *slog.Logger) error {
	g, err := f.CreateGroup(name)
	if err != nil {
		return err
	}
	logger.Debug("writing group", "group", name, "datasets", m.NumDatasets(), "md", m.MetaData.MDLen())

	md := m.MetaData
	for i, p := range md.fields() {
		if err := g.WriteAttr(FieldKeys[i], *p); err != nil {
			return err
		}
	}
	if md.MDLen() > 0 {
		keys, values := encodeMD(md.MD)
		if err := g.WriteAttr(MDKeysAttr, keys); err != nil {
			return err
		}
		if err := g.WriteAttr(MDValuesAttr, values); err != nil {
			return err
		}
	}

	if m.NumDatasets() == 0 {
		return nil
	}
	for p := m.Datasets.Oldest(); p != nil; p = p.Next() {
		ds := p.Value
		shape := make([]uint64, len(ds.Shape))
		for i, d := range ds.Shape {
			shape[i] = uint64(d)
		}
		if err := g.WriteDataset(p.Key, shape, ds.Data); err != nil {
			return err
		}
		logger.Debug("wrote dataset", "group", name, "dataset", p.Key, "dtype", ds.DType(), "shape", ds.Shape)
	}
	return nil
}

// validate rejects anything that cannot be stored before a file is touched.
func (c *Container) validate(path string) error {
	if c.Len() == 0 {
		return nil
	}
	for p := c.Groups.Oldest(); p != nil; p = p.Next() {
		if err := checkName(p.Key); err != nil {
			return newError("save", path, p.Key, ErrFormat, err)
		}
		m := p.Value
		if m == nil {
			return newError("save", path, p.Key, ErrFormat, errors.New("nil measurement"))
		}
		if err := m.MetaData.validate(); err != nil {
			return newError("save", path, p.Key, ErrType, err)
		}
		if m.NumDatasets() == 0 {
			continue
		}
		for d := m.Datasets.Oldest(); d != nil; d = d.Next() {
			object := p.Key + "/" + d.Key
			if err := checkName(d.Key); err != nil {
				return newError("save", path, object, ErrFormat, err)
			}
			if err := d.Value.Validate(); err != nil {
				kind := ErrFormat
				if errors.Is(err, ErrType) {
					kind = ErrType
				}
				return newError("save", path, object, kind, err)
			}
		}
	}
	return nil
}

// validate checks that every string can be stored as a null-terminated
// attribute.
func (m *MetaData) validate() error {
	for i, p := range m.fields() {
		if strings.ContainsRune(*p, 0) {
			return fmt.Errorf("field %q contains NUL", FieldKeys[i])
		}
	}
	if m.MDLen() == 0 {
		return nil
	}
	for p := m.MD.Oldest(); p != nil; p = p.Next() {
		if strings.ContainsRune(p.Key, 0) || strings.ContainsRune(p.Value, 0) {
			return fmt.Errorf("md entry %q contains NUL", p.Key)
		}
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "/") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

// encodeMD splits md into parallel key and value lists.
func encodeMD(md *orderedmap.OrderedMap[string, string]) (keys, values []string) {
	keys = make([]string, 0, md.Len())
	values = make([]string, 0, md.Len())
	for p := md.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
		values = append(values, p.Value)
	}
	return keys, values
}

// decodeMD zips parallel key and value lists back into a mapping.
func decodeMD(keys, values []string) (*orderedmap.OrderedMap[string, string], error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("%d md keys but %d values", len(keys), len(values))
	}
	md := orderedmap.New[string, string]()
	for i, k := range keys {
		if _, dup := md.Get(k); dup {
			return nil, fmt.Errorf("duplicate md key %q", k)
		}
		md.Set(k, values[i])
	}
	return md, nil
}

// Load reads the dotTHz file at path.
func Load(path string, opts ...Option) (_ *Container, err error) {
	o := newOptions(opts)
	start := time.Now()

	f, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	names, err := f.Groups()
	if err != nil {
		return nil, err
	}
	c := NewContainer()
	for _, name := range names {
		g, err := f.OpenGroup(name)
		if err != nil {
			return nil, err
		}
		m, err := readMeasurement(g, path, o.logger)
		if err != nil {
			return nil, err
		}
		c.Groups.Set(name, m)
	}

	o.logger.Info("loaded container", "path", path, "groups", c.Len(), "elapsed", time.Since(start))
	return c, nil
}

func readMeasurement(g *store.Group, path string, logger *slog.Logger) (*Measurement, error) {
	md, err := readMetaData(g, path)
	if err != nil {
		return nil, err
	}
	m := NewMeasurement(md)

	names, err := g.Datasets()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		elem, dims, data, err := g.ReadDataset(name)
		if err != nil {
			return nil, err
		}
		shape := make([]int, len(dims))
		for i, d := range dims {
			shape[i] = int(d)
		}
		ds := Dataset{Shape: shape, Data: data}
		m.Datasets.Set(name, ds)
		logger.Debug("read dataset", "group", g.Name(), "dataset", name, "dtype", dtypeOf(elem), "shape", shape)
	}
	logger.Debug("read group", "group", g.Name(), "datasets", m.NumDatasets(), "md", md.MDLen())
	return m, nil
}

func readMetaData(g *store.Group, path string) (MetaData, error) {
	var md MetaData
	fields := md.fields()
	for i, key := range FieldKeys {
		s, err := readText(g, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return md, err
		}
		*fields[i] = s
	}

	keys, kerr := g.ReadStrings(MDKeysAttr)
	values, verr := g.ReadStrings(MDValuesAttr)
	for _, err := range []error{kerr, verr} {
		if err != nil && !errors.Is(err, ErrNotFound) {
			return md, err
		}
	}
	if (kerr == nil) != (verr == nil) {
		return md, newError("load", path, g.Name(), ErrFormat,
			fmt.Errorf("only one of %s and %s is present", MDKeysAttr, MDValuesAttr))
	}
	entries, err := decodeMD(keys, values)
	if err != nil {
		return md, newError("load", path, g.Name(), ErrFormat, err)
	}

	// Attributes written by other tools are kept as md entries.
	for _, name := range g.Attrs() {
		if md.Field(name) != nil || name == MDKeysAttr || name == MDValuesAttr {
			continue
		}
		s, err := readText(g, name)
		if err != nil {
			return md, err
		}
		if _, dup := entries.Get(name); dup {
			return md, newError("load", path, g.Name(), ErrFormat,
				fmt.Errorf("attribute %q duplicates an md key", name))
		}
		entries.Set(name, s)
	}

	if entries.Len() > 0 {
		md.MD = entries
	}
	return md, nil
}

// readText reads an attribute as a string. Numeric values and string
// arrays are rendered as text.
func readText(g *store.Group, key string) (string, error) {
	v, err := g.ReadAttr(key)
	if errors.Is(err, ErrType) {
		v, err = g.AttrValue(key)
	}
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case []string:
		return strings.Join(v, ", "), nil
	default:
		return fmt.Sprint(v), nil
	}
}
