package hdf5

// WalkFunc is called for every object reached by Walk. obj is a *Group or
// a *Dataset. When a member cannot be opened, obj is nil and err says why.
// Returning an error stops the walk and Walk returns it.
type WalkFunc func(path string, obj any, err error) error

// Walk visits g and everything below it depth-first, each group before its
// members and members in storage order. A group reachable through more than
// one link is entered once.
func Walk(g *Group, fn WalkFunc) error {
	return walk(g, fn, make(map[uint64]bool))
}

func walk(g *Group, fn WalkFunc, seen map[uint64]bool) error {
	seen[g.addr] = true
	if err := fn(g.path, g, nil); err != nil {
		return err
	}
	names, err := g.Members()
	if err != nil {
		return err
	}
	for _, name := range names {
		obj, err := g.open(name)
		switch sub, isGroup := obj.(*Group); {
		case err != nil:
			err = fn(childPath(g.path, name), nil, err)
		case isGroup:
			if seen[sub.addr] {
				continue
			}
			err = walk(sub, fn, seen)
		default:
			err = fn(childPath(g.path, name), obj, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// AttrInfo describes one attribute reached by WalkAttrs.
type AttrInfo struct {
	Path       string // object@name
	ObjectPath string
	ObjectType string // "group" or "dataset"
	Name       string
	Attr       *Attribute

	// Value is the result of Attr.Value, or nil when Err is set.
	Value any
	Err   error
}

// WalkAttrsFunc is called for each attribute. Returning an error stops the
// walk.
type WalkAttrsFunc func(info AttrInfo) error

// WalkAttrs calls fn for every attribute of every object in the file, in
// Walk order. Objects that cannot be opened are skipped.
func (f *File) WalkAttrs(fn WalkAttrsFunc) error {
	if f.closed {
		return ErrClosed
	}
	return Walk(f.root, func(p string, obj any, err error) error {
		if err != nil {
			return nil
		}
		var (
			kind  string
			names []string
			get   func(string) *Attribute
		)
		switch o := obj.(type) {
		case *Group:
			kind, names, get = "group", o.Attrs(), o.Attr
		case *Dataset:
			kind, names, get = "dataset", o.Attrs(), o.Attr
		}
		for _, name := range names {
			info := AttrInfo{
				Path:       attrPath(p, name),
				ObjectPath: p,
				ObjectType: kind,
				Name:       name,
				Attr:       get(name),
			}
			if info.Attr != nil {
				info.Value, info.Err = info.Attr.Value()
			}
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	})
}

func attrPath(objectPath, name string) string {
	if objectPath == "/" {
		return "/@" + name
	}
	return objectPath + "@" + name
}
