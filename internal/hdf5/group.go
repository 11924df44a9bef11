package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/go-dotthz/internal/btree"
	"github.com/robert-malhotra/go-dotthz/internal/heap"
	"github.com/robert-malhotra/go-dotthz/internal/message"
	"github.com/robert-malhotra/go-dotthz/internal/object"
)

// Group represents an HDF5 group.
//
// Groups opened from a file carry their parsed object header. Groups of a
// file being written carry the links, attributes and subgroups that make up
// their header instead; the header is written when the file is closed.
type Group struct {
	file   *File
	path   string
	header *object.Header
	addr   uint64

	links     []*message.Link
	attrs     []*message.Attribute
	subgroups []*Group
	dirty     bool
}

// member is one named entry of a group as stored in the file.
type member struct {
	name     string
	address  uint64
	softLink string
	external bool
}

// target is the object a name resolves to.
type target struct {
	address   uint64
	isDataset bool
}

// Name returns the group name (last component of path).
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// OpenGroup opens a subgroup by relative path.
func (g *Group) OpenGroup(relativePath string) (*Group, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}
	group, ok := obj.(*Group)
	if !ok {
		return nil, ErrNotGroup
	}
	return group, nil
}

// OpenDataset opens a dataset by relative path.
func (g *Group) OpenDataset(relativePath string) (*Dataset, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}
	dataset, ok := obj.(*Dataset)
	if !ok {
		return nil, ErrNotDataset
	}
	return dataset, nil
}

func (g *Group) open(relativePath string) (any, error) {
	parts := splitPath(relativePath)
	if len(parts) == 0 {
		return g, nil
	}
	if g.file.writable {
		return nil, ErrWriteOnly
	}

	current := g
	visited := make(map[string]bool)
	for i, name := range parts {
		t, err := current.findChild(name, visited)
		if err != nil {
			return nil, fmt.Errorf("finding %q: %w", name, err)
		}
		fullPath := path.Join(current.path, name)
		if i == len(parts)-1 {
			if t.isDataset {
				return g.file.openDatasetAt(t.address, fullPath)
			}
			return g.file.openGroupAt(t.address, fullPath)
		}
		if t.isDataset {
			return nil, fmt.Errorf("%s: %w", fullPath, ErrNotGroup)
		}
		if current, err = g.file.openGroupAt(t.address, fullPath); err != nil {
			return nil, err
		}
	}
	return current, nil
}

func (g *Group) findChild(name string, visited map[string]bool) (*target, error) {
	members, err := g.members()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.name != name {
			continue
		}
		switch {
		case m.external:
			return nil, fmt.Errorf("%s: %w", name, ErrExternalLink)
		case m.softLink != "":
			if len(visited) >= MaxLinkDepth {
				return nil, ErrLinkDepth
			}
			if visited[m.softLink] {
				return nil, fmt.Errorf("circular soft link to %s", m.softLink)
			}
			visited[m.softLink] = true
			return g.file.resolve(m.softLink, visited)
		}
		header, err := g.file.readHeader(m.address)
		if err != nil {
			return nil, err
		}
		return &target{address: m.address, isDataset: header.IsDataset()}, nil
	}
	return nil, ErrNotFound
}

// members lists the group's entries. Link-message groups report links in
// the order they were created; symbol-table groups report name order.
func (g *Group) members() ([]member, error) {
	if g.header == nil {
		out := make([]member, len(g.links))
		for i, l := range g.links {
			out[i] = member{name: l.Name, address: l.Address}
		}
		return out, nil
	}

	if links := g.header.Links(); len(links) > 0 {
		out := make([]member, len(links))
		for i, l := range links {
			out[i] = member{name: l.Name, address: l.Address, external: l.LinkType == message.LinkExternal}
			if l.LinkType == message.LinkSoft {
				out[i].softLink = l.Target
			}
		}
		return out, nil
	}

	st := g.header.SymbolTable()
	if st == nil && g.path == "/" && g.file.superblock.RootGroupBTreeAddress != 0 {
		// The root entry of a version 0 superblock caches the symbol table.
		st = &message.SymbolTable{
			BTreeAddress:     g.file.superblock.RootGroupBTreeAddress,
			LocalHeapAddress: g.file.superblock.RootGroupLocalHeapAddress,
		}
	}
	if st == nil {
		return nil, nil
	}
	names, err := heap.ReadLocalHeap(g.file.reader, st.LocalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading local heap: %w", err)
	}
	entries, err := btree.ReadGroupEntries(g.file.reader, st.BTreeAddress, names)
	if err != nil {
		return nil, fmt.Errorf("reading symbol table: %w", err)
	}
	out := make([]member, len(entries))
	for i, e := range entries {
		out[i] = member{name: e.Name, address: e.Address, softLink: e.SoftLink}
	}
	return out, nil
}

// Members returns the names of all members (groups and datasets) in this
// group.
func (g *Group) Members() ([]string, error) {
	members, err := g.members()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.name
	}
	return names, nil
}

// Attrs returns the attribute names for this group in header order.
func (g *Group) Attrs() []string {
	return attrNames(g.attributeMessages())
}

// Attr returns an attribute by name, or nil if not found.
func (g *Group) Attr(name string) *Attribute {
	return findAttr(g.attributeMessages(), name, g.file.reader)
}

// HasAttr returns true if the group has an attribute with the given name.
func (g *Group) HasAttr(name string) bool {
	return g.Attr(name) != nil
}

func (g *Group) attributeMessages() []*message.Attribute {
	if g.header == nil {
		return g.attrs
	}
	return g.header.Attributes()
}
