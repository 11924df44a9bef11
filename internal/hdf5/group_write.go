package hdf5

import (
	"fmt"
	"path"
	"strings"

	"github.com/robert-malhotra/go-dotthz/internal/message"
	"github.com/robert-malhotra/go-dotthz/internal/object"
)

// CreateGroup creates a new subgroup with the given name.
//
// Group headers of a file being written are kept in memory and written
// once, by Close.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if !g.file.writable {
		return nil, ErrReadOnly
	}
	if err := checkLinkName(name); err != nil {
		return nil, err
	}
	// The address is filled in when the child's header is written.
	if err := g.addLink(message.NewHardLink(name, g.file.writer.UndefinedOffset())); err != nil {
		return nil, fmt.Errorf("adding link to parent: %w", err)
	}
	child := &Group{
		file:  g.file,
		path:  childPath(g.path, name),
		addr:  g.file.writer.UndefinedOffset(),
		dirty: true,
	}
	g.subgroups = append(g.subgroups, child)
	return child, nil
}

// SetAttr attaches an attribute to the group, replacing any attribute of the
// same name. The value can be a scalar or slice of int8-64, uint8-64,
// float32, float64 or string.
func (g *Group) SetAttr(name string, value interface{}) error {
	if !g.file.writable {
		return ErrReadOnly
	}
	if name == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}

	attr, err := createAttributeMessage(name, value)
	if err != nil {
		return fmt.Errorf("creating attribute %q: %w", name, err)
	}

	g.dirty = true
	for i, existing := range g.attrs {
		if existing.Name == name {
			g.attrs[i] = attr
			return nil
		}
	}
	g.attrs = append(g.attrs, attr)
	return nil
}

// addLink appends a link to this group.
func (g *Group) addLink(link *message.Link) error {
	for _, existing := range g.links {
		if existing.Name == link.Name {
			return fmt.Errorf("link %q already exists in %s", link.Name, g.path)
		}
	}
	g.links = append(g.links, link)
	g.dirty = true
	return nil
}

// flush writes the headers of g and of every subgroup below it that changed
// since the last flush, children first so their links point at the final
// addresses.
func (g *Group) flush() error {
	for _, sub := range g.subgroups {
		if err := sub.flush(); err != nil {
			return err
		}
		name := path.Base(sub.path)
		for _, link := range g.links {
			if link.Name == name && link.Address != sub.addr {
				link.Address = sub.addr
				g.dirty = true
			}
		}
	}
	if !g.dirty {
		return nil
	}
	addr, err := g.file.writeHeader(object.GroupMessages(g.links, g.attrs), "group header "+g.path)
	if err != nil {
		return err
	}
	g.addr = addr
	g.dirty = false
	return nil
}

func checkLinkName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name == "." || strings.Contains(name, "/") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return path.Join(parent, name)
}
