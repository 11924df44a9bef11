package dotthz

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Attribute names of the fixed metadata fields, in the order they are written.
var FieldKeys = []string{
	"user", "email", "orcid", "institution", "description",
	"version", "mode", "instrument", "time", "date",
}

// Attribute names holding the md mapping as two parallel string arrays.
const (
	MDKeysAttr   = "mdKeys"
	MDValuesAttr = "mdValues"
)

// MetaData describes a measurement. An empty field means the field is absent.
type MetaData struct {
	User        string
	Email       string
	ORCID       string
	Institution string
	Description string
	Version     string
	Mode        string
	Instrument  string
	Time        string
	Date        string

	// MD holds auxiliary key/value metadata in insertion order. nil is
	// the same as empty.
	MD *orderedmap.OrderedMap[string, string]
}

// fields returns pointers to the fixed fields in FieldKeys order.
func (m *MetaData) fields() []*string {
	return []*string{
		&m.User, &m.Email, &m.ORCID, &m.Institution, &m.Description,
		&m.Version, &m.Mode, &m.Instrument, &m.Time, &m.Date,
	}
}

// Field returns a pointer to the fixed field stored under the attribute
// name key, or nil if key is not a fixed field.
func (m *MetaData) Field(key string) *string {
	for i, k := range FieldKeys {
		if k == key {
			return m.fields()[i]
		}
	}
	return nil
}

// Get returns the value of a fixed field by attribute name.
func (m MetaData) Get(key string) (string, bool) {
	p := m.Field(key)
	if p == nil {
		return "", false
	}
	return *p, true
}

// SetMD sets an md entry, appending it if the key is new.
func (m *MetaData) SetMD(key, value string) {
	if m.MD == nil {
		m.MD = orderedmap.New[string, string]()
	}
	m.MD.Set(key, value)
}

// MDLen returns the number of md entries.
func (m MetaData) MDLen() int {
	if m.MD == nil {
		return 0
	}
	return m.MD.Len()
}

// Equal compares every fixed field and the md entries including their order.
func (m MetaData) Equal(o MetaData) bool {
	a, b := m.fields(), o.fields()
	for i := range a {
		if *a[i] != *b[i] {
			return false
		}
	}
	if m.MDLen() != o.MDLen() {
		return false
	}
	if m.MDLen() == 0 {
		return true
	}
	for pa, pb := m.MD.Oldest(), o.MD.Oldest(); pa != nil; pa, pb = pa.Next(), pb.Next() {
		if pa.Key != pb.Key || pa.Value != pb.Value {
			return false
		}
	}
	return true
}

// Clone returns a copy of m with its own md mapping.
func (m MetaData) Clone() MetaData {
	c := m
	c.MD = nil
	if m.MD != nil {
		c.MD = orderedmap.New[string, string]()
		for p := m.MD.Oldest(); p != nil; p = p.Next() {
			c.MD.Set(p.Key, p.Value)
		}
	}
	return c
}

// MarshalYAML encodes the non-empty fixed fields under their attribute
// names, followed by md as a mapping in entry order.
func (m MetaData) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, p := range m.fields() {
		if *p == "" {
			continue
		}
		node.Content = append(node.Content, stringNode(FieldKeys[i]), stringNode(*p))
	}
	if m.MDLen() > 0 {
		md := &yaml.Node{Kind: yaml.MappingNode}
		for p := m.MD.Oldest(); p != nil; p = p.Next() {
			md.Content = append(md.Content, stringNode(p.Key), stringNode(p.Value))
		}
		node.Content = append(node.Content, stringNode("md"), md)
	}
	return node, nil
}

// UnmarshalYAML decodes the form written by MarshalYAML. Unknown keys are
// rejected; missing fields decode to "".
func (m *MetaData) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: metadata must be a mapping", value.Line)
	}
	*m = MetaData{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if k.Value == "md" {
			if err := m.unmarshalMD(v); err != nil {
				return err
			}
			continue
		}
		p := m.Field(k.Value)
		if p == nil {
			return fmt.Errorf("line %d: unknown metadata field %q", k.Line, k.Value)
		}
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: field %q must be a string", v.Line, k.Value)
		}
		*p = v.Value
	}
	return nil
}

func (m *MetaData) unmarshalMD(v *yaml.Node) error {
	if v.Kind == yaml.ScalarNode && v.ShortTag() == "!!null" {
		return nil
	}
	if v.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: md must be a mapping", v.Line)
	}
	for i := 0; i+1 < len(v.Content); i += 2 {
		k, val := v.Content[i], v.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: md value for %q must be a string", val.Line, k.Value)
		}
		if m.MD != nil {
			if _, dup := m.MD.Get(k.Value); dup {
				return fmt.Errorf("line %d: duplicate md key %q", k.Line, k.Value)
			}
		}
		m.SetMD(k.Value, val.Value)
	}
	return nil
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
