package dotthz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMetaDataField(t *testing.T) {
	md := MetaData{User: "u", Date: "2024-11-08"}
	require.Len(t, FieldKeys, 10)

	v, ok := md.Get("user")
	assert.True(t, ok)
	assert.Equal(t, "u", v)
	v, ok = md.Get("date")
	assert.True(t, ok)
	assert.Equal(t, "2024-11-08", v)

	_, ok = md.Get("md")
	assert.False(t, ok)
	assert.Nil(t, md.Field("unknown"))

	*md.Field("orcid") = "0000-0001-2345-6789"
	assert.Equal(t, "0000-0001-2345-6789", md.ORCID)
}

func TestMetaDataEqual(t *testing.T) {
	a := MetaData{User: "u"}
	b := MetaData{User: "u"}
	assert.True(t, a.Equal(b))

	// nil and empty md are the same
	b.SetMD("k", "v")
	b.MD.Delete("k")
	assert.True(t, a.Equal(b))

	a.SetMD("x", "1")
	a.SetMD("y", "2")
	b.SetMD("y", "2")
	b.SetMD("x", "1")
	assert.False(t, a.Equal(b), "md order matters")

	c := a.Clone()
	assert.True(t, a.Equal(c))
	c.SetMD("x", "changed")
	v, _ := a.MD.Get("x")
	assert.Equal(t, "1", v)
	assert.False(t, a.Equal(c))

	assert.False(t, MetaData{Time: "1"}.Equal(MetaData{Time: "2"}))
}

func TestMetaDataYAML(t *testing.T) {
	md := MetaData{
		User:    "Test User",
		Version: "1.00",
		Date:    "2024-11-08",
	}
	md.SetMD("md2", "second")
	md.SetMD("md1", "Thickness (mm)")
	md.SetMD("n", "3")

	out, err := yaml.Marshal(md)
	require.NoError(t, err)
	assert.Equal(t, `user: Test User
version: "1.00"
date: "2024-11-08"
md:
    md2: second
    md1: Thickness (mm)
    n: "3"
`, string(out))

	var back MetaData
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.True(t, md.Equal(back))
	assert.Equal(t, "", back.Email)
}

func TestMetaDataYAMLEmpty(t *testing.T) {
	out, err := yaml.Marshal(MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))

	var back MetaData
	require.NoError(t, yaml.Unmarshal([]byte("user: x\nmd:\n"), &back))
	assert.Equal(t, "x", back.User)
	assert.Equal(t, 0, back.MDLen())
}

func TestMetaDataYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"unknown field", "colour: red\n"},
		{"nested field", "user: {a: b}\n"},
		{"md list", "md: [a, b]\n"},
		{"md nested value", "md: {a: [1]}\n"},
		{"md duplicate", "md:\n  a: 1\n  a: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var md MetaData
			assert.Error(t, yaml.Unmarshal([]byte(tt.doc), &md))
		})
	}
}

func TestMetaDataYAMLInMap(t *testing.T) {
	doc := "g1:\n  user: a\n  md: {k: v}\ng2:\n  mode: transmission\n"
	var groups map[string]MetaData
	require.NoError(t, yaml.Unmarshal([]byte(doc), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups["g1"].User)
	v, ok := groups["g1"].MD.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, "transmission", groups["g2"].Mode)
}
