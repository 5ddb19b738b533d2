package wikitext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	v := Single("a")
	assert.False(t, v.IsMulti())
	assert.Equal(t, "a", v.String())
	assert.Equal(t, []string{"a"}, v.Strings())
	assert.False(t, v.IsEmpty())

	v = v.add("b").add("c")
	assert.True(t, v.IsMulti())
	assert.Equal(t, "a", v.String())
	assert.Equal(t, []string{"a", "b", "c"}, v.Strings())

	assert.True(t, Single("").IsEmpty())
	assert.True(t, Multiple("", "").IsEmpty())
	assert.False(t, Multiple("", "x").IsEmpty())
	assert.True(t, Value{}.IsEmpty())
}

func TestValueStringsIsACopy(t *testing.T) {
	v := Multiple("a", "b")
	s := v.Strings()
	s[0] = "z"
	assert.Equal(t, "a", v.String())
}

func TestParams(t *testing.T) {
	p := NewParams()
	p.Add("b", "1")
	p.Add("a", "2")
	p.Add("b", "3")

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []string{"b", "a"}, p.Keys())
	assert.True(t, p.Has("a"))
	assert.False(t, p.Has("c"))
	assert.Equal(t, map[string]string{"b": "1|3", "a": "2"}, p.Flat())

	_, ok := p.Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, "", p.Get("c").String())

	assert.True(t, p.Rename("b", "c"))
	assert.Equal(t, []string{"c", "a"}, p.Keys())
	assert.Equal(t, []string{"1", "3"}, p.Get("c").Strings())
	assert.False(t, p.Rename("missing", "x"))
	assert.False(t, p.Rename("a", "a"))

	assert.True(t, p.Rename("a", "c"))
	assert.Equal(t, []string{"c"}, p.Keys())
	assert.Equal(t, "2", p.Get("c").String())

	p.Set("d", Single("4"))
	p.Set("c", Single("5"))
	assert.Equal(t, []string{"c", "d"}, p.Keys())

	p.Delete("c")
	p.Delete("missing")
	assert.Equal(t, []string{"d"}, p.Keys())
}

func TestParamsEach(t *testing.T) {
	p := NewParams()
	p.Add("x", "1")
	p.Add("y", "2")

	var seen []string
	p.Each(func(name string, v Value) {
		seen = append(seen, name+"="+v.String())
	})
	assert.Equal(t, []string{"x=1", "y=2"}, seen)
}

func TestTemplateJSON(t *testing.T) {
	tpl := mustExtract(t, "{{T|b=1|a=2|a=3|z}}")

	data, err := json.Marshal(tpl)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"T","params":{"b":"1","a":["2","3"]},"anonymous":["z"],"full_text":"{{T|b=1|a=2|a=3|z}}"}`,
		string(data))
}

func TestTemplateJSONNested(t *testing.T) {
	tpl, _, err := ExtractNested("{{A|{{B}}}}", 0)
	require.NoError(t, err)

	data, err := json.Marshal(tpl)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "A",
		"params": {},
		"anonymous": ["{{B}}"],
		"full_text": "{{A|{{B}}}}",
		"nested": [{"name": "B", "params": {}, "anonymous": [], "full_text": "{{B}}"}]
	}`, string(data))
}

func TestTemplateClone(t *testing.T) {
	orig, _, err := ExtractNested("{{A|k=1|k=2|{{B|x=1}}}}", 0)
	require.NoError(t, err)

	c := orig.Clone()
	assert.Equal(t, orig, c)

	c.Params.Set("k", Single("changed"))
	c.Anonymous[0] = "changed"
	c.Nested[0].Params.Set("x", Single("changed"))

	assert.Equal(t, []string{"1", "2"}, orig.Params.Get("k").Strings())
	assert.Equal(t, "{{B|x=1}}", orig.Anonymous[0])
	assert.Equal(t, "1", orig.Nested[0].Params.Get("x").String())

	text, ok := c.RemoveParam("k")
	require.True(t, ok)
	assert.Equal(t, "{{A|k=2|{{B|x=1}}}}", text)
}
