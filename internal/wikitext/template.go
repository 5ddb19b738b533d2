package wikitext

import (
	"bytes"
	"encoding/json"
)

// Value is a parameter value. A parameter given once holds a single string;
// a parameter repeated inside one invocation holds every occurrence in order.
type Value struct {
	single string
	multi  []string
}

// Single returns a value for a parameter that occurred once.
func Single(s string) Value {
	return Value{single: s}
}

// Multiple returns a value for a repeated parameter.
func Multiple(values ...string) Value {
	return Value{multi: append([]string(nil), values...)}
}

// IsMulti reports whether the parameter occurred more than once.
func (v Value) IsMulti() bool {
	return v.multi != nil
}

// String returns the value, or the first occurrence of a repeated parameter.
func (v Value) String() string {
	if v.multi != nil {
		return v.multi[0]
	}
	return v.single
}

// Strings returns every occurrence in source order.
func (v Value) Strings() []string {
	if v.multi != nil {
		return append([]string(nil), v.multi...)
	}
	return []string{v.single}
}

// IsEmpty reports whether every occurrence is the empty string.
func (v Value) IsEmpty() bool {
	for _, s := range v.Strings() {
		if s != "" {
			return false
		}
	}
	return true
}

// add converts a single value into a two element list, or appends to a list.
func (v Value) add(s string) Value {
	if v.multi != nil {
		return Value{multi: append(v.multi, s)}
	}
	return Value{multi: []string{v.single, s}}
}

// MarshalJSON writes a single value as a string and a repeated one as an
// array of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.multi != nil {
		return json.Marshal(v.multi)
	}
	return json.Marshal(v.single)
}

// Params maps parameter names to values and remembers first-occurrence order.
type Params struct {
	keys   []string
	values map[string]Value
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{values: make(map[string]Value)}
}

// Len returns the number of distinct parameter names.
func (p *Params) Len() int {
	return len(p.keys)
}

// Keys returns the parameter names in first-occurrence order.
func (p *Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Has reports whether the parameter is present, even with an empty value.
func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Get returns the value of a parameter. A missing parameter yields the zero
// Value, whose String is "".
func (p *Params) Get(name string) Value {
	return p.values[name]
}

// Lookup returns the value and whether it was present.
func (p *Params) Lookup(name string) (Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Set stores a value, keeping the original position of an existing name.
func (p *Params) Set(name string, v Value) {
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = v
}

// Add records one more occurrence of a parameter.
func (p *Params) Add(name, value string) {
	if v, ok := p.values[name]; ok {
		p.values[name] = v.add(value)
		return
	}
	p.keys = append(p.keys, name)
	p.values[name] = Single(value)
}

// Delete removes a parameter.
func (p *Params) Delete(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	for i, k := range p.keys {
		if k == name {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Rename moves a value to a new name in the same position. An existing
// parameter called to is replaced.
func (p *Params) Rename(from, to string) bool {
	v, ok := p.values[from]
	if !ok || from == to {
		return false
	}
	p.Delete(to)
	delete(p.values, from)
	for i, k := range p.keys {
		if k == from {
			p.keys[i] = to
			break
		}
	}
	p.values[to] = v
	return true
}

// Each calls fn for every parameter in order.
func (p *Params) Each(fn func(name string, v Value)) {
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

// Flat returns the parameters as a plain map, joining repeated values with "|".
func (p *Params) Flat() map[string]string {
	out := make(map[string]string, len(p.keys))
	for _, k := range p.keys {
		v := p.values[k]
		if v.IsMulti() {
			var b bytes.Buffer
			for i, s := range v.multi {
				if i > 0 {
					b.WriteByte('|')
				}
				b.WriteString(s)
			}
			out[k] = b.String()
			continue
		}
		out[k] = v.single
	}
	return out
}

func (p *Params) clone() *Params {
	c := NewParams()
	for _, k := range p.keys {
		v := p.values[k]
		if v.multi != nil {
			v = Multiple(v.multi...)
		}
		c.Set(k, v)
	}
	return c
}

// MarshalJSON writes the parameters as an object in first-occurrence order.
func (p *Params) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Template is one parsed {{...}} invocation.
type Template struct {
	Name      string      `json:"name"`
	Params    *Params     `json:"params"`
	Anonymous []string    `json:"anonymous"`
	FullText  string      `json:"full_text"`
	Nested    []*Template `json:"nested,omitempty"`

	// segments locate each "|..." part inside FullText.
	segments []segment
}

// segment is the byte range of one parameter inside FullText. For named
// parameters eq is the offset of the "=", otherwise it is -1.
type segment struct {
	name  string
	start int
	eq    int
	end   int
}

func newTemplate(name string, nested bool) *Template {
	t := &Template{
		Name:      name,
		Params:    NewParams(),
		Anonymous: []string{},
	}
	if nested {
		t.Nested = []*Template{}
	}
	return t
}

// Clone returns a deep copy.
func (t *Template) Clone() *Template {
	c := &Template{
		Name:      t.Name,
		Params:    t.Params.clone(),
		Anonymous: append([]string{}, t.Anonymous...),
		FullText:  t.FullText,
		segments:  append([]segment(nil), t.segments...),
	}
	if t.Nested != nil {
		c.Nested = make([]*Template, len(t.Nested))
		for i, n := range t.Nested {
			c.Nested[i] = n.Clone()
		}
	}
	return c
}
