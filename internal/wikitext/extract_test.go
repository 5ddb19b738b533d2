package wikitext

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBasic(t *testing.T) {
	tpl, end, err := Extract("{{Template1}}", 0)
	require.NoError(t, err)

	assert.Equal(t, "Template1", tpl.Name)
	assert.Equal(t, 0, tpl.Params.Len())
	assert.Equal(t, []string{}, tpl.Anonymous)
	assert.Equal(t, "{{Template1}}", tpl.FullText)
	assert.Nil(t, tpl.Nested)
	assert.Equal(t, 13, end)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  int
		want error
	}{
		{"position past end", "{{Template1}}", 100, ErrPosition},
		{"negative position", "{{Template1}}", -1, ErrPosition},
		{"last character", "{{Template1}}", 12, ErrPosition},
		{"only opening braces", "{{", 0, ErrPosition},
		{"no opening braces", "Template1}}", 0, ErrInvalidStart},
		{"no closing braces", "{{Template1", 0, ErrUnclosed},
		{"one closing brace", "{{Template1}", 0, ErrUnclosed},
		{"one closing brace mid text", "{{Template1} more text", 0, ErrUnclosed},
		{"unclosed parameter", "{{Template1|a=1", 0, ErrUnclosed},
		{"unclosed nested", "{{Template1|a={{B}}", 0, ErrUnclosed},
		{"no name", "{{}}", 0, ErrNoName},
		{"blank name", "{{  }}", 0, ErrNoName},
		{"name ends at newline", "{{\nfoo}}", 0, ErrNoName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Extract(tt.text, tt.pos)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var scanErr *ScanError
			assert.True(t, errors.As(err, &scanErr))
		})
	}
}

func TestExtractMalformedErrorsShareParent(t *testing.T) {
	_, _, err := Extract("Template1}}", 0)
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, err = Extract("{{ }}", 0)
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, err = Extract("{{A", 0)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain", "{{Template1}}"},
		{"newline before close", "{{Template1\n    }}"},
		{"empty parameter", "{{Template1|}}"},
		{"newline and pipe", "{{Template1\n    |}}"},
		{"newline and parameter", "{{Template1\n    |param1=value1}}"},
		{"trailing pipe", "{{Template1\n    |param1=value1|}}"},
		{"surrounding spaces", "{{  Template1  }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, end, err := Extract(tt.text, 0)
			require.NoError(t, err)
			assert.Equal(t, "Template1", tpl.Name)
			assert.Equal(t, tt.text, tpl.FullText)
			assert.Equal(t, len(tt.text), end)
		})
	}
}

func TestExtractFullText(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"{{Template1}}", "{{Template1}}"},
		{"{{Template1|{{Template2}}}}", "{{Template1|{{Template2}}}}"},
		{"{{Template1|{{Template2}}|param1=value1}}", "{{Template1|{{Template2}}|param1=value1}}"},
		{"{{Template1}} more text", "{{Template1}}"},
		{"{{T\n| a = 1 \n|b=\n  2\n}}", "{{T\n| a = 1 \n|b=\n  2\n}}"},
	}

	for _, tt := range tests {
		tpl, _, err := Extract(tt.text, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.want, tpl.FullText)
	}
}

func TestExtractNamedParameters(t *testing.T) {
	text := "Some text before {{Template1|param1=value1|param2=value2}} some text after"
	pos := strings.Index(text, "{")

	tpl, end, err := Extract(text, pos)
	require.NoError(t, err)

	assert.Equal(t, []string{"param1", "param2"}, tpl.Params.Keys())
	assert.Equal(t, map[string]string{"param1": "value1", "param2": "value2"}, tpl.Params.Flat())
	assert.Equal(t, "{{Template1|param1=value1|param2=value2}}", tpl.FullText)
	assert.Equal(t, strings.Index(text, "}}")+2, end)
}

func TestExtractMixedParameters(t *testing.T) {
	text := "{{Template1|value1|param2=value2|value3}}"

	tpl, end, err := Extract(text, 0)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"param2": "value2"}, tpl.Params.Flat())
	assert.Equal(t, []string{"value1", "value3"}, tpl.Anonymous)
	assert.Equal(t, text, tpl.FullText)
	assert.Equal(t, len(text), end)
}

func TestExtractParameterValues(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "special characters",
			text: "{{Template1|param1=value_with_special_chars@#&*!|param2=value2}}",
			want: map[string]string{"param1": "value_with_special_chars@#&*!", "param2": "value2"},
		},
		{
			name: "empty values",
			text: "{{Template1|param1=|param2=}}",
			want: map[string]string{"param1": "", "param2": ""},
		},
		{
			name: "nested braces",
			text: "{{Template1|param1=Some {{Nested}} text|param2=value2}}",
			want: map[string]string{"param1": "Some {{Nested}} text", "param2": "value2"},
		},
		{
			name: "nested template with parameters",
			text: "{{OuterTemplate|param1={{InnerTemplate|key=value}}|param2=value2}}",
			want: map[string]string{"param1": "{{InnerTemplate|key=value}}", "param2": "value2"},
		},
		{
			name: "piped link",
			text: "{{Cite|title=[[Page|label]]|year=2020}}",
			want: map[string]string{"title": "[[Page|label]]", "year": "2020"},
		},
		{
			name: "equals inside value",
			text: "{{Math|formula=a=b}}",
			want: map[string]string{"formula": "a=b"},
		},
		{
			name: "equals inside nested name",
			text: "{{T|{{=}}x=1}}",
			want: map[string]string{"{{=}}x": "1"},
		},
		{
			name: "whitespace trimmed",
			text: "{{T\n| name = Foo Bar \n| born =\n1900\n}}",
			want: map[string]string{"name": "Foo Bar", "born": "1900"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, end, err := Extract(tt.text, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tpl.Params.Flat())
			assert.Equal(t, tt.text, tpl.FullText)
			assert.Equal(t, len(tt.text), end)
		})
	}
}

func TestExtractDuplicateParameters(t *testing.T) {
	tpl, _, err := Extract("{{X|a=1|b=x|a=2|a=3}}", 0)
	require.NoError(t, err)

	a := tpl.Params.Get("a")
	assert.True(t, a.IsMulti())
	assert.Equal(t, []string{"1", "2", "3"}, a.Strings())
	assert.Equal(t, "1", a.String())
	assert.False(t, tpl.Params.Get("b").IsMulti())
	assert.Equal(t, []string{"a", "b"}, tpl.Params.Keys())
}

func TestExtractDuplicateOfEmptyValue(t *testing.T) {
	tpl, _, err := Extract("{{X|a=|a=2}}", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "2"}, tpl.Params.Get("a").Strings())
}

func TestExtractEmptyNameGoesAnonymous(t *testing.T) {
	tpl, _, err := Extract("{{X|=v| =w|k=1}}", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "w"}, tpl.Anonymous)
	assert.Equal(t, []string{"k"}, tpl.Params.Keys())
}

func TestExtractNested(t *testing.T) {
	text := "{{Outer|x={{Inner|y=1}}}}"

	tpl, end, err := ExtractNested(text, 0)
	require.NoError(t, err)

	require.Len(t, tpl.Nested, 1)
	inner := tpl.Nested[0]
	assert.Equal(t, "Inner", inner.Name)
	assert.Equal(t, "1", inner.Params.Get("y").String())
	assert.Equal(t, []*Template{}, inner.Nested)
	assert.Equal(t, inner.FullText, tpl.Params.Get("x").String())
	assert.Equal(t, text, tpl.FullText)
	assert.Equal(t, len(text), end)
}

func TestExtractNestedDeep(t *testing.T) {
	text := "{{A|{{B|{{C}}}}|k={{D}} and {{E|{{F}}}}}}"

	tpl, _, err := ExtractNested(text, 0)
	require.NoError(t, err)

	assert.Equal(t, text, tpl.FullText)
	assert.Equal(t, []string{"{{B|{{C}}}}"}, tpl.Anonymous)
	assert.Equal(t, "{{D}} and {{E|{{F}}}}", tpl.Params.Get("k").String())

	require.Len(t, tpl.Nested, 3)
	assert.Equal(t, "B", tpl.Nested[0].Name)
	assert.Equal(t, "D", tpl.Nested[1].Name)
	assert.Equal(t, "E", tpl.Nested[2].Name)
	require.Len(t, tpl.Nested[0].Nested, 1)
	assert.Equal(t, "C", tpl.Nested[0].Nested[0].Name)
	require.Len(t, tpl.Nested[2].Nested, 1)
	assert.Equal(t, "F", tpl.Nested[2].Nested[0].Name)
}

func TestExtractNestedInsideLink(t *testing.T) {
	text := "{{A|x=[[L|{{B}}]]}}"

	tpl, _, err := ExtractNested(text, 0)
	require.NoError(t, err)
	assert.Equal(t, "[[L|{{B}}]]", tpl.Params.Get("x").String())
	require.Len(t, tpl.Nested, 1)
	assert.Equal(t, "B", tpl.Nested[0].Name)
}

func TestExtractNestedChildError(t *testing.T) {
	_, _, err := ExtractNested("{{A|x={{ }}}}", 0)
	assert.ErrorIs(t, err, ErrNoName)
}

func TestExtractNestingDepthLimit(t *testing.T) {
	depth := MaxNestingDepth + 10
	text := strings.Repeat("{{A|", depth) + strings.Repeat("}}", depth)

	_, _, err := ExtractNested(text, 0)
	assert.ErrorIs(t, err, ErrTooDeep)

	tpl, end, err := Extract(text, 0)
	require.NoError(t, err)
	assert.Equal(t, len(text), end)
	assert.Equal(t, text, tpl.FullText)
}

func TestExtractDoesNotModifyInput(t *testing.T) {
	text := "before {{A|b={{C}}|d}} after"
	orig := strings.Clone(text)

	_, _, err := ExtractNested(text, 7)
	require.NoError(t, err)
	assert.Equal(t, orig, text)
}
