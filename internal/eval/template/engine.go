package template

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
)

// raymond keeps helpers in a global registry that panics on duplicates.
var registerOnce sync.Once

// Engine renders Handlebars templates
type Engine struct {
	cache map[string]*raymond.Template
	mu    sync.RWMutex
}

// NewEngine creates a new template engine
func NewEngine() *Engine {
	engine := &Engine{
		cache: make(map[string]*raymond.Template),
	}

	registerOnce.Do(registerHelpers)

	return engine
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data interface{}) (string, error) {
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// ValidateTemplate validates a template without rendering it
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := raymond.Parse(templateStr)
	return err
}

// ClearCache clears the compiled template cache
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*raymond.Template)
}

func registerHelpers() {
	raymond.RegisterHelper("uppercase", func(str string) string {
		return strings.ToUpper(str)
	})

	raymond.RegisterHelper("lowercase", func(str string) string {
		return strings.ToLower(str)
	})

	raymond.RegisterHelper("trim", func(str string) string {
		return strings.TrimSpace(str)
	})

	// default - return default value if first arg is empty
	raymond.RegisterHelper("default", func(value interface{}, defaultValue interface{}) interface{} {
		if value == nil || value == "" {
			return defaultValue
		}
		return value
	})

	raymond.RegisterHelper("eq", func(a, b interface{}) bool {
		return a == b
	})

	raymond.RegisterHelper("ne", func(a, b interface{}) bool {
		return a != b
	})

	raymond.RegisterHelper("gt", func(a, b float64) bool {
		return a > b
	})

	raymond.RegisterHelper("lt", func(a, b float64) bool {
		return a < b
	})

	raymond.RegisterHelper("contains", func(str, substr string) bool {
		return strings.Contains(str, substr)
	})

	// join - join list elements with separator; output is not HTML escaped
	raymond.RegisterHelper("join", func(list interface{}, sep string) raymond.SafeString {
		return raymond.SafeString(strings.Join(toStrings(list), sep))
	})

	raymond.RegisterHelper("len", func(value interface{}) int {
		if value == nil {
			return 0
		}
		v := reflect.ValueOf(value)
		switch v.Kind() {
		case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
			return v.Len()
		default:
			return 0
		}
	})

	// wikilink - [[Title]] or [[Title|label]]
	raymond.RegisterHelper("wikilink", func(title string, options *raymond.Options) raymond.SafeString {
		if label := options.HashStr("label"); label != "" {
			return raymond.SafeString("[[" + title + "|" + label + "]]")
		}
		return raymond.SafeString("[[" + title + "]]")
	})
}

func toStrings(list interface{}) []string {
	switch l := list.(type) {
	case nil:
		return nil
	case []string:
		return l
	case []interface{}:
		strs := make([]string, len(l))
		for i, v := range l {
			strs[i] = fmt.Sprint(v)
		}
		return strs
	}
	v := reflect.ValueOf(list)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []string{fmt.Sprint(list)}
	}
	strs := make([]string, v.Len())
	for i := range strs {
		strs[i] = fmt.Sprint(v.Index(i).Interface())
	}
	return strs
}
