package tasks

import (
	"errors"
	"fmt"
	"os"

	"github.com/aescanero/dago-wikibot/internal/wikitext"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTask is the parent of every task file validation error.
var ErrInvalidTask = errors.New("invalid task")

// File is the YAML form of a task.
type File struct {
	Name string `yaml:"name"`

	// Summary is a Handlebars template for the edit summary. It sees task,
	// title, templates and changes.
	Summary string `yaml:"summary"`
	Minor   bool   `yaml:"minor"`

	// EntityParam names the template parameter that may hold a Wikidata
	// item id for the page, e.g. "item".
	EntityParam string `yaml:"entity_param"`

	Rules []Rule `yaml:"rules"`
}

// Rule selects templates on a page and changes them.
type Rule struct {
	// Template is the template to look for. Empty means the template the
	// page was queued for.
	Template string `yaml:"template"`

	// Aliases are tried in order when Template is not on the page.
	Aliases []string `yaml:"aliases"`

	// Scan holds the scanner flags "nested" and "multi".
	Scan map[string]any `yaml:"scan"`

	// When is a CEL condition; templates it rejects are left alone.
	When string `yaml:"when"`

	Actions []Action `yaml:"actions"`

	opts wikitext.Options
}

// Action is one change. Exactly one field is set.
type Action struct {
	Rename      *Rename  `yaml:"rename"`
	Merge       *Merge   `yaml:"merge"`
	RemoveEmpty bool     `yaml:"remove_empty"`
	Stamp       *Stamp   `yaml:"stamp"`
	Fill        *Fill    `yaml:"fill"`
	Retitle     *Retitle `yaml:"retitle"`
	Strip       bool     `yaml:"strip"`
}

// Rename renames a parameter.
type Rename struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Merge joins several parameters into one.
type Merge struct {
	From      []string `yaml:"from"`
	To        string   `yaml:"to"`
	Separator string   `yaml:"separator"`
}

// Stamp adds the current date to a parameter.
type Stamp struct {
	Param  string `yaml:"param"`
	Format string `yaml:"format"`

	// Months replaces the English month names, January first.
	Months []string `yaml:"months"`

	Overwrite bool `yaml:"overwrite"`
}

// Fill sets a parameter from a Wikidata claim.
type Fill struct {
	Param string `yaml:"param"`
	Claim string `yaml:"claim"`
	Part  string `yaml:"part"`

	// Resolve "sitelink" turns an item id into the local page title.
	Resolve string `yaml:"resolve"`

	Overwrite bool `yaml:"overwrite"`
}

// Retitle rebuilds the template under another name.
type Retitle struct {
	To     string `yaml:"to"`
	Layout string `yaml:"layout"`

	// Order lists parameters to put first.
	Order []string `yaml:"order"`

	layout wikitext.Layout
}

// Load reads a task file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a task file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTask, fmt.Sprintf(format, args...))
}

func (f *File) validate() error {
	if f.Name == "" {
		return invalid("name is required")
	}
	if len(f.Rules) == 0 {
		return invalid("at least one rule is required")
	}
	for i := range f.Rules {
		if err := f.Rules[i].validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

func (r *Rule) validate() error {
	if _, ok := r.Scan["name"]; ok {
		return invalid("scan.name is not allowed, use template and aliases")
	}
	opts, err := wikitext.OptionsFromMap(r.Scan)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	r.opts = opts

	if r.Template == "" && len(r.Aliases) > 0 {
		return invalid("aliases need a template")
	}
	if len(r.Actions) == 0 {
		return invalid("at least one action is required")
	}
	for i := range r.Actions {
		if err := r.Actions[i].validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

func (a *Action) validate() error {
	n := 0
	for _, set := range []bool{a.Rename != nil, a.Merge != nil, a.RemoveEmpty, a.Stamp != nil, a.Fill != nil, a.Retitle != nil, a.Strip} {
		if set {
			n++
		}
	}
	if n != 1 {
		return invalid("exactly one of rename, merge, remove_empty, stamp, fill, retitle or strip is required")
	}

	switch {
	case a.Rename != nil:
		if a.Rename.From == "" || a.Rename.To == "" {
			return invalid("rename needs from and to")
		}
	case a.Merge != nil:
		if len(a.Merge.From) == 0 || a.Merge.To == "" {
			return invalid("merge needs from and to")
		}
		if a.Merge.Separator == "" {
			a.Merge.Separator = ", "
		}
	case a.Stamp != nil:
		if a.Stamp.Param == "" || a.Stamp.Format == "" {
			return invalid("stamp needs param and format")
		}
		if len(a.Stamp.Months) != 0 && len(a.Stamp.Months) != 12 {
			return invalid("stamp months must list 12 names")
		}
	case a.Fill != nil:
		if a.Fill.Param == "" || a.Fill.Claim == "" {
			return invalid("fill needs param and claim")
		}
		if a.Fill.Resolve != "" && a.Fill.Resolve != "sitelink" {
			return invalid("fill resolve must be sitelink")
		}
	case a.Retitle != nil:
		if a.Retitle.To == "" {
			return invalid("retitle needs to")
		}
		layout, err := wikitext.ParseLayout(a.Retitle.Layout)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		a.Retitle.layout = layout
	}
	return nil
}

// needsClaims reports whether any action reads Wikidata.
func (f *File) needsClaims() bool {
	for _, r := range f.Rules {
		for _, a := range r.Actions {
			if a.Fill != nil {
				return true
			}
		}
	}
	return false
}
