package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/aescanero/dago-wikibot/internal/wikitext"
)

// templateEdit is one template's text as the actions change it. tpl is
// re-extracted after every change so parameter offsets stay current.
type templateEdit struct {
	text     string
	tpl      *wikitext.Template
	stripped bool
}

func newTemplateEdit(text string) (*templateEdit, error) {
	e := &templateEdit{}
	return e, e.set(text)
}

func (e *templateEdit) set(text string) error {
	tpl, _, err := wikitext.Extract(text, 0)
	if err != nil {
		return err
	}
	e.text = text
	e.tpl = tpl
	return nil
}

// removeAll drops every occurrence of a parameter.
func (e *templateEdit) removeAll(name string) error {
	for {
		text, ok := e.tpl.RemoveParam(name)
		if !ok {
			return nil
		}
		if err := e.set(text); err != nil {
			return err
		}
	}
}

func (r *pageRun) apply(ctx context.Context, a Action, e *templateEdit) error {
	switch {
	case a.Rename != nil:
		return r.rename(a.Rename, e)
	case a.Merge != nil:
		return r.merge(a.Merge, e)
	case a.RemoveEmpty:
		return r.removeEmpty(e)
	case a.Stamp != nil:
		return r.stamp(a.Stamp, e)
	case a.Fill != nil:
		return r.fill(ctx, a.Fill, e)
	case a.Retitle != nil:
		return r.retitle(a.Retitle, e)
	case a.Strip:
		r.note("removed {{%s}}", e.tpl.Name)
		e.text = ""
		e.stripped = true
	}
	return nil
}

// rename moves a value to a new name. An empty source is removed instead;
// a target that already holds a value is left for a human.
func (r *pageRun) rename(a *Rename, e *templateEdit) error {
	v, ok := e.tpl.Params.Lookup(a.From)
	if !ok {
		return nil
	}
	if v.IsEmpty() {
		r.note("removed %s", a.From)
		return e.removeAll(a.From)
	}
	if v.IsMulti() {
		r.warn("%s in {{%s}} is repeated; fix by hand", a.From, e.tpl.Name)
		return nil
	}
	if target, ok := e.tpl.Params.Lookup(a.To); ok {
		if !target.IsEmpty() {
			r.warn("{{%s}} also has %s; fix by hand", e.tpl.Name, a.To)
			return nil
		}
		if err := e.removeAll(a.To); err != nil {
			return err
		}
	}

	text, ok := e.tpl.RenameParam(a.From, a.To)
	if !ok {
		return nil
	}
	r.note("%s>>>%s", a.From, a.To)
	return e.set(text)
}

func (r *pageRun) merge(a *Merge, e *templateEdit) error {
	var present, values []string
	for _, name := range a.From {
		v, ok := e.tpl.Params.Lookup(name)
		if !ok {
			continue
		}
		present = append(present, name)
		for _, s := range v.Strings() {
			if s != "" {
				values = append(values, s)
			}
		}
	}
	if len(present) == 0 {
		return nil
	}

	targetIsSource := false
	for _, name := range a.From {
		if name == a.To {
			targetIsSource = true
		}
	}
	if target, ok := e.tpl.Params.Lookup(a.To); ok && !targetIsSource {
		if !target.IsEmpty() {
			r.warn("{{%s}} also has %s; fix by hand", e.tpl.Name, a.To)
			return nil
		}
		if err := e.removeAll(a.To); err != nil {
			return err
		}
	}

	for _, name := range present {
		if err := e.removeAll(name); err != nil {
			return err
		}
	}
	if len(values) == 0 {
		r.note("removed %s", strings.Join(present, ", "))
		return nil
	}
	r.note("merged %s into %s", strings.Join(present, ", "), a.To)
	return e.set(e.tpl.SetParam(a.To, strings.Join(values, a.Separator)))
}

func (r *pageRun) removeEmpty(e *templateEdit) error {
	var removed []string
	for _, name := range e.tpl.Params.Keys() {
		if !e.tpl.Params.Get(name).IsEmpty() {
			continue
		}
		if err := e.removeAll(name); err != nil {
			return err
		}
		removed = append(removed, name)
	}
	if len(removed) > 0 {
		r.note("removed empty parameters %s", strings.Join(removed, ", "))
	}
	return nil
}

func (r *pageRun) stamp(a *Stamp, e *templateEdit) error {
	if v, ok := e.tpl.Params.Lookup(a.Param); ok && !v.IsEmpty() && !a.Overwrite {
		return nil
	}

	now := r.task.now()
	value := now.Format(a.Format)
	if len(a.Months) == 12 {
		value = strings.Replace(value, now.Month().String(), a.Months[now.Month()-1], 1)
	}
	if e.tpl.Params.Get(a.Param).String() == value {
		return nil
	}

	r.note("%s=%s", a.Param, value)
	return e.set(e.tpl.SetParam(a.Param, value))
}

func (r *pageRun) fill(ctx context.Context, a *Fill, e *templateEdit) error {
	current, ok := e.tpl.Params.Lookup(a.Param)
	if ok && !current.IsEmpty() && !a.Overwrite {
		return nil
	}

	claims, err := r.loadClaims(ctx)
	if err != nil || claims == nil {
		return err
	}
	value, ok := claims.Get(a.Claim, a.Part)
	if !ok {
		return nil
	}

	if a.Resolve == "sitelink" {
		title, err := r.task.claims.SiteLink(ctx, value)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.warn("no local page for %s: %v", value, err)
			return nil
		}
		value = title
	}

	if current.String() == value {
		return nil
	}
	r.note("%s from %s", a.Param, a.Claim)
	return e.set(e.tpl.SetParam(a.Param, value))
}

func (r *pageRun) retitle(a *Retitle, e *templateEdit) error {
	c := e.tpl.Clone()
	oldName := c.Name
	c.Name = a.To

	if len(a.Order) > 0 {
		ordered := wikitext.NewParams()
		for _, name := range a.Order {
			if v, ok := c.Params.Lookup(name); ok {
				ordered.Set(name, v)
			}
		}
		c.Params.Each(func(name string, v wikitext.Value) {
			if !ordered.Has(name) {
				ordered.Set(name, v)
			}
		})
		c.Params = ordered
	}

	text := c.Render(a.layout)
	if text == e.text {
		return nil
	}
	if oldName != a.To {
		r.note("{{%s}} as {{%s}}", oldName, a.To)
	} else {
		r.note("rebuilt {{%s}}", oldName)
	}
	return e.set(text)
}
