package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/aescanero/dago-wikibot/internal/wiki"
	"github.com/aescanero/dago-wikibot/internal/wikidata"
	"github.com/aescanero/dago-wikibot/internal/wikitext"
	"go.uber.org/zap"
)

// pageRun is the state of one Apply call.
type pageRun struct {
	task   *Task
	page   wiki.Page
	change *Change

	claimsLoaded bool
	claims       wikidata.Claims
}

func (r *pageRun) warn(format string, args ...any) {
	r.change.Warnings = append(r.change.Warnings, fmt.Sprintf(format, args...))
}

func (r *pageRun) note(format string, args ...any) {
	r.change.Changes = append(r.change.Changes, fmt.Sprintf(format, args...))
}

// find scans the current text for the rule's template, falling back to its
// aliases in order.
func (r *pageRun) find(rule *Rule) ([]*wikitext.Template, string, error) {
	names := append([]string{rule.Template}, rule.Aliases...)
	if rule.Template == "" {
		names = []string{r.page.Template}
	}

	for _, name := range names {
		if name == "" {
			continue
		}
		opts := rule.opts
		opts.Name = name
		found, err := wikitext.Scan(r.change.NewText, opts)
		if err != nil {
			return nil, name, err
		}
		if len(found) > 0 {
			return found, name, nil
		}
	}
	return nil, names[0], nil
}

func (r *pageRun) rule(ctx context.Context, rule *Rule) error {
	found, name, err := r.find(rule)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		if rule.Template == "" && name != "" {
			r.warn("template %s not found", name)
		}
		return nil
	}

	for _, tpl := range found {
		if !r.when(ctx, rule, tpl) {
			continue
		}
		r.change.Templates = append(r.change.Templates, tpl.Name)

		edit, err := newTemplateEdit(tpl.FullText)
		if err != nil {
			return err
		}
		for _, a := range rule.Actions {
			if edit.stripped {
				break
			}
			if err := r.apply(ctx, a, edit); err != nil {
				return err
			}
		}

		if edit.text == tpl.FullText {
			continue
		}
		text, ok := wikitext.ReplaceTemplate(r.change.NewText, tpl.FullText, edit.text)
		if !ok {
			r.warn("could not replace template %s; it was changed by an earlier rule", tpl.Name)
			continue
		}
		r.change.NewText = text
	}
	return nil
}

// when evaluates the rule condition. Errors and non-boolean results count as
// no match.
func (r *pageRun) when(ctx context.Context, rule *Rule, tpl *wikitext.Template) bool {
	if rule.When == "" {
		return true
	}

	matched, err := r.task.evaluator.EvaluateBool(ctx, rule.When, celVars(r.page, tpl))
	if err != nil {
		r.task.logger.Warn("rule condition failed",
			zap.String("page_title", r.page.Title),
			zap.String("template", tpl.Name),
			zap.String("condition", rule.When),
			zap.Error(err),
		)
		return false
	}

	r.task.logger.Debug("rule condition evaluated",
		zap.String("page_title", r.page.Title),
		zap.String("condition", rule.When),
		zap.Bool("matched", matched),
	)
	return matched
}

func celVars(page wiki.Page, tpl *wikitext.Template) map[string]interface{} {
	return map[string]interface{}{
		"template": map[string]interface{}{
			"name":      tpl.Name,
			"params":    tpl.Params.Flat(),
			"anonymous": tpl.Anonymous,
		},
		"page": map[string]interface{}{
			"title":  page.Title,
			"rev_id": page.RevID,
		},
	}
}

// loadClaims fetches the page's claims once. A lookup failure becomes a
// warning and nil claims; only cancellation is returned as an error.
func (r *pageRun) loadClaims(ctx context.Context) (wikidata.Claims, error) {
	if r.claimsLoaded {
		return r.claims, nil
	}

	_, claims, err := r.task.claims.ClaimsForPage(ctx, r.page.Title, r.change.NewText, r.task.file.EntityParam)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		r.claimsLoaded = true
		r.warn("no Wikidata claims: %v", err)
		return nil, nil
	}

	r.claimsLoaded = true
	r.claims = claims
	return claims, nil
}
