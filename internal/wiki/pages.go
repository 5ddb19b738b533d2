package wiki

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
	"go.uber.org/zap"
)

// Page is one page to process: its identity, the revision that was read and
// that revision's wikitext.
type Page struct {
	Title    string `json:"title"`
	PageID   int64  `json:"page_id"`
	RevID    int64  `json:"rev_id"`
	Wikitext string `json:"wikitext,omitempty"`

	// Template is the template the page was found through, if any.
	Template string `json:"template,omitempty"`
}

// Complete reports whether the page has everything needed to edit it.
func (p Page) Complete() bool {
	return p.Title != "" && p.RevID > 0 && p.Wikitext != ""
}

// Generator selects pages. Exactly one of Category, CategoryID, EmbeddedIn or
// Titles must be set.
type Generator struct {
	Category   string   `json:"category,omitempty" yaml:"category,omitempty"`
	CategoryID int64    `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	EmbeddedIn string   `json:"embedded_in,omitempty" yaml:"embedded_in,omitempty"`
	Titles     []string `json:"titles,omitempty" yaml:"titles,omitempty"`

	// Namespaces limits category and embedded-in generators, e.g. "0|10".
	Namespaces string `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
}

// Validate checks that exactly one page source is set.
func (g Generator) Validate() error {
	n := 0
	if g.Category != "" {
		n++
	}
	if g.CategoryID > 0 {
		n++
	}
	if g.EmbeddedIn != "" {
		n++
	}
	if len(g.Titles) > 0 {
		n++
	}
	if n != 1 {
		return ErrNoGenerator
	}
	return nil
}

func withPrefix(title, prefix string) string {
	if strings.HasPrefix(strings.ToLower(title), strings.ToLower(prefix)) {
		return title
	}
	return prefix + title
}

// params builds the query for the generator.
func (g Generator) params() params.Values {
	p := params.Values{
		"action":        "query",
		"prop":          "revisions",
		"rvprop":        "ids|content",
		"rvslots":       "main",
		"formatversion": "2",
	}

	switch {
	case g.Category != "":
		p["generator"] = "categorymembers"
		p["gcmtitle"] = withPrefix(g.Category, "Category:")
		p["gcmlimit"] = "max"
		if g.Namespaces != "" {
			p["gcmnamespace"] = g.Namespaces
		}
	case g.CategoryID > 0:
		p["generator"] = "categorymembers"
		p["gcmpageid"] = strconv.FormatInt(g.CategoryID, 10)
		p["gcmlimit"] = "max"
		if g.Namespaces != "" {
			p["gcmnamespace"] = g.Namespaces
		}
	case g.EmbeddedIn != "":
		p["generator"] = "embeddedin"
		p["geititle"] = withPrefix(g.EmbeddedIn, "Template:")
		p["geilimit"] = "max"
		if g.Namespaces != "" {
			p["geinamespace"] = g.Namespaces
		}
	default:
		p["titles"] = strings.Join(g.Titles, "|")
	}
	return p
}

// Pages runs the generator and returns every page with its latest revision,
// following query continuation. Pages whose revision was not returned are
// still listed, without RevID and Wikitext.
func (c *Client) Pages(ctx context.Context, gen Generator) ([]Page, error) {
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	var (
		pages []Page
		index = make(map[string]int)
	)

	q := c.api.NewQuery(gen.params())
	for q.Next() {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		batch, err := q.Resp().GetObjectArray("query", "pages")
		if err != nil {
			// a batch carrying only continuation data has no pages
			continue
		}

		for _, obj := range batch {
			page, ok := parsePage(obj)
			if !ok {
				continue
			}
			page.Template = gen.EmbeddedIn

			if i, seen := index[page.Title]; seen {
				if page.RevID > 0 {
					pages[i].RevID = page.RevID
					pages[i].Wikitext = page.Wikitext
				}
				continue
			}
			index[page.Title] = len(pages)
			pages = append(pages, page)
		}
	}
	if err := q.Err(); err != nil {
		return pages, fmt.Errorf("failed to query pages: %w", err)
	}

	c.logger.Debug("pages fetched",
		zap.Int("count", len(pages)),
		zap.String("generator", gen.describe()),
	)
	return pages, nil
}

func parsePage(obj *jason.Object) (Page, bool) {
	title, err := obj.GetString("title")
	if err != nil || title == "" {
		return Page{}, false
	}
	if missing, err := obj.GetBoolean("missing"); err == nil && missing {
		return Page{}, false
	}

	page := Page{Title: title}
	page.PageID, _ = obj.GetInt64("pageid")

	revs, err := obj.GetObjectArray("revisions")
	if err != nil || len(revs) == 0 {
		return page, true
	}
	page.RevID, _ = revs[0].GetInt64("revid")
	page.Wikitext, _ = revs[0].GetString("slots", "main", "content")
	return page, true
}

func (g Generator) describe() string {
	switch {
	case g.Category != "":
		return "category:" + g.Category
	case g.CategoryID > 0:
		return "category_id:" + strconv.FormatInt(g.CategoryID, 10)
	case g.EmbeddedIn != "":
		return "embeddedin:" + g.EmbeddedIn
	default:
		return "titles:" + strings.Join(g.Titles, "|")
	}
}
