package wikidata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aescanero/dago-wikibot/internal/wikitext"
	"github.com/tidwall/gjson"
)

// Parts of structured values selectable with Claims.Get.
const (
	PartLatitude  = "latitude"
	PartLongitude = "longitude"
	PartText      = "text"
	PartLanguage  = "language"
)

// Claims maps a property id to the datavalue of its best statement.
type Claims map[string]gjson.Result

// ParseClaims reads the "claims" object of a wbgetclaims or wbgetentities
// response.
func ParseClaims(claimsJSON string) Claims {
	return parseClaims(gjson.Parse(claimsJSON))
}

// parseClaims keeps one statement per property: the first with preferred
// rank, otherwise the first that is not deprecated. Statements without a
// value (somevalue, novalue) are dropped.
func parseClaims(claims gjson.Result) Claims {
	out := make(Claims)
	claims.ForEach(func(property, statements gjson.Result) bool {
		var best gjson.Result
		for _, s := range statements.Array() {
			dv := s.Get("mainsnak.datavalue")
			if !dv.Exists() {
				continue
			}
			rank := s.Get("rank").String()
			if rank == "deprecated" {
				continue
			}
			if rank == "preferred" {
				best = dv
				break
			}
			if !best.Exists() {
				best = dv
			}
		}
		if best.Exists() {
			out[property.String()] = best
		}
		return true
	})
	return out
}

// Get returns a property's value as wikitext. part selects latitude or
// longitude of a coordinate and text or language of a monolingual text;
// other value types ignore it. "=" is escaped as {{=}} so the value can be
// used inside a template parameter.
func (c Claims) Get(property, part string) (string, bool) {
	dv, ok := c[property]
	if !ok {
		return "", false
	}

	v := dv.Get("value")
	var s string
	switch dv.Get("type").String() {
	case "string", "external-id", "url", "commonsMedia":
		s = v.String()
	case "monolingualtext":
		if part == PartLanguage {
			s = v.Get("language").String()
		} else {
			s = v.Get("text").String()
		}
	case "globecoordinate":
		lat, lon := formatFloat(v.Get("latitude")), formatFloat(v.Get("longitude"))
		switch part {
		case PartLatitude:
			s = lat
		case PartLongitude:
			s = lon
		default:
			s = lat + "," + lon
		}
	case "wikibase-entityid":
		s = v.Get("id").String()
	case "quantity":
		s = strings.TrimPrefix(v.Get("amount").String(), "+")
	case "time":
		s = v.Get("time").String()
	default:
		s = v.String()
	}

	if s == "" {
		return "", false
	}
	return strings.ReplaceAll(s, "=", "{{=}}"), true
}

func formatFloat(r gjson.Result) string {
	if !r.Exists() {
		return ""
	}
	return strconv.FormatFloat(r.Float(), 'f', -1, 64)
}

var entityIDPattern = regexp.MustCompile(`^Q[0-9]+$`)

// EntityFromText returns the item id given in text as a template parameter,
// e.g. |item=Q42, or "" when there is none. Templates inside comments are
// ignored and nested templates are searched parent first.
func EntityFromText(text, param string) string {
	if param == "" {
		return ""
	}
	templates, err := wikitext.Scan(text, wikitext.Options{Nested: true})
	if err != nil {
		return ""
	}
	for _, t := range templates {
		if id := entityIn(t, param); id != "" {
			return id
		}
	}
	return ""
}

func entityIn(t *wikitext.Template, param string) string {
	if id := strings.TrimSpace(t.Params.Get(param).String()); entityIDPattern.MatchString(id) {
		return id
	}
	for _, child := range t.Nested {
		if id := entityIn(child, param); id != "" {
			return id
		}
	}
	return ""
}
