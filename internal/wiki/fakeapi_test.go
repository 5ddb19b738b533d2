package wiki

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI answers the handful of api.php actions the client uses.
type fakeAPI struct {
	mu sync.Mutex

	// batches are served in order, linked by gcmcontinue.
	batches [][]map[string]any

	editCode     string
	editNoChange bool
	editDelay    time.Duration
	edits        []url.Values
	logins       int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/w/api.php", "wikibot-test/1.0", zap.NewNop())
	require.NoError(t, err)
	return f, c
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Form.Get("action") == "edit" {
		f.mu.Lock()
		delay := f.editDelay
		f.mu.Unlock()
		time.Sleep(delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	form := r.Form
	switch form.Get("action") {
	case "query":
		if form.Get("meta") == "tokens" {
			writeJSON(w, map[string]any{
				"batchcomplete": true,
				"query": map[string]any{"tokens": map[string]any{
					"csrftoken":  "csrf+\\",
					"logintoken": "login+\\",
				}},
			})
			return
		}
		f.servePages(w, form)
	case "login":
		f.logins++
		writeJSON(w, map[string]any{"login": map[string]any{
			"result":     "Success",
			"lguserid":   1,
			"lgusername": form.Get("lgname"),
		}})
	case "logout":
		writeJSON(w, map[string]any{})
	case "edit":
		f.edits = append(f.edits, form)
		switch {
		case f.editCode != "":
			writeJSON(w, map[string]any{"error": map[string]any{
				"code": f.editCode,
				"info": "refused by test server",
			}})
		case f.editNoChange:
			writeJSON(w, map[string]any{"edit": map[string]any{
				"result":   "Success",
				"title":    form.Get("title"),
				"nochange": "",
			}})
		default:
			writeJSON(w, map[string]any{"edit": map[string]any{
				"result":   "Success",
				"title":    form.Get("title"),
				"oldrevid": 1,
				"newrevid": 2,
			}})
		}
	default:
		writeJSON(w, map[string]any{"error": map[string]any{
			"code": "badvalue",
			"info": "unknown action " + form.Get("action"),
		}})
	}
}

func (f *fakeAPI) servePages(w http.ResponseWriter, form url.Values) {
	i := 0
	if c := form.Get("gcmcontinue"); c != "" {
		i = 1
	}
	if i >= len(f.batches) {
		writeJSON(w, map[string]any{"batchcomplete": true})
		return
	}

	resp := map[string]any{
		"query": map[string]any{"pages": f.batches[i]},
	}
	if i+1 < len(f.batches) {
		resp["continue"] = map[string]any{
			"gcmcontinue": "next",
			"continue":    "gcmcontinue||",
		}
	} else {
		resp["batchcomplete"] = true
	}
	writeJSON(w, resp)
}

func (f *fakeAPI) lastEdit() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return nil
	}
	return f.edits[len(f.edits)-1]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func pageJSON(id int64, title string, revID int64, text string) map[string]any {
	p := map[string]any{"pageid": id, "ns": 0, "title": title}
	if revID > 0 {
		p["revisions"] = []any{map[string]any{
			"revid":    revID,
			"parentid": revID - 1,
			"slots": map[string]any{"main": map[string]any{
				"contentmodel": "wikitext",
				"content":      text,
			}},
		}}
	}
	return p
}
