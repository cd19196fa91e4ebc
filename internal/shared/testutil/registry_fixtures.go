package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeRegistry serves the three bus.gov.ru endpoints from canned bodies
type FakeRegistry struct {
	Server *httptest.Server

	mu           sync.Mutex
	indexBody    string
	indexStatus  int
	details      map[string]string
	qualityBody  string
	qualityCode  int
	detailCalls  map[string]int
	indexCalls   int
	qualityCalls int
}

// NewFakeRegistry starts a fake registry that is closed with the test. Until
// configured it returns an empty index and an empty quality map.
func NewFakeRegistry(t *testing.T) *FakeRegistry {
	t.Helper()
	f := &FakeRegistry{
		indexBody:   `{"orgs":[]}`,
		indexStatus: http.StatusOK,
		details:     make(map[string]string),
		qualityBody: `{}`,
		qualityCode: http.StatusOK,
		detailCalls: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the public-rest root to configure the client with
func (f *FakeRegistry) BaseURL() string { return f.Server.URL + "/public-rest/api" }

// RatingBaseURL is the public-rating root to configure the client with
func (f *FakeRegistry) RatingBaseURL() string { return f.Server.URL + "/public-rating/api" }

// SetIndex sets the index response
func (f *FakeRegistry) SetIndex(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexStatus, f.indexBody = status, body
}

// SetDetail sets the detail body for an agency id; ids without a body get a 500
func (f *FakeRegistry) SetDetail(id int64, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[fmt.Sprint(id)] = body
}

// SetQuality sets the quality response
func (f *FakeRegistry) SetQuality(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qualityCode, f.qualityBody = status, body
}

// Calls returns how many index, detail and quality requests were served
func (f *FakeRegistry) Calls() (index, detail, quality int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.detailCalls {
		detail += n
	}
	return f.indexCalls, detail, f.qualityCalls
}

// DetailCalls returns how many detail requests an agency id received
func (f *FakeRegistry) DetailCalls(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[fmt.Sprint(id)]
}

func (f *FakeRegistry) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/orgunique/extendedSearchOrgUnique"):
		f.indexCalls++
		w.WriteHeader(f.indexStatus)
		fmt.Fprint(w, f.indexBody)
	case strings.HasSuffix(r.URL.Path, "/agency/compare"):
		id := r.URL.Query().Get("compareAgencyIds")
		f.detailCalls[id]++
		body, ok := f.details[id]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, body)
	case strings.HasSuffix(r.URL.Path, "/ratingCompare/commonInfo"):
		f.qualityCalls++
		w.WriteHeader(f.qualityCode)
		fmt.Fprint(w, f.qualityBody)
	default:
		http.NotFound(w, r)
	}
}
