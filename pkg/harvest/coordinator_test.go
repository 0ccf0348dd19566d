package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-harvest/pkg/catalog"
	"recipe-harvest/pkg/domain"
	"recipe-harvest/pkg/extractor"
	"recipe-harvest/pkg/fetch"
	"recipe-harvest/pkg/httpclient"
)

const base = "https://example.test"

// mapGetter serves pages from memory and fails the URLs listed in errs
type mapGetter struct {
	pages map[string]string
	errs  map[string]error

	mu    sync.Mutex
	calls int
}

func (g *mapGetter) Get(ctx context.Context, url string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if err, ok := g.errs[url]; ok {
		return "", err
	}
	if page, ok := g.pages[url]; ok {
		return page, nil
	}
	return "", fmt.Errorf("%w: 404", fetch.ErrStatus)
}

func detailPage(title string) string {
	return fmt.Sprintf(`<html><body><h1>%s</h1><div class="list__item">1 კვერცხი</div></body></html>`, title)
}

func catalogPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, href := range hrefs {
		fmt.Fprintf(&b, `<a class="box__title" href="%s">x</a>`, href)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newCoordinator(getter fetch.Getter, opts ...Option) *Coordinator {
	opts = append([]Option{WithClock(fixedClock), WithRunID(func() string { return "run-1" })}, opts...)
	return New(catalog.NewHTMLParser(base, ""), fetch.New(getter, nil), base, 2, opts...)
}

func TestHarvest_TwoSucceedOneTimesOut(t *testing.T) {
	timeout := context.DeadlineExceeded
	getter := &mapGetter{
		pages: map[string]string{
			base + "/recipe/1": detailPage("ხინკალი"),
			base + "/recipe/3": detailPage("ხაჭაპური"),
		},
		errs: map[string]error{base + "/recipe/2": timeout},
	}
	c := newCoordinator(getter)

	result, err := c.Harvest(context.Background(), catalogPage("/recipe/1", "/recipe/2", "/recipe/3"))
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "ხინკალი", result.Records[0].Title)
	assert.Equal(t, base+"/recipe/1", result.Records[0].Link)
	assert.Equal(t, "ხაჭაპური", result.Records[1].Title)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, base+"/recipe/2", result.Failures[0].URL)
	assert.Equal(t, domain.StageFetch, result.Failures[0].Stage)
	assert.ErrorIs(t, result.Failures[0].Cause, context.DeadlineExceeded)
	assert.ErrorIs(t, result.Err(), context.DeadlineExceeded)
}

func TestHarvest_ExtractionFailureIsReported(t *testing.T) {
	getter := &mapGetter{
		pages: map[string]string{
			base + "/a": detailPage("ფხალი"),
			base + "/b": "<html><body><p>no heading</p></body></html>",
		},
	}
	c := newCoordinator(getter)

	result, err := c.Harvest(context.Background(), catalogPage("/a", "/b"))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, domain.StageExtract, result.Failures[0].Stage)
	assert.ErrorIs(t, result.Failures[0].Cause, extractor.ErrMissingTitle)
}

func TestHarvest_PartitionsDiscoveredURLs(t *testing.T) {
	pages := map[string]string{}
	errs := map[string]error{}
	hrefs := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		href := fmt.Sprintf("/recipe/%d", i)
		hrefs = append(hrefs, href)
		switch i % 3 {
		case 0:
			errs[base+href] = errors.New("connection reset")
		case 1:
			pages[base+href] = "<html></html>"
		default:
			pages[base+href] = detailPage(fmt.Sprintf("რეცეპტი %d", i))
		}
	}
	// Duplicate entries are harvested twice
	hrefs = append(hrefs, "/recipe/2")

	c := newCoordinator(&mapGetter{pages: pages, errs: errs})
	result, err := c.Harvest(context.Background(), catalogPage(hrefs...))
	require.NoError(t, err)

	assert.Len(t, result.URLs, len(hrefs))
	assert.Equal(t, len(result.URLs), len(result.Records)+len(result.Failures))

	seen := map[string]int{}
	for _, r := range result.Records {
		seen[r.Link]++
	}
	for _, f := range result.Failures {
		seen[f.URL]++
	}
	for _, u := range result.URLs {
		assert.Positive(t, seen[u], "url %s missing from result", u)
	}
	assert.Equal(t, 2, seen[base+"/recipe/2"])

	// relative catalog order is kept inside each list
	lastIndex := -1
	for _, r := range result.Records {
		idx := indexOf(result.URLs, r.Link, lastIndex+1)
		require.GreaterOrEqual(t, idx, 0)
		lastIndex = idx
	}
}

func indexOf(urls []string, url string, from int) int {
	for i := from; i < len(urls); i++ {
		if urls[i] == url {
			return i
		}
	}
	return -1
}

func TestHarvest_StampsRecords(t *testing.T) {
	getter := &mapGetter{pages: map[string]string{base + "/a": detailPage("ფხალი")}}
	c := newCoordinator(getter)

	result, err := c.Harvest(context.Background(), catalogPage("/a"))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, "run-1", result.Records[0].RunID)
	assert.Equal(t, fixedClock(), result.Records[0].HarvestedAt)
}

func TestHarvest_DefaultRunIDIsUnique(t *testing.T) {
	getter := &mapGetter{}
	c := New(catalog.NewHTMLParser(base, ""), fetch.New(getter, nil), base, 0)

	first, err := c.Harvest(context.Background(), catalogPage())
	require.NoError(t, err)
	second, err := c.Harvest(context.Background(), catalogPage())
	require.NoError(t, err)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Empty(t, first.Records)
	assert.Empty(t, first.Failures)
	assert.NoError(t, first.Err())
}

type failingParser struct{}

func (failingParser) Entries(string) ([]string, error) {
	return nil, errors.New("broken catalog")
}

func TestHarvest_CatalogParseErrorAbortsRun(t *testing.T) {
	getter := &mapGetter{}
	c := New(failingParser{}, fetch.New(getter, nil), base, 2)

	_, err := c.Harvest(context.Background(), "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken catalog")
	assert.Zero(t, getter.calls)
}

func TestHarvestURL_OverHTTP(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(catalogPage("/recipe/1", "/recipe/2")))
	})
	mux.HandleFunc("/recipe/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailPage("ჩაქაფული")))
	})
	mux.HandleFunc("/recipe/2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := fetch.New(fetch.NewHTTPGetter(httpclient.NewClient(httpclient.BrowserClient)), nil)
	c := New(catalog.NewHTMLParser(server.URL, ""), fetcher, server.URL, 2)

	result, err := c.HarvestURL(context.Background(), server.URL+"/catalog")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "ჩაქაფული", result.Records[0].Title)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Cause, fetch.ErrStatus)

	_, err = c.HarvestURL(context.Background(), server.URL+"/missing")
	assert.ErrorIs(t, err, fetch.ErrStatus)
}
