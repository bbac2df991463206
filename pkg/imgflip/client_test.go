package imgflip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingJSON = `{
	"success": true,
	"data": {
		"memes": [
			{"id": "61579", "name": "One Does Not Simply", "url": "https://i.imgflip.com/1bij.jpg", "width": 568, "height": 335, "box_count": 2},
			{"id": "101470", "name": "Ancient Aliens", "url": "https://i.imgflip.com/26am.jpg", "width": 500, "height": 437, "box_count": 2},
			{"id": "129242436", "name": "Change My Mind", "url": "https://i.imgflip.com/24y43o.jpg", "width": 482, "height": 361, "box_count": 2}
		]
	}
}`

func newTestClient(ts *httptest.Server, withCreds bool) *Client {
	opts := Options{BaseURL: ts.URL}
	if withCreds {
		opts.Username = "tester"
		opts.Password = "hunter2"
	}
	return NewClient(opts)
}

func TestGetMemesParsesListing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_memes", r.URL.Path)
		w.Write([]byte(listingJSON))
	}))
	defer ts.Close()

	client := newTestClient(ts, false)
	templates, err := client.GetMemes(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 3)

	assert.Equal(t, "61579", templates[0].ID)
	assert.Equal(t, "One Does Not Simply", templates[0].Name)
	assert.Equal(t, 2, templates[0].BoxCount)

	// Listing order defines popularity rank
	for i, tpl := range templates {
		assert.Equal(t, i, tpl.PopularityRank)
	}
}

func TestGetMemesProviderDeclines(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error_message": "service down for maintenance"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts, false)
	_, err := client.GetMemes(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindProviderRejected, KindOf(err))
	assert.Contains(t, err.Error(), "service down for maintenance")
}

func TestGetMemesMalformedPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer ts.Close()

	client := newTestClient(ts, false)
	_, err := client.GetMemes(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindProviderError, KindOf(err))
}

func TestGetMemesRejectsNonPositiveBoxCount(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"memes": [{"id": "1", "name": "Broken", "box_count": 0}]}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts, false)
	_, err := client.GetMemes(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindProviderError, KindOf(err))
}

func TestGetMemesTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	client := newTestClient(ts, false)
	_, err := client.GetMemes(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindProviderUnavailable, KindOf(err))
}

func TestGetMemesServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := newTestClient(ts, false)
	_, err := client.GetMemes(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindProviderUnavailable, KindOf(err))
}

func TestSearchMemesRequiresCredentials(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	client := newTestClient(ts, false)
	_, err := client.SearchMemes(context.Background(), "drake", false)
	require.Error(t, err)
	assert.Equal(t, KindProviderRejected, KindOf(err))
	assert.False(t, called, "no request should be made without credentials")
}

func TestSearchMemesSendsForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/search_memes", r.URL.Path)
		assert.Equal(t, "tester", r.PostFormValue("username"))
		assert.Equal(t, "hunter2", r.PostFormValue("password"))
		assert.Equal(t, "drake", r.PostFormValue("query"))
		assert.Equal(t, "0", r.PostFormValue("include_nsfw"))
		w.Write([]byte(`{"success": true, "data": {"memes": [{"id": "181913649", "name": "Drake Hotline Bling", "box_count": 2}]}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts, true)
	templates, err := client.SearchMemes(context.Background(), "drake", false)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Drake Hotline Bling", templates[0].Name)
}

func TestGetMemeFetchesSingleTemplate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/get_meme", r.URL.Path)
		assert.Equal(t, "61579", r.PostFormValue("template_id"))
		w.Write([]byte(`{"success": true, "data": {"meme": {"id": "61579", "name": "One Does Not Simply", "box_count": 2}}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts, true)
	tpl, err := client.GetMeme(context.Background(), "61579")
	require.NoError(t, err)
	assert.Equal(t, "One Does Not Simply", tpl.Name)
	assert.Equal(t, 2, tpl.BoxCount)
}

func TestCaptionImageTwoBoxForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "top text", r.PostFormValue("text0"))
		assert.Equal(t, "bottom text", r.PostFormValue("text1"))
		assert.Empty(t, r.PostFormValue("boxes[0][text]"))
		assert.Equal(t, "impact", r.PostFormValue("font"))
		w.Write([]byte(`{"success": true, "data": {"url": "https://i.imgflip.com/test.jpg", "page_url": "https://imgflip.com/i/test"}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts, true)
	result, err := client.CaptionImage(context.Background(), "61579", []string{"top text", "bottom text"})
	require.NoError(t, err)
	assert.Equal(t, "https://i.imgflip.com/test.jpg", result.ImageURL)
	assert.Equal(t, "https://imgflip.com/i/test", result.PageURL)
	assert.Equal(t, "61579", result.TemplateID)
}

func TestCaptionImageBoxesForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "one", r.PostFormValue("boxes[0][text]"))
		assert.Equal(t, "two", r.PostFormValue("boxes[1][text]"))
		assert.Equal(t, "three", r.PostFormValue("boxes[2][text]"))
		assert.Empty(t, r.PostFormValue("text0"))
		w.Write([]byte(`{"success": true, "data": {"url": "https://i.imgflip.com/test.jpg", "page_url": "https://imgflip.com/i/test"}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts, true)
	_, err := client.CaptionImage(context.Background(), "93895088", []string{"one", "two", "three"})
	require.NoError(t, err)
}

func TestCaptionImageMissingURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts, true)
	_, err := client.CaptionImage(context.Background(), "61579", []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, KindProviderError, KindOf(err))
}
