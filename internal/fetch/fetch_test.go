package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	page, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, page.URL)
	assert.Contains(t, page.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, page.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPFetcher(nil).Fetch(ctx, server.URL, 0)
	require.Error(t, err)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.True(t, fetchErr.Timeout())
}

func TestHTTPFetcher_ExtractsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><script>var soldOut = true;</script></head>
			<body><h1>Naruto Pop</h1><p>  £14.99  </p><button>Add to basket</button></body></html>`))
	}))
	defer server.Close()

	page, err := NewHTTPFetcher(nil).Fetch(context.Background(), server.URL, time.Second)
	require.NoError(t, err)
	assert.Contains(t, page.Text, "Naruto Pop")
	assert.Contains(t, page.Text, "£14.99")
	assert.NotContains(t, page.Text, "soldOut")
}

func TestExtractBodyText_DropsScriptsAndBlankLines(t *testing.T) {
	html := `
	<html>
		<body>
			<style>.x { color: red }</style>
			<div>Limited Edition 2,000</div>

			<noscript>Enable JS</noscript>
			<div>Sold out</div>
		</body>
	</html>`

	text, err := ExtractBodyText(html)
	require.NoError(t, err)
	assert.Equal(t, "Limited Edition 2,000\nSold out", text)
}
