package client_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rget/rget/pkg/client"
)

func TestUserAgentTransport(t *testing.T) {
	mockTransport := httpmock.NewMockTransport()
	var gotUserAgent string
	mockTransport.RegisterResponder(http.MethodGet, "https://example.com/file.bin",
		func(req *http.Request) (*http.Response, error) {
			gotUserAgent = req.Header.Get("User-Agent")
			return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
		})

	httpClient := &http.Client{
		Transport: &client.UserAgentTransport{
			Transport: mockTransport,
			UserAgent: "rget-test/1.0",
		},
	}

	resp, err := httpClient.Get("https://example.com/file.bin")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "rget-test/1.0", gotUserAgent)
}

func TestNewClientFollowsRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			_, _ = w.Write([]byte("landed"))
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	httpClient := client.NewClient(client.Options{UserAgent: "rget-test", FollowRedirects: true})
	resp, err := httpClient.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/final", resp.Request.URL.Path)
}

func TestNewClientRefusesRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	}))
	defer server.Close()

	httpClient := client.NewClient(client.Options{UserAgent: "rget-test", FollowRedirects: false})
	resp, err := httpClient.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
}
