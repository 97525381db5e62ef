package fetch

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAgentRotation(t *testing.T) {
	first := nextUserAgent()
	seen := map[string]bool{first: true}
	for i := 1; i < len(userAgents); i++ {
		seen[nextUserAgent()] = true
	}
	// A full cycle visits every agent once.
	assert.Len(t, seen, len(userAgents))
	for ua := range seen {
		assert.Contains(t, userAgents, ua)
	}
}

func TestSetBrowserHeaders(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://example.org", nil)
	require.NoError(t, err)

	setBrowserHeaders(req)

	assert.NotEmpty(t, req.Header.Get("User-Agent"))
	assert.Contains(t, req.Header.Get("Accept"), "text/html")
	assert.NotEmpty(t, req.Header.Get("Accept-Language"))
}
