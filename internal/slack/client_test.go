package slack

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string, seen map[string]*http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		method := strings.TrimPrefix(r.URL.Path, "/")
		if seen != nil {
			seen[method] = r
		}
		body, ok := routes[method]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_PostAttachment(t *testing.T) {
	seen := map[string]*http.Request{}
	srv := newTestServer(t, map[string]string{
		"chat.postMessage": `{"ok":true,"channel":"C1","ts":"1700000000.000100"}`,
	}, seen)

	c, err := NewClient("xoxb-test", WithAPIURL(srv.URL))
	require.NoError(t, err)

	err = c.PostAttachment("C1", "body text", Attachment{
		Title:     "deploy",
		TitleLink: "https://example.com/build/1",
		Text:      "body text",
		Color:     "good",
		Fallback:  "deploy finished",
	})
	require.NoError(t, err)

	req := seen["chat.postMessage"]
	require.NotNil(t, req)
	assert.Equal(t, "C1", req.FormValue("channel"))
	assert.Equal(t, "body text", req.FormValue("text"))

	var atts []map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.FormValue("attachments")), &atts))
	require.Len(t, atts, 1)
	assert.Equal(t, "deploy", atts[0]["title"])
	assert.Equal(t, "https://example.com/build/1", atts[0]["title_link"])
	assert.Equal(t, "good", atts[0]["color"])
	assert.Equal(t, "deploy finished", atts[0]["fallback"])
}

func TestClient_PostAttachment_APIError(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"chat.postMessage": `{"ok":false,"error":"channel_not_found"}`,
	}, nil)

	c, err := NewClient("xoxb-test", WithAPIURL(srv.URL+"/"))
	require.NoError(t, err)

	err = c.PostAttachment("missing", "", Attachment{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestClient_Verify(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"auth.test": `{"ok":true,"url":"https://acme.slack.com/","team":"Acme","user":"deco-bot","team_id":"T1","user_id":"U1"}`,
	}, nil)

	c, err := NewClient("xoxb-test", WithAPIURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	id, err := c.Verify()
	require.NoError(t, err)
	assert.Equal(t, &Identity{
		UserID: "U1",
		User:   "deco-bot",
		TeamID: "T1",
		Team:   "Acme",
		URL:    "https://acme.slack.com/",
	}, id)
}

func TestClient_Verify_InvalidAuth(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"auth.test": `{"ok":false,"error":"invalid_auth"}`,
	}, nil)

	c, err := NewClient("bad", WithAPIURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
}

func TestNewClient_InvalidAPIURL(t *testing.T) {
	tests := []string{"::bad", "no-scheme", "http://"}
	for _, apiURL := range tests {
		t.Run(apiURL, func(t *testing.T) {
			_, err := NewClient("token", WithAPIURL(apiURL))
			assert.Error(t, err)
		})
	}
}

func TestNewClient_Default(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	assert.NotNil(t, c.API())
}
