package slack

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/slack-go/slack"
)

type Client struct {
	api *slack.Client
}

// Identity is the result of an auth.test call
type Identity struct {
	UserID string
	User   string
	TeamID string
	Team   string
	URL    string
}

// Option configures the underlying Web API client
type Option func(*options)

type options struct {
	apiURL     string
	httpClient *http.Client
}

// WithAPIURL points the client at a different Web API endpoint
func WithAPIURL(apiURL string) Option {
	return func(o *options) {
		o.apiURL = apiURL
	}
}

// WithHTTPClient sets the HTTP client used for Web API calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func NewClient(token string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var slackOpts []slack.Option
	if o.apiURL != "" {
		u, err := url.Parse(o.apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid slack api url %q: %w", o.apiURL, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid slack api url %q: scheme and host are required", o.apiURL)
		}
		// Method names are appended directly to the endpoint
		endpoint := o.apiURL
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		slackOpts = append(slackOpts, slack.OptionAPIURL(endpoint))
	}
	if o.httpClient != nil {
		slackOpts = append(slackOpts, slack.OptionHTTPClient(o.httpClient))
	}

	return &Client{
		api: slack.New(token, slackOpts...),
	}, nil
}

// Verify checks the token with auth.test
func (c *Client) Verify() (*Identity, error) {
	authTest, err := c.api.AuthTest()
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID: authTest.UserID,
		User:   authTest.User,
		TeamID: authTest.TeamID,
		Team:   authTest.Team,
		URL:    authTest.URL,
	}, nil
}

func (c *Client) API() *slack.Client {
	return c.api
}
