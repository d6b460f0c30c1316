package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polidog/deco-slack/internal/config"
	"github.com/polidog/deco-slack/internal/slack"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DECO_SLACK_CONFIG", "")
	t.Setenv("DECO_SLACK_LOG_LEVEL", "error")
	t.Setenv(config.PrefixEnv, "")
	t.Setenv(config.TokenEnv, "")
	t.Setenv(config.ChannelEnv, "")
}

func writeJob(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

const testJob = `
start:
  title: start
  color: good
success:
  title: success
  color: good
error:
  title: error
  color: danger
mocking: true
`

func TestApp_RunSuccess(t *testing.T) {
	isolate(t)
	requireShell(t)

	var stdout, stderr bytes.Buffer
	a, err := New(WithConfigPath(writeJob(t, testJob)), WithIO(nil, &stdout, &stderr))
	require.NoError(t, err)

	code, err := a.Run(context.Background(), "sh", []string{"-c", "echo body"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "start good\nbody\nsuccess good\n", stdout.String())
}

func TestApp_RunFailure(t *testing.T) {
	isolate(t)
	requireShell(t)

	var stdout, stderr bytes.Buffer
	a, err := New(WithConfigPath(writeJob(t, testJob)), WithIO(nil, &stdout, &stderr), WithAttachOutput())
	require.NoError(t, err)

	code, err := a.Run(context.Background(), "sh", []string{"-c", "echo oops >&2; exit 3"})
	require.Error(t, err)
	assert.Equal(t, 3, code)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.ExitCode)
	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "start good\n"), out)
	assert.Contains(t, out, "exit status 3")
	assert.Contains(t, out, "oops")
	assert.NotContains(t, out, "success good")
	assert.Contains(t, stderr.String(), "oops")
}

func TestApp_RunMissingCommand(t *testing.T) {
	isolate(t)

	var stdout bytes.Buffer
	a, err := New(WithMocking(), WithIO(nil, &stdout, &bytes.Buffer{}))
	require.NoError(t, err)

	code, err := a.Run(context.Background(), "deco-slack-no-such-command", nil)
	require.Error(t, err)
	assert.Equal(t, 127, code)
	assert.Contains(t, stdout.String(), "deco-slack-no-such-command started good")
	assert.Contains(t, stdout.String(), "deco-slack-no-such-command failed danger")
}

func TestApp_RunPostsToSlack(t *testing.T) {
	isolate(t)
	requireShell(t)

	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "C42", r.FormValue("channel"))
		texts = append(texts, r.FormValue("text"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C42","ts":"1.1"}`))
	}))
	defer srv.Close()

	var stdout bytes.Buffer
	a, err := New(
		WithConfigPath(writeJob(t, `
success:
  title: backup done
  text: nightly
slack:
  channel: C42
`)),
		WithSlack(config.Slack{Token: "xoxb-flag"}),
		WithSlackClientOptions(slack.WithAPIURL(srv.URL)),
		WithAttachOutput(),
		WithIO(nil, &stdout, &bytes.Buffer{}),
	)
	require.NoError(t, err)

	code, err := a.Run(context.Background(), "sh", []string{"-c", "echo 42 files"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	require.Len(t, texts, 1)
	assert.True(t, strings.HasPrefix(texts[0], "nightly\nfinished in "), texts[0])
	assert.Contains(t, texts[0], "```42 files```")
}

func TestApp_Check(t *testing.T) {
	isolate(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"team":"Acme","user":"bot","team_id":"T1","user_id":"U1"}`))
	}))
	defer srv.Close()

	t.Setenv("OPS_SLACK_TOKEN", "xoxb-ops")
	t.Setenv("OPS_SLACK_CHANNEL", "#ops")

	a, err := New(WithSlack(config.Slack{Prefix: "OPS_"}), WithSlackClientOptions(slack.WithAPIURL(srv.URL)))
	require.NoError(t, err)

	id, settings, err := a.Check()
	require.NoError(t, err)
	assert.Equal(t, "Acme", id.Team)
	assert.Equal(t, "#ops", settings.Channel)
}

func TestApp_CheckWithoutToken(t *testing.T) {
	isolate(t)

	a, err := New()
	require.NoError(t, err)

	_, _, err = a.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_TOKEN")
}

func TestApp_CheckRejectsBrokenJobFile(t *testing.T) {
	isolate(t)
	t.Setenv(config.TokenEnv, "xoxb-env")

	a, err := New(WithConfigPath(writeJob(t, "start: [not, a, map]\n")))
	require.NoError(t, err)

	_, _, err = a.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing job file")
}

func TestLoadJob(t *testing.T) {
	job, err := LoadJob(writeJob(t, `
start:
  title: start
  text: beginning
  title_link: https://ci.example.com/1
  attachment_type: default
error:
  title: error
  color: danger
  stacktrace: true
mocking: true
slack:
  prefix: NIGHTLY_
`))
	require.NoError(t, err)

	require.NotNil(t, job.Start)
	assert.Equal(t, "start", job.Start.Title)
	assert.Equal(t, "beginning", job.Start.Text)
	assert.Equal(t, "https://ci.example.com/1", job.Start.TitleLink)
	assert.Equal(t, "default", job.Start.AttachmentType)
	assert.Nil(t, job.Success)
	require.NotNil(t, job.Error)
	assert.True(t, job.Error.Stacktrace)
	assert.True(t, job.Mocking)
	assert.Equal(t, "NIGHTLY_", job.Slack.Prefix)
}

func TestLoadJob_Errors(t *testing.T) {
	_, err := LoadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadJob(writeJob(t, "mocking: true\n"))
	assert.True(t, errors.Is(err, ErrNoTemplates))

	_, err = LoadJob(writeJob(t, "start: [not, a, map]\n"))
	assert.Error(t, err)
}

func TestTailBuffer(t *testing.T) {
	b := newTailBuffer(5)
	_, _ = b.Write([]byte("abc"))
	_, _ = b.Write([]byte("defg"))
	assert.Equal(t, "cdefg", b.String())
}
