package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/polidog/deco-slack/internal/config"
	"github.com/polidog/deco-slack/internal/deco"
	"github.com/polidog/deco-slack/internal/notification"
)

// ErrNoTemplates is returned when a job file defines no template at all
var ErrNoTemplates = errors.New("job file defines no start, success or error template")

// Job is the YAML job file:
//
//	start:
//	  title: nightly backup started
//	  color: good
//	success:
//	  title: nightly backup finished
//	  color: good
//	error:
//	  title: nightly backup failed
//	  color: danger
//	  stacktrace: true
//	slack:
//	  channel: "#ops"
type Job struct {
	deco.Config `yaml:",inline"`

	Slack config.Slack `yaml:"slack"`
}

// LoadJob reads and validates a job file
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing job file %s: %w", path, err)
	}
	if job.Start == nil && job.Success == nil && job.Error == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTemplates)
	}
	return &job, nil
}

// DefaultJob notifies all three events for the named command
func DefaultJob(name string) *Job {
	return &Job{
		Config: deco.Config{
			Start: &deco.Template{Message: notification.Message{
				Title: fmt.Sprintf("%s started", name),
				Color: "good",
			}},
			Success: &deco.Template{Message: notification.Message{
				Title: fmt.Sprintf("%s succeeded", name),
				Color: "good",
			}},
			Error: &deco.Template{Message: notification.Message{
				Title: fmt.Sprintf("%s failed", name),
				Color: "danger",
			}},
		},
	}
}
