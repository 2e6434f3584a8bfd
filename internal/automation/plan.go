// Package automation runs the pipeline stages on a daily schedule. The
// schedule and stage order live in an operator-edited YAML plan, so
// reordering stages or changing the run time never needs a rebuild.
package automation

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// clockLayout is the HH:MM form the plan's schedule time uses.
const clockLayout = "15:04"

// Plan is the parsed automation plan.
type Plan struct {
	Schedule Schedule    `yaml:"schedule"`
	Stages   []StageSpec `yaml:"stages"`
}

// Schedule says when the daily run starts, in the home timezone.
type Schedule struct {
	Frequency string `yaml:"frequency"`
	Time      string `yaml:"time"`
}

// StageSpec names one stage to run and how long to pause after it
// succeeds before the next stage starts.
type StageSpec struct {
	Name       string `yaml:"name"`
	DelayAfter int    `yaml:"delay_after"`
}

// Delay returns the post-stage pause.
func (s StageSpec) Delay() time.Duration {
	return time.Duration(s.DelayAfter) * time.Second
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPlan: %w", err)
	}
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("LoadPlan: parsing %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("LoadPlan: %s: %w", path, err)
	}
	return &plan, nil
}

// Validate rejects plans the runner could not execute. Only daily
// frequency is supported.
func (p *Plan) Validate() error {
	if p.Schedule.Frequency != "daily" {
		return fmt.Errorf("schedule frequency %q is not supported, use daily", p.Schedule.Frequency)
	}
	if _, err := time.Parse(clockLayout, p.Schedule.Time); err != nil {
		return fmt.Errorf("schedule time %q is not HH:MM: %w", p.Schedule.Time, err)
	}
	if len(p.Stages) == 0 {
		return fmt.Errorf("plan has no stages")
	}
	for i, spec := range p.Stages {
		if spec.Name == "" {
			return fmt.Errorf("stage %d has no name", i)
		}
		if spec.DelayAfter < 0 {
			return fmt.Errorf("stage %s: delay_after must not be negative", spec.Name)
		}
	}
	return nil
}

// NextRun returns the first scheduled instant after now in loc. A run
// time that already passed today schedules for tomorrow.
func (p *Plan) NextRun(now time.Time, loc *time.Location) (time.Time, error) {
	at, err := time.Parse(clockLayout, p.Schedule.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("NextRun: schedule time %q: %w", p.Schedule.Time, err)
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), at.Hour(), at.Minute(), 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
