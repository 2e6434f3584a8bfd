package automation

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automation.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlan(t *testing.T) {
	path := writePlanFile(t, `
schedule:
  frequency: daily
  time: "02:00"
stages:
  - name: generate
    delay_after: 10
  - name: cleanse
    delay_after: 10
  - name: reconcile
`)

	plan, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if plan.Schedule.Frequency != "daily" || plan.Schedule.Time != "02:00" {
		t.Errorf("schedule = %+v", plan.Schedule)
	}
	if len(plan.Stages) != 3 {
		t.Fatalf("stages = %d, want 3", len(plan.Stages))
	}
	if plan.Stages[0].Name != "generate" || plan.Stages[2].Name != "reconcile" {
		t.Errorf("stage order = %v", plan.Stages)
	}
	if got := plan.Stages[1].Delay(); got != 10*time.Second {
		t.Errorf("cleanse delay = %v, want 10s", got)
	}
	if got := plan.Stages[2].Delay(); got != 0 {
		t.Errorf("reconcile delay = %v, want 0", got)
	}
}

func TestLoadPlanMissingFile(t *testing.T) {
	if _, err := LoadPlan(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("loading a missing plan file should fail")
	}
}

func TestPlanValidate(t *testing.T) {
	valid := func() Plan {
		return Plan{
			Schedule: Schedule{Frequency: "daily", Time: "02:00"},
			Stages:   []StageSpec{{Name: "cleanse"}, {Name: "reconcile"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Plan)
		wantOK bool
	}{
		{"valid", func(*Plan) {}, true},
		{"weekly frequency", func(p *Plan) { p.Schedule.Frequency = "weekly" }, false},
		{"empty frequency", func(p *Plan) { p.Schedule.Frequency = "" }, false},
		{"bad time", func(p *Plan) { p.Schedule.Time = "2am" }, false},
		{"no stages", func(p *Plan) { p.Stages = nil }, false},
		{"unnamed stage", func(p *Plan) { p.Stages[0].Name = "" }, false},
		{"negative delay", func(p *Plan) { p.Stages[0].DelayAfter = -5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := valid()
			tt.mutate(&plan)
			err := plan.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestNextRun(t *testing.T) {
	plan := Plan{Schedule: Schedule{Frequency: "daily", Time: "02:00"}}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"before today's run",
			time.Date(2024, 1, 31, 1, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 2, 0, 0, 0, time.UTC),
		},
		{
			"after today's run",
			time.Date(2024, 1, 31, 3, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			"exactly at the run time",
			time.Date(2024, 1, 31, 2, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := plan.NextRun(tt.now, time.UTC)
			if err != nil {
				t.Fatalf("NextRun: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
