package maintenance

import (
	"testing"
	"time"
)

func TestEvaluateNilWindow(t *testing.T) {
	if got := Evaluate(nil, time.Now()); got != Within {
		t.Errorf("nil window = %s, want WITHIN", got)
	}
}

func TestEvaluate(t *testing.T) {
	// 2026-03-02 is a Monday.
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		window Window
		want   Eligibility
	}{
		{
			name: "window opens later today",
			window: Window{
				Schedule: "0 12 * * *",
				Duration: time.Hour,
				Timezone: "UTC",
			},
			want: Before,
		},
		{
			name: "window opened five minutes ago",
			window: Window{
				Schedule: "55 9 * * *",
				Duration: 10 * time.Minute,
				Timezone: "UTC",
			},
			want: Within,
		},
		{
			name: "window opens exactly now",
			window: Window{
				Schedule: "0 10 * * *",
				Duration: time.Hour,
				Timezone: "UTC",
			},
			want: Within,
		},
		{
			name: "window closed an hour ago, next one tomorrow",
			window: Window{
				Schedule: "0 8 * * *",
				Duration: time.Hour,
				Timezone: "UTC",
			},
			want: Before,
		},
		{
			name: "timezone shifts the evaluation instant",
			window: Window{
				// 10:00 UTC is 05:00 in New York; the 05:00 local window
				// is open right now.
				Schedule: "0 5 * * *",
				Duration: 30 * time.Minute,
				Timezone: "America/New_York",
			},
			want: Within,
		},
		{
			name: "seconds field accepted",
			window: Window{
				Schedule: "0 0 10 * * *",
				Duration: time.Minute,
				Timezone: "UTC",
			},
			want: Within,
		},
		{
			name: "recurrence exhausted",
			window: Window{
				// February 30th never occurs; cron's search gives up.
				Schedule: "0 0 30 2 *",
				Duration: time.Hour,
				Timezone: "UTC",
			},
			want: AfterDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(&tt.window, now); got != tt.want {
				t.Errorf("Evaluate = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Window{Schedule: "0 2 * * *", Duration: time.Hour, Timezone: "Europe/Berlin"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}

	var nilWindow *Window
	if err := nilWindow.Validate(); err != nil {
		t.Fatalf("nil window rejected: %v", err)
	}

	tests := []struct {
		name   string
		window Window
	}{
		{"bad schedule", Window{Schedule: "not cron", Duration: time.Hour, Timezone: "UTC"}},
		{"zero duration", Window{Schedule: "0 2 * * *", Duration: 0, Timezone: "UTC"}},
		{"negative duration", Window{Schedule: "0 2 * * *", Duration: -time.Minute, Timezone: "UTC"}},
		{"bad timezone", Window{Schedule: "0 2 * * *", Duration: time.Hour, Timezone: "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.window.Validate(); err == nil {
				t.Error("invalid window accepted")
			}
		})
	}
}
