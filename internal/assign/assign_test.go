package assign_test

import (
	"testing"
	"time"

	"github.com/geocoder89/vidtrack/internal/assign"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)

	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}

	return parsed
}

func TestIsOverdue(t *testing.T) {
	base := ts(t, "2024-01-01T00:00:00Z")

	tests := []struct {
		name string
		last *time.Time
		now  time.Time
		want bool
	}{
		{
			name: "never_assigned",
			last: nil,
			now:  base.Add(100 * time.Hour),
			want: false,
		},
		{
			name: "well_within_threshold",
			last: &base,
			now:  base.Add(29 * time.Hour),
			want: false,
		},
		{
			name: "exactly_at_threshold_is_not_overdue",
			last: &base,
			now:  base.Add(30 * time.Hour),
			want: false,
		},
		{
			name: "one_minute_past_threshold",
			last: &base,
			now:  base.Add(30*time.Hour + time.Minute),
			want: true,
		},
		{
			name: "far_past_threshold",
			last: &base,
			now:  base.Add(31 * time.Hour),
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := assign.IsOverdue(tt.last, tt.now)

			if got != tt.want {
				t.Fatalf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	base := ts(t, "2024-01-01T00:00:00Z")

	tests := []struct {
		name string
		last *time.Time
		now  time.Time
		want assign.Status
	}{
		{
			name: "nil_is_unassigned",
			last: nil,
			now:  base,
			want: assign.StatusUnassigned,
		},
		{
			// a user who was never assigned does not become overdue,
			// no matter how much time passes since creation
			name: "nil_stays_unassigned_past_threshold",
			last: nil,
			now:  base.Add(31 * time.Hour),
			want: assign.StatusUnassigned,
		},
		{
			name: "on_time_at_29h",
			last: &base,
			now:  base.Add(29 * time.Hour),
			want: assign.StatusOnTime,
		},
		{
			name: "on_time_at_exact_threshold",
			last: &base,
			now:  base.Add(30 * time.Hour),
			want: assign.StatusOnTime,
		},
		{
			name: "overdue_at_31h",
			last: &base,
			now:  base.Add(31 * time.Hour),
			want: assign.StatusOverdue,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := assign.Classify(tt.last, tt.now)

			if got != tt.want {
				t.Fatalf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

// every (instant, now) pair must land in exactly one status bucket
func TestClassifyPartitions(t *testing.T) {
	base := ts(t, "2024-01-01T00:00:00Z")

	instants := []*time.Time{nil, &base}
	offsets := []time.Duration{0, time.Minute, 29 * time.Hour, 30 * time.Hour, 30*time.Hour + time.Second, 100 * time.Hour}

	for _, last := range instants {
		for _, off := range offsets {
			now := base.Add(off)
			status := assign.Classify(last, now)

			switch status {
			case assign.StatusUnassigned:
				if last != nil {
					t.Fatalf("unassigned with non-nil instant at offset %v", off)
				}
			case assign.StatusOverdue:
				if last == nil || !assign.IsOverdue(last, now) {
					t.Fatalf("overdue mismatch at offset %v", off)
				}
			case assign.StatusOnTime:
				if last == nil || assign.IsOverdue(last, now) {
					t.Fatalf("onTime mismatch at offset %v", off)
				}
			default:
				t.Fatalf("unknown status %q", status)
			}
		}
	}
}

func TestRemainingText(t *testing.T) {
	base := ts(t, "2024-01-01T00:00:00Z")

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "full_threshold_left",
			now:  base,
			want: "30h 0m",
		},
		{
			name: "one_hour_left",
			now:  base.Add(29 * time.Hour),
			want: "1h 0m",
		},
		{
			name: "ninety_minutes_left",
			now:  base.Add(28*time.Hour + 30*time.Minute),
			want: "1h 30m",
		},
		{
			name: "one_hour_past_due",
			now:  base.Add(31 * time.Hour),
			want: "-1h 0m",
		},
		{
			name: "partial_minutes_floor",
			now:  base.Add(28*time.Hour + 30*time.Minute + 45*time.Second),
			want: "1h 29m",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := assign.RemainingText(base, tt.now)

			if got != tt.want {
				t.Fatalf("RemainingText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDisplay(t *testing.T) {
	if got := assign.FormatDisplay(nil); got != assign.UnassignedText {
		t.Fatalf("nil display = %q, want %q", got, assign.UnassignedText)
	}

	// midnight UTC lands at 05:30 in the display zone
	at := ts(t, "2024-01-01T00:00:00Z")
	got := assign.FormatDisplay(&at)
	want := "Mon, 01 Jan 2024, 05:30 IST"

	if got != want {
		t.Fatalf("display = %q, want %q", got, want)
	}
}

func TestParseManualInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "rfc3339",
			input: "2024-01-01T00:00:00Z",
			want:  "2024-01-01T00:00:00Z",
		},
		{
			name:  "datetime_local_without_zone_is_utc",
			input: "2024-06-01T10:00",
			want:  "2024-06-01T10:00:00Z",
		},
		{
			name:  "offset_normalized_to_utc",
			input: "2024-06-01T10:00:00+05:30",
			want:  "2024-06-01T04:30:00Z",
		},
		{
			name:  "date_only",
			input: "2024-06-01",
			want:  "2024-06-01T00:00:00Z",
		},
		{
			name:    "not_a_date",
			input:   "not-a-date",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got, err := assign.ParseManualInput(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, got)
				}

				if assign.IsValidManualInput(tt.input) {
					t.Fatalf("IsValidManualInput(%q) = true, want false", tt.input)
				}
				return
			}

			if err != nil {
				t.Fatalf("parse %q: %v", tt.input, err)
			}

			if got.Format(time.RFC3339) != tt.want {
				t.Fatalf("parse %q = %s, want %s", tt.input, got.Format(time.RFC3339), tt.want)
			}

			if !assign.IsValidManualInput(tt.input) {
				t.Fatalf("IsValidManualInput(%q) = false, want true", tt.input)
			}
		})
	}
}
