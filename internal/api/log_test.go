package api

import (
	"testing"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "FullRecord",
			input: `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Playback finished" cursor=42 total=42 source=/very/long/path/to/telemetry.csv`,
			want:  "06:50:46 Playback finished (cursor=42, total=42)",
		},
		{
			name:  "QuotedValueTrimmed",
			input: `time=2026-01-18T06:50:46.074+01:00 level=WARN msg="Sample source unavailable" kind="csv "`,
			want:  "06:50:46 Sample source unavailable (kind=csv)",
		},
		{
			name:  "NoParams",
			input: `time=2026-01-18T06:50:46+01:00 level=INFO msg="Startup Checks Summary"`,
			want:  "06:50:46 Startup Checks Summary",
		},
		{
			name:  "NoMessage",
			input: `level=INFO cursor=1`,
			want:  `level=INFO cursor=1`,
		},
		{
			name:  "PlainText",
			input: "not a structured line",
			want:  "not a structured line",
		},
		{
			name:  "Empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLogLine(tt.input); got != tt.want {
				t.Errorf("formatLogLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
