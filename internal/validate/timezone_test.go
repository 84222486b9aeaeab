package validate

import (
	"errors"
	"testing"
	"time"
)

func TestParseISODateTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantZone string
		wantUTC  string
		wantErr  bool
	}{
		{
			name:     "summer central offset resolves to Chicago",
			input:    "2023-06-01T10:00:00-05:00",
			wantZone: "America/Chicago",
			wantUTC:  "2023-06-01T15:00:00Z",
		},
		{
			name:     "winter eastern offset resolves to New York",
			input:    "2023-01-15T10:00:00-05:00",
			wantZone: "America/New_York",
			wantUTC:  "2023-01-15T15:00:00Z",
		},
		{
			name:     "summer eastern offset resolves to New York",
			input:    "2023-06-01T10:00:00-04:00",
			wantZone: "America/New_York",
			wantUTC:  "2023-06-01T14:00:00Z",
		},
		{
			name:     "zero offset resolves to UTC in winter",
			input:    "2023-01-15T10:00:00+00:00",
			wantZone: "UTC",
			wantUTC:  "2023-01-15T10:00:00Z",
		},
		{
			name:     "india offset resolves to Kolkata",
			input:    "2023-06-01T10:00:00+05:30",
			wantZone: "Asia/Kolkata",
			wantUTC:  "2023-06-01T04:30:00Z",
		},
		{
			name:    "offset matching no zone",
			input:   "2023-06-01T10:00:00-05:17",
			wantErr: true,
		},
		{
			name:    "missing offset",
			input:   "2023-06-01T10:00:00",
			wantErr: true,
		},
		{
			name:    "zulu suffix rejected",
			input:   "2023-06-01T10:00:00Z",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "not-a-time",
			wantErr: true,
		},
		{
			name:    "date only",
			input:   "2023-06-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zt, err := ParseISODateTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseISODateTime(%q) = %+v, want error", tt.input, zt)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseISODateTime(%q) error = %v", tt.input, err)
			}
			if zt.Zone != tt.wantZone {
				t.Errorf("zone = %s, want %s", zt.Zone, tt.wantZone)
			}
			want, _ := time.Parse(time.RFC3339, tt.wantUTC)
			if !zt.UTC.Equal(want) {
				t.Errorf("utc = %s, want %s", zt.UTC, want)
			}
		})
	}
}

func TestParseISODateTimeMalformedTimezone(t *testing.T) {
	_, err := ParseISODateTime("2023-06-01T10:00:00-05:17")
	if !errors.Is(err, ErrMalformedTimezone) {
		t.Errorf("error = %v, want ErrMalformedTimezone", err)
	}
}

func TestResolveZoneDSTAware(t *testing.T) {
	// The same -05:00 offset means different zones depending on the
	// instant: Chicago in summer, New York in winter.
	summer := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	winter := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	zone, ok := resolveZone(summer, -5*3600)
	if !ok || zone != "America/Chicago" {
		t.Errorf("summer -05:00 = %s, want America/Chicago", zone)
	}
	zone, ok = resolveZone(winter, -5*3600)
	if !ok || zone != "America/New_York" {
		t.Errorf("winter -05:00 = %s, want America/New_York", zone)
	}
}
