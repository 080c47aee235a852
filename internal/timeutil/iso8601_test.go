package timeutil

import "testing"

func TestParseISO8601Fixtures(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"2025-01-01T00:00:00Z", 1735689600},
		{"2025-01-01T00:00:00.123456Z", 1735689600},
		{"2025-01-01T09:00:00+09:00", 1735689600},
		{"2025-01-01T00:00:00-0530", 1735689600 + 5*3600 + 30*60},
		{"1970-01-01T00:00:00Z", 0},
	}
	for _, c := range cases {
		got, err := ParseISO8601ToUTCSeconds(c.in)
		if err != nil {
			t.Errorf("ParseISO8601ToUTCSeconds(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseISO8601ToUTCSeconds(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseISO8601LeapSecond(t *testing.T) {
	got, err := ParseISO8601ToUTCSeconds("2025-06-30T23:59:60Z")
	if err != nil {
		t.Fatalf("unexpected error for leap second: %v", err)
	}
	want, _ := ParseISO8601ToUTCSeconds("2025-07-01T00:00:00Z")
	if got != want {
		t.Fatalf("leap second not folded: got %d, want %d", got, want)
	}
}

func TestParseISO8601InvalidFormat(t *testing.T) {
	_, err := ParseISO8601ToUTCSeconds("not-a-timestamp")
	if err != ErrInvalidFormat {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestParseISO8601InvalidDate(t *testing.T) {
	_, err := ParseISO8601ToUTCSeconds("2025-13-40T00:00:00Z")
	if err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseISO8601InvalidTimeZone(t *testing.T) {
	_, err := ParseISO8601ToUTCSeconds("2025-01-01T00:00:00+25:99")
	if err != ErrInvalidTimeZone {
		t.Fatalf("expected ErrInvalidTimeZone, got %v", err)
	}
}

func TestParseISO8601AcceptsMixedFixtures(t *testing.T) {
	fixtures := []string{
		"2025-03-15T12:34:56Z",
		"2025-11-01T23:30:00+09:00",
		"2024-02-29T12:00:00.5Z",
	}
	for _, f := range fixtures {
		if _, err := ParseISO8601ToUTCSeconds(f); err != nil {
			t.Errorf("ParseISO8601ToUTCSeconds(%q) failed: %v", f, err)
		}
	}
}
