package attendance

import (
	"testing"
	"time"
)

func TestIsExpired(t *testing.T) {
	t.Parallel()

	santiago := time.FixedZone("CLT", -4*60*60)

	tests := []struct {
		name    string
		session Session
		now     time.Time
		want    bool
	}{
		{
			name:    "open before the end time",
			session: Session{Date: DatePtr(2025, time.June, 1), End: TimePtr(18, 0, 0)},
			now:     time.Date(2025, time.June, 1, 17, 59, 59, 0, time.UTC),
			want:    false,
		},
		{
			name:    "open at the exact end instant",
			session: Session{Date: DatePtr(2025, time.June, 1), End: TimePtr(18, 0, 0)},
			now:     time.Date(2025, time.June, 1, 18, 0, 0, 0, time.UTC),
			want:    false,
		},
		{
			name:    "closed one second after the end",
			session: Session{Date: DatePtr(2025, time.June, 1), End: TimePtr(18, 0, 0)},
			now:     time.Date(2025, time.June, 1, 18, 0, 1, 0, time.UTC),
			want:    true,
		},
		{
			name:    "closed one nanosecond after the end",
			session: Session{Date: DatePtr(2025, time.June, 1), End: TimePtr(18, 0, 0)},
			now:     time.Date(2025, time.June, 1, 18, 0, 0, 1, time.UTC),
			want:    true,
		},
		{
			name:    "date present but end time missing fails closed",
			session: Session{Date: DatePtr(2025, time.June, 1), Start: TimePtr(16, 0, 0)},
			now:     time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
			want:    true,
		},
		{
			name:    "end time present but date missing fails closed",
			session: Session{End: TimePtr(18, 0, 0)},
			now:     time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
			want:    true,
		},
		{
			name:    "no temporal fields fails closed",
			session: Session{},
			now:     time.Unix(0, 0).Add(-time.Hour),
			want:    true,
		},
		{
			name:    "start time is not used",
			session: Session{Date: DatePtr(2025, time.June, 1), Start: TimePtr(23, 0, 0), End: TimePtr(18, 0, 0)},
			now:     time.Date(2025, time.June, 1, 19, 0, 0, 0, time.UTC),
			want:    true,
		},
		{
			name:    "wall clock follows the location of now",
			session: Session{Date: DatePtr(2025, time.June, 1), End: TimePtr(20, 0, 0)},
			now:     time.Date(2025, time.June, 1, 19, 30, 0, 0, santiago),
			want:    false,
		},
		{
			name:    "previous day is still open",
			session: Session{Date: DatePtr(2025, time.June, 2), End: TimePtr(0, 0, 0)},
			now:     time.Date(2025, time.June, 1, 23, 59, 59, 0, time.UTC),
			want:    false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsExpired(tc.session, tc.now); got != tc.want {
				t.Fatalf("IsExpired = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExpirationWithoutEndIsFarPast(t *testing.T) {
	t.Parallel()

	got := Expiration(Session{Date: DatePtr(2025, time.June, 1)}, time.UTC)
	if !got.Equal(time.Unix(0, 0)) {
		t.Fatalf("expected epoch fallback, got %s", got)
	}

	got = Expiration(Session{Date: DatePtr(2025, time.June, 1), End: TimePtr(18, 30, 15)}, nil)
	want := time.Date(2025, time.June, 1, 18, 30, 15, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseCalendarValues(t *testing.T) {
	t.Parallel()

	t.Run("date", func(t *testing.T) {
		t.Parallel()
		d, err := ParseDate("2025-06-01")
		if err != nil {
			t.Fatalf("ParseDate returned error: %v", err)
		}
		if d != (Date{Year: 2025, Month: time.June, Day: 1}) || d.String() != "2025-06-01" {
			t.Fatalf("unexpected date %+v", d)
		}
		if _, err := ParseDate("01/06/2025"); err == nil {
			t.Fatalf("expected error for day-first date")
		}
	})

	t.Run("time with and without seconds", func(t *testing.T) {
		t.Parallel()
		short, err := ParseTimeOfDay("20:00")
		if err != nil {
			t.Fatalf("ParseTimeOfDay returned error: %v", err)
		}
		long, err := ParseTimeOfDay("18:00:01")
		if err != nil {
			t.Fatalf("ParseTimeOfDay returned error: %v", err)
		}
		if short.String() != "20:00:00" || long.String() != "18:00:01" {
			t.Fatalf("unexpected times %s %s", short, long)
		}
		if !long.Before(short) {
			t.Fatalf("expected 18:00:01 before 20:00:00")
		}
		if _, err := ParseTimeOfDay("25:00"); err == nil {
			t.Fatalf("expected error for out of range hour")
		}
	})
}
