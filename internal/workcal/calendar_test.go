package workcal

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDay_TruncatesToMidnightUTC(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, time.March, 14, 17, 45, 3, 12, time.UTC)
	got := Day(in)

	if !got.Equal(date(2024, time.March, 14)) {
		t.Fatalf("expected 2024-03-14T00:00:00Z, got %v", got)
	}
}

func TestStartOfWeek(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday maps to itself", date(2024, time.March, 11), date(2024, time.March, 11)},
		{"thursday maps to monday", date(2024, time.March, 14), date(2024, time.March, 11)},
		{"saturday maps to preceding monday", date(2024, time.March, 16), date(2024, time.March, 11)},
		{"sunday maps to preceding monday", date(2024, time.March, 17), date(2024, time.March, 11)},
		{"month boundary", date(2024, time.April, 1), date(2024, time.April, 1)},
		{"year boundary", date(2024, time.January, 1), date(2024, time.January, 1)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := StartOfWeek(tc.in); !got.Equal(tc.want) {
				t.Fatalf("StartOfWeek(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestWorkWeek_SpansMondayToFriday(t *testing.T) {
	t.Parallel()

	monday, friday := WorkWeek(date(2024, time.March, 14))

	if !monday.Equal(date(2024, time.March, 11)) {
		t.Fatalf("expected monday 2024-03-11, got %v", monday)
	}
	if !friday.Equal(date(2024, time.March, 15)) {
		t.Fatalf("expected friday 2024-03-15, got %v", friday)
	}
	if friday.Weekday() != time.Friday {
		t.Fatalf("expected Friday, got %v", friday.Weekday())
	}
}

func TestMonthRange(t *testing.T) {
	t.Parallel()

	first, last := MonthRange(2023, time.February)

	if !first.Equal(date(2023, time.February, 1)) {
		t.Fatalf("expected 2023-02-01, got %v", first)
	}
	if !last.Equal(date(2023, time.February, 28)) {
		t.Fatalf("expected 2023-02-28, got %v", last)
	}

	_, leapLast := MonthRange(2024, time.February)
	if !leapLast.Equal(date(2024, time.February, 29)) {
		t.Fatalf("expected 2024-02-29, got %v", leapLast)
	}
}

func TestWorkingDaysInMonth_HandComputedCalendars(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"february 2023, 28 days", 2023, time.February, 20},
		{"june 2023, 30 days", 2023, time.June, 22},
		{"july 2023, 31 days", 2023, time.July, 21},
		{"february 2024, leap", 2024, time.February, 21},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := WorkingDaysInMonth(tc.year, tc.month); got != tc.want {
				t.Fatalf("WorkingDaysInMonth(%d, %v) = %d, want %d", tc.year, tc.month, got, tc.want)
			}
		})
	}
}

func TestIsWorkingDay(t *testing.T) {
	t.Parallel()

	if IsWorkingDay(date(2024, time.March, 16)) {
		t.Fatal("saturday should not be a working day")
	}
	if IsWorkingDay(date(2024, time.March, 17)) {
		t.Fatal("sunday should not be a working day")
	}
	if !IsWorkingDay(date(2024, time.March, 13)) {
		t.Fatal("wednesday should be a working day")
	}
}
