package leasing

import (
	"testing"
	"time"
)

func TestDateOfDropsClock(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	instant := time.Date(2024, time.March, 5, 23, 45, 12, 0, manila)
	got := DateOf(instant)
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestMonthDayClamp(t *testing.T) {
	cases := []struct {
		year   int
		month  time.Month
		months int
		day    int
		want   time.Time
	}{
		{2024, time.January, 0, 31, date(2024, time.January, 31)},
		{2024, time.January, 1, 31, date(2024, time.February, 29)},
		{2023, time.January, 1, 31, date(2023, time.February, 28)},
		{2024, time.January, 3, 31, date(2024, time.April, 30)},
		{2024, time.December, 1, 15, date(2025, time.January, 15)},
	}
	for _, tc := range cases {
		got := MonthDay(tc.year, tc.month, tc.months, tc.day)
		if !got.Equal(tc.want) {
			t.Fatalf("MonthDay(%d,%s,%d,%d) = %s, want %s", tc.year, tc.month, tc.months, tc.day, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	from := date(2024, time.January, 30)
	to := date(2024, time.February, 1)
	if got := DaysBetween(from, to); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
	if got := DaysBetween(to, from); got != -2 {
		t.Fatalf("expected -2 days, got %d", got)
	}
}
