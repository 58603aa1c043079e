package timeutil

import (
	"testing"
	"time"
)

func TestToICTOffset(t *testing.T) {
	utc := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	got := ToICT(utc)

	if got.Hour() != 1 || got.Day() != 11 {
		t.Errorf("expected 01:30 on the 11th, got %v", got)
	}
	_, offset := got.Zone()
	if offset != 7*3600 {
		t.Errorf("expected +07:00 offset, got %d", offset)
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 10, 15, 45, 12, 0, ICT)

	start := StartOfDay(ts)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 || start.Day() != 10 {
		t.Errorf("unexpected start of day: %v", start)
	}

	end := EndOfDay(ts)
	if end.Hour() != 23 || end.Minute() != 59 || end.Day() != 10 {
		t.Errorf("unexpected end of day: %v", end)
	}
	if !end.After(start) {
		t.Error("end of day not after start")
	}
}
