package models

import (
	"testing"
	"time"
)

func TestPairKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"already ordered", "101", "202", "101|202"},
		{"reversed", "202", "101", "101|202"},
		{"lexicographic not numeric", "9", "10", "10|9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PairKey(tt.a, tt.b); got != tt.want {
				t.Errorf("PairKey(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFixturePairKeyOrderIndependent(t *testing.T) {
	home := Fixture{HomeID: "359", AwayID: "360"}
	away := Fixture{HomeID: "360", AwayID: "359"}
	if home.PairKey() != away.PairKey() {
		t.Errorf("pair keys differ: %s vs %s", home.PairKey(), away.PairKey())
	}
}

func TestHistoricalGameTotal(t *testing.T) {
	g := HistoricalGame{HomeScore: 2, AwayScore: 1}
	if g.Total() != 3 {
		t.Errorf("Total() = %d, want 3", g.Total())
	}
}

func TestSameDay(t *testing.T) {
	base := time.Date(2025, 5, 10, 23, 30, 0, 0, time.UTC)

	if !SameDay(base, base.Add(20*time.Minute)) {
		t.Error("timestamps 20 minutes apart on the same day reported as different days")
	}
	if SameDay(base, base.Add(time.Hour)) {
		t.Error("timestamps across midnight reported as the same day")
	}

	// Zone-shifted timestamps compare on their UTC day
	ny, _ := time.LoadLocation("America/New_York")
	if !SameDay(base, base.In(ny)) {
		t.Error("same instant in different zones reported as different days")
	}
}

func TestESPNDate(t *testing.T) {
	d := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	if got := ESPNDate(d); got != "20250510" {
		t.Errorf("ESPNDate() = %s, want 20250510", got)
	}
}

func TestParseESPNTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"RFC3339", "2025-05-10T15:00:00Z", true},
		{"short scoreboard form", "2025-05-10T15:00Z", true},
		{"garbage", "next saturday", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseESPNTimestamp(tt.raw)
			if tt.ok && err != nil {
				t.Fatalf("ParseESPNTimestamp(%q) error = %v", tt.raw, err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("ParseESPNTimestamp(%q) succeeded, want error", tt.raw)
				}
				return
			}
			want := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
			if !got.Equal(want) {
				t.Errorf("parsed %v, want %v", got, want)
			}
		})
	}
}
