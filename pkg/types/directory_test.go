// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"
)

func TestParsePublishedOn(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{"full date", "2023-06-15", time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"year and month", "2023-06", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"bare year", "2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"timestamp truncated", "2023-06-15T09:30:00Z", time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"surrounding whitespace", "  2023-06-15 ", time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "last spring", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePublishedOn(tt.value)
			if ok != tt.ok {
				t.Fatalf("ParsePublishedOn(%q) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParsePublishedOn(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestHasRecentPublication(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	stale := time.Now().AddDate(-3, 0, 0).Format("2006-01-02")

	tests := []struct {
		name   string
		pubs   []Publication
		months int
		want   bool
	}{
		{"recent inside window", []Publication{{Title: "A", PublishedOn: recent}}, 6, true},
		{"stale outside window", []Publication{{Title: "A", PublishedOn: stale}}, 6, false},
		{"one recent among stale", []Publication{{Title: "A", PublishedOn: stale}, {Title: "B", PublishedOn: recent}}, 6, true},
		{"unparseable dates ignored", []Publication{{Title: "A", PublishedOn: "n.d."}}, 6, false},
		{"no publications", nil, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRecentPublication(tt.pubs, tt.months); got != tt.want {
				t.Errorf("HasRecentPublication() = %v, want %v", got, tt.want)
			}
		})
	}
}
