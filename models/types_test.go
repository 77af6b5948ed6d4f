// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func TestWasPublishedRecently(t *testing.T) {
	tests := []struct {
		name    string
		pubDate time.Time
		want    bool
	}{
		{"future question", now.Add(30 * 24 * time.Hour), false},
		{"one second in the future", now.Add(time.Second), false},
		{"exactly now", now, true},
		{"within the last day", now.Add(-(23*time.Hour + 59*time.Minute + 59*time.Second)), true},
		{"exactly one day old", now.Add(-24 * time.Hour), true},
		{"older than one day", now.Add(-(24*time.Hour + time.Second)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{PubDate: tt.pubDate}
			assert.Equal(t, tt.want, q.WasPublishedRecently(now))
		})
	}
}

func TestIsPublished(t *testing.T) {
	tests := []struct {
		name    string
		pubDate time.Time
		want    bool
	}{
		{"future question", now.Add(20 * 24 * time.Hour), false},
		{"published yesterday", now.Add(-24 * time.Hour), true},
		{"published exactly now", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{PubDate: tt.pubDate}
			assert.Equal(t, tt.want, q.IsPublished(now))
		})
	}
}

func TestCanVote(t *testing.T) {
	day := 24 * time.Hour

	tests := []struct {
		name    string
		pubDate time.Time
		endDate time.Time
		want    bool
	}{
		{"future question", now.Add(20 * day), now.Add(25 * day), false},
		{"in the voting period", now, now.Add(5 * day), true},
		{"over end date", now.Add(-5 * day), now.Add(-3 * day), false},
		{"end date exactly now", now.Add(-day), now, true},
		{"pub date exactly now", now, now, true},
		{"one second after end", now.Add(-day), now.Add(-time.Second), false},
		{"one second before pub", now.Add(time.Second), now.Add(day), false},
		{"end before pub is never votable", now.Add(-day), now.Add(-2 * day), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{PubDate: tt.pubDate, EndDate: tt.endDate}
			assert.Equal(t, tt.want, q.CanVote(now))
		})
	}
}

func TestCanVoteImpliesPublished(t *testing.T) {
	for offset := -72; offset <= 72; offset += 6 {
		q := Question{
			PubDate: now.Add(time.Duration(offset) * time.Hour),
			EndDate: now.Add(time.Duration(offset+24) * time.Hour),
		}
		if q.CanVote(now) {
			assert.True(t, q.IsPublished(now), "offset %dh", offset)
		}
	}
}

func TestQuestionString(t *testing.T) {
	assert.Equal(t, "What's up?", Question{QuestionText: "What's up?"}.String())
}
