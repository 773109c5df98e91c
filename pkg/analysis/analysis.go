// Package analysis provides text statistics for journal entries: word counts,
// sentiment scoring, keyword extraction and writing-goal progress.
package analysis

import (
	"strings"
	"time"

	"github.com/jonreiter/govader"
)

// TargetWords is the daily writing goal, after the "morning pages" practice
// of three pages of longhand, roughly 750 words.
const TargetWords = 750

var sentimentAnalyzer = govader.NewSentimentIntensityAnalyzer()

// WordCount counts whitespace-separated words the same way the live editor
// does. Blank or whitespace-only text counts as zero.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Sentiment returns the compound polarity score of the text in [-1, 1].
func Sentiment(text string) float64 {
	return sentimentAnalyzer.PolarityScores(text).Compound
}

// GoalProgress describes how far a word count is toward TargetWords.
type GoalProgress struct {
	Words     int  `json:"words"`
	Remaining int  `json:"remaining"`
	Percent   int  `json:"percent"`
	Reached   bool `json:"reached"`
}

// Progress computes goal progress for a word count. Percent is clamped to 100.
func Progress(wordCount int) GoalProgress {
	remaining := TargetWords - wordCount
	if remaining < 0 {
		remaining = 0
	}
	percent := wordCount * 100 / TargetWords
	if percent > 100 {
		percent = 100
	}
	return GoalProgress{
		Words:     wordCount,
		Remaining: remaining,
		Percent:   percent,
		Reached:   wordCount >= TargetWords,
	}
}

// Stats summarizes a user's journaling history.
type Stats struct {
	TotalWords    int `json:"totalWords"`
	DaysJournaled int `json:"daysJournaled"`
	GoalDays      int `json:"goalDays"`
	GoalDaysPct   int `json:"goalDaysPct"`
	CurrentStreak int `json:"currentStreak"`
}

// EntryStat is the slice of an entry the stats functions need.
type EntryStat struct {
	Date      time.Time
	WordCount int
}

// ComputeStats aggregates totals, goal days and the current streak of
// consecutive journaled days ending today.
func ComputeStats(entries []EntryStat, today time.Time) Stats {
	var s Stats
	dates := make(map[time.Time]bool, len(entries))
	for _, e := range entries {
		s.TotalWords += e.WordCount
		s.DaysJournaled++
		if e.WordCount >= TargetWords {
			s.GoalDays++
		}
		dates[dateOnly(e.Date)] = true
	}
	if s.DaysJournaled > 0 {
		s.GoalDaysPct = s.GoalDays * 100 / s.DaysJournaled
	}

	check := dateOnly(today)
	for dates[check] {
		s.CurrentStreak++
		check = check.AddDate(0, 0, -1)
	}
	return s
}

// SentimentPoint is a dated sentiment score.
type SentimentPoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

// RollingAverage computes, for each point, the mean score over the trailing
// seven days including the point itself. Points must be sorted by date
// ascending.
func RollingAverage(points []SentimentPoint) []float64 {
	avgs := make([]float64, len(points))
	for i, p := range points {
		var sum float64
		var n int
		for _, q := range points {
			days := int(p.Date.Sub(q.Date).Hours() / 24)
			if days >= 0 && days <= 7 {
				sum += q.Score
				n++
			}
		}
		avgs[i] = sum / float64(n)
	}
	return avgs
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
