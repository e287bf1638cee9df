// Package analytics derives productivity metrics from a task list and a
// selected time window. Compute is a pure function of its inputs: no
// network, no mutation, recomputed on every render.
package analytics

import (
	"math"
	"sort"
	"time"

	"taskflow/internal/api"
)

// Window is the time-range filter applied to the snapshot.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
	WindowAll Window = "all"
)

// Windows lists the selectable windows in display order.
func Windows() []Window {
	return []Window{Window7d, Window30d, Window90d, WindowAll}
}

// Days returns the window length in days. The all-time window uses a
// 365-day divisor so the averages stay bounded.
func (w Window) Days() int {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	case Window90d:
		return 90
	default:
		return 365
	}
}

func (w Window) String() string {
	switch w {
	case Window7d:
		return "7 days"
	case Window30d:
		return "30 days"
	case Window90d:
		return "90 days"
	default:
		return "all time"
	}
}

// TopTagLimit caps the tag frequency list.
const TopTagLimit = 5

// PriorityBuckets counts tasks per priority level, including tasks with
// no priority set.
type PriorityBuckets struct {
	High   int
	Medium int
	Low    int
	None   int
}

// TagCount is one entry of the tag frequency list.
type TagCount struct {
	Tag   string
	Count int
}

// DayActivity is one point of the 7-day activity series.
type DayActivity struct {
	Label     string // weekday abbreviation
	Completed int    // tasks completed that day
	Created   int    // tasks created that day
}

// Snapshot is the full set of derived metrics for one window.
type Snapshot struct {
	Total          int
	Completed      int
	Pending        int
	CompletionRate int // percent, 0..100

	ByPriority          PriorityBuckets
	CompletedByPriority PriorityBuckets

	TopTags []TagCount
	Daily   []DayActivity

	Overdue int
	DueSoon int
	Streak  int

	AvgPerDay float64 // one decimal place
}

// Compute builds a snapshot from tasks for the given window, with now
// fixing the reference instant. The input slice is never modified and an
// empty list yields all-zero metrics.
//
// The daily series and the streak intentionally read the full unfiltered
// list while every other metric reads the window-filtered subset; this
// mirrors the shipped behavior.
func Compute(tasks []api.Task, window Window, now time.Time) Snapshot {
	windowDays := window.Days()
	start := now.AddDate(0, 0, -windowDays)

	filtered := tasks
	if window != WindowAll {
		filtered = make([]api.Task, 0, len(tasks))
		for _, t := range tasks {
			if !t.CreatedAt.Before(start) {
				filtered = append(filtered, t)
			}
		}
	}

	var s Snapshot
	s.Total = len(filtered)
	for _, t := range filtered {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}

	for _, t := range filtered {
		bumpBucket(&s.ByPriority, t.Priority)
		if t.Completed {
			bumpBucket(&s.CompletedByPriority, t.Priority)
		}
	}

	s.TopTags = topTags(filtered)
	s.Daily = dailySeries(tasks, now)

	today := dayKey(now)
	horizon := dayKey(now.AddDate(0, 0, 7))
	for _, t := range filtered {
		if t.Completed || t.DueDate == "" {
			continue
		}
		// ISO dates compare correctly as strings at day granularity.
		if t.DueDate < today {
			s.Overdue++
		} else if t.DueDate <= horizon {
			s.DueSoon++
		}
	}

	s.Streak = streak(tasks, now)
	s.AvgPerDay = math.Round(float64(s.Total)/float64(windowDays)*10) / 10
	return s
}

func bumpBucket(b *PriorityBuckets, p api.Priority) {
	switch p {
	case api.PriorityHigh:
		b.High++
	case api.PriorityMedium:
		b.Medium++
	case api.PriorityLow:
		b.Low++
	default:
		b.None++
	}
}

// topTags counts tag occurrences and keeps the five most frequent. Ties
// keep first-encountered order, so the sort must be stable.
func topTags(tasks []api.Task) []TagCount {
	counts := map[string]int{}
	var order []string
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	result := make([]TagCount, 0, len(order))
	for _, tag := range order {
		result = append(result, TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > TopTagLimit {
		result = result[:TopTagLimit]
	}
	return result
}

// dailySeries covers the last 7 calendar days ending today, over the
// full task list. A task counts as completed on the day its updated_at
// falls on while completed is set.
func dailySeries(tasks []api.Task, now time.Time) []DayActivity {
	series := make([]DayActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := dayKey(day)
		entry := DayActivity{Label: day.Format("Mon")}
		for _, t := range tasks {
			if t.Completed && dayKey(t.UpdatedAt) == key {
				entry.Completed++
			}
			if dayKey(t.CreatedAt) == key {
				entry.Created++
			}
		}
		series = append(series, entry)
	}
	return series
}

// streak walks backward from today while each day has at least one task
// completed on it. A day with no completion ends the walk, so a quiet
// today yields zero.
func streak(tasks []api.Task, now time.Time) int {
	n := 0
	check := now
	for {
		key := dayKey(check)
		found := false
		for _, t := range tasks {
			if t.Completed && dayKey(t.UpdatedAt) == key {
				found = true
				break
			}
		}
		if !found {
			return n
		}
		n++
		check = check.AddDate(0, 0, -1)
	}
}

func dayKey(t time.Time) string {
	return t.Format(api.DateLayout)
}
