package router

import (
	"sort"
	"strings"
	"time"
)

// LogEntry is one row of the service's request log.
type LogEntry struct {
	ID                   int     `json:"id"`
	Timestamp            string  `json:"timestamp"`
	PromptText           string  `json:"prompt_text"`
	DifficultyLevel      string  `json:"difficulty_level"`
	ModelUsed            string  `json:"model_used"`
	TokenCount           int     `json:"token_count"`
	ActualCost           float64 `json:"actual_cost"`
	HypotheticalCostGPT4 float64 `json:"hypothetical_cost_gpt4"`
	MoneySaved           float64 `json:"money_saved"`
}

// ModelCount is the number of logged requests a model served.
type ModelCount struct {
	Model string
	Count int
}

// Summary aggregates a batch of log entries for the analytics view.
type Summary struct {
	Requests    int
	TotalSaved  float64
	ActualCost  float64
	Models      []ModelCount // most used first
	LastRequest time.Time    // zero when no timestamp parsed
}

// DistinctModels returns how many different models served the batch.
func (s Summary) DistinctModels() int {
	return len(s.Models)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC 3339 and the zone-less forms the service emits.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Summarize folds entries into totals and a per-model distribution.
func Summarize(entries []LogEntry) Summary {
	sum := Summary{Requests: len(entries)}
	counts := make(map[string]int)

	for _, e := range entries {
		sum.TotalSaved += e.MoneySaved
		sum.ActualCost += e.ActualCost

		model := e.ModelUsed
		if model == "" {
			model = "Unknown"
		}
		counts[model]++

		if ts, ok := ParseTimestamp(e.Timestamp); ok && ts.After(sum.LastRequest) {
			sum.LastRequest = ts
		}
	}

	for m, n := range counts {
		sum.Models = append(sum.Models, ModelCount{Model: m, Count: n})
	}
	sort.Slice(sum.Models, func(i, j int) bool {
		if sum.Models[i].Count != sum.Models[j].Count {
			return sum.Models[i].Count > sum.Models[j].Count
		}
		return sum.Models[i].Model < sum.Models[j].Model
	})
	return sum
}
