package memory

import (
	"context"
	"sort"

	"github.com/dense-analysis/fxwave/internal/model"
)

// UpsertDailySummary replaces the rollup for a pair and UTC day.
func (store *Store) UpsertDailySummary(ctx context.Context, input model.DailySummaryInput) (model.DailySummary, error) {
	input, err := input.Normalize()

	if err != nil {
		return model.DailySummary{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	key := summaryKey{input.Pair, input.Date}
	summary, exists := store.summaries[key]

	if !exists {
		store.nextSumID++
		summary.ID = store.nextSumID
	}

	summary.Pair = input.Pair
	summary.Date = input.Date
	summary.Open = input.Open
	summary.High = input.High
	summary.Low = input.Low
	summary.Close = input.Close
	summary.Volume = input.Volume
	summary.Volatility = input.Volatility
	summary.CreatedAt = store.timestamp()
	store.summaries[key] = summary

	return summary, nil
}

// ListDailySummaries returns the rollups for a pair in a range, oldest first.
func (store *Store) ListDailySummaries(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.DailySummary, error) {
	pair, err := model.NormalizePair(pair)

	if err != nil {
		return nil, err
	}

	if err := timeRange.Validate(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	summaryList := make([]model.DailySummary, 0, 31)

	for _, summary := range store.summaries {
		if summary.Pair == pair && timeRange.Contains(summary.Date) {
			summaryList = append(summaryList, summary)
		}
	}

	sort.Slice(summaryList, func(i, j int) bool {
		return summaryList[i].Date.Before(summaryList[j].Date)
	})

	return summaryList, nil
}

// SummaryPairs returns the pairs with rollups dated in a range, sorted.
func (store *Store) SummaryPairs(ctx context.Context, timeRange model.TimeRange) ([]string, error) {
	if err := timeRange.Validate(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	seen := map[string]bool{}
	pairList := make([]string, 0, 8)

	for _, summary := range store.summaries {
		if !seen[summary.Pair] && timeRange.Contains(summary.Date) {
			seen[summary.Pair] = true
			pairList = append(pairList, summary.Pair)
		}
	}

	sort.Strings(pairList)

	return pairList, nil
}
