// Package memory implements the fxwave store in process memory.
//
// It follows the same validation and ordering rules as the PostgreSQL store
// and is used for tests and local runs with DATABASE_URL=memory://.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

// Store keeps every table in maps guarded by one lock.
type Store struct {
	mu          sync.RWMutex
	now         func() time.Time
	lastTime    time.Time
	users       map[uuid.UUID]model.User
	lineUserIDs map[string]uuid.UUID
	bars        []model.PriceBar
	alerts      map[uuid.UUID]model.WaveAlert
	summaries   map[summaryKey]model.DailySummary
	nextBarID   int64
	nextSumID   int64
}

type summaryKey struct {
	pair string
	date time.Time
}

// New creates an empty Store.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty Store which reads the time from now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:         now,
		users:       map[uuid.UUID]model.User{},
		lineUserIDs: map[string]uuid.UUID{},
		alerts:      map[uuid.UUID]model.WaveAlert{},
		summaries:   map[summaryKey]model.DailySummary{},
	}
}

// timestamp returns the current time at microsecond precision, always later
// than the previous call. Must be called with mu held for writing.
func (store *Store) timestamp() time.Time {
	current := store.now().UTC().Truncate(time.Microsecond)

	if !current.After(store.lastTime) {
		current = store.lastTime.Add(time.Microsecond)
	}

	store.lastTime = current

	return current
}

func (store *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (store *Store) Close() {}

// AppendBar inserts a price bar.
func (store *Store) AppendBar(ctx context.Context, input model.PriceBarInput) (model.PriceBar, error) {
	input, err := input.Normalize()

	if err != nil {
		return model.PriceBar{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.nextBarID++
	bar := model.PriceBar{
		ID:        store.nextBarID,
		Pair:      input.Pair,
		Timestamp: input.Timestamp,
		Open:      input.Open,
		High:      input.High,
		Low:       input.Low,
		Close:     input.Close,
		CreatedAt: store.timestamp(),
	}

	if input.Volume != nil {
		volume := int32(*input.Volume)
		bar.Volume = &volume
	}

	store.bars = append(store.bars, bar)

	return bar, nil
}

// QueryBars returns the bars for a pair in a range, oldest first.
func (store *Store) QueryBars(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.PriceBar, error) {
	pair, err := model.NormalizePair(pair)

	if err != nil {
		return nil, err
	}

	if err := timeRange.Validate(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	barList := make([]model.PriceBar, 0, 64)

	for _, bar := range store.bars {
		if bar.Pair == pair && timeRange.Contains(bar.Timestamp) {
			barList = append(barList, bar)
		}
	}

	sort.SliceStable(barList, func(i, j int) bool {
		return barList[i].Timestamp.Before(barList[j].Timestamp)
	})

	return barList, nil
}

// LatestBars returns up to limit bars for a pair, newest first.
func (store *Store) LatestBars(ctx context.Context, pair string, limit int) ([]model.PriceBar, error) {
	barList, err := store.QueryBars(ctx, pair, model.TimeRange{})

	if err != nil {
		return nil, err
	}

	for i, j := 0, len(barList)-1; i < j; i, j = i+1, j-1 {
		barList[i], barList[j] = barList[j], barList[i]
	}

	if limit < 0 {
		limit = 0
	}

	if len(barList) > limit {
		barList = barList[:limit]
	}

	return barList, nil
}

// Pairs returns the distinct pairs with bars in a range.
func (store *Store) Pairs(ctx context.Context, timeRange model.TimeRange) ([]string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	seen := map[string]bool{}
	pairList := make([]string, 0, 8)

	for _, bar := range store.bars {
		if !seen[bar.Pair] && timeRange.Contains(bar.Timestamp) {
			seen[bar.Pair] = true
			pairList = append(pairList, bar.Pair)
		}
	}

	sort.Strings(pairList)

	return pairList, nil
}

// BarsAfter returns bars in insertion order.
func (store *Store) BarsAfter(ctx context.Context, afterID int64, limit int) ([]model.PriceBar, error) {
	if limit <= 0 {
		return nil, nil
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	barList := make([]model.PriceBar, 0, limit)

	for _, bar := range store.bars {
		if len(barList) >= limit {
			break
		}

		if bar.ID > afterID {
			barList = append(barList, bar)
		}
	}

	return barList, nil
}
