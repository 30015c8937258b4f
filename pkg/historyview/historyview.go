// Package historyview keeps a client-local mirror of the authenticated
// user's compression history and presents it with search, sort and
// incremental pagination. The server stays authoritative: records only
// leave the local cache after a server-confirmed delete, and a reload
// replaces the cache wholesale.
package historyview

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vidcrunch/vidcrunch/pkg/vidclient"
)

const (
	// PageSize is the number of records revealed per pagination step.
	PageSize = 12
	// fetchPageSize is the largest page the server will serve per call.
	fetchPageSize = 100
	// SearchDebounce delays re-filtering while the user is still typing.
	SearchDebounce = 300 * time.Millisecond
)

// State is the session lifecycle position.
type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unauthenticated"
	}
}

// SortKey selects the presentation order of the cached records.
type SortKey string

const (
	SortNewest        SortKey = "newest"
	SortOldest        SortKey = "oldest"
	SortBiggestFile   SortKey = "biggest-file"
	SortBiggestSaving SortKey = "biggest-saving"
)

// Stats aggregates the full cached record set.
type Stats struct {
	Count           int
	OriginalBytes   int64
	CompressedBytes int64
	SavingsPercent  float64
}

// Backend is the server surface the view consumes.
type Backend interface {
	ListHistory(ctx context.Context, opts vidclient.ListOptions) (*vidclient.HistoryPage, error)
	DeleteRecord(ctx context.Context, id string) (string, error)
}

// scheduler defers fn by d and returns a cancel func. Injectable so tests
// can fire the debounce synchronously.
type scheduler func(d time.Duration, fn func()) (cancel func())

func timerScheduler(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// View is the explicit state container for one history session. All
// transitions go through its methods; there is no ambient global state.
type View struct {
	mu sync.Mutex

	backend  Backend
	schedule scheduler

	state         State
	cache         []vidclient.Record
	search        string
	pendingSearch string
	sortKey       SortKey
	displayed     int
	pendingDelete string

	cancelDebounce func()
}

// Option customizes the view.
type Option func(*View)

// WithScheduler replaces the debounce timer, typically for tests.
func WithScheduler(s func(d time.Duration, fn func()) (cancel func())) Option {
	return func(v *View) {
		v.schedule = s
	}
}

func New(backend Backend, opts ...Option) *View {
	view := &View{
		backend:  backend,
		schedule: timerScheduler,
		state:    StateUnauthenticated,
		sortKey:  SortNewest,
	}
	for _, opt := range opts {
		opt(view)
	}
	return view
}

// State reports the current lifecycle position.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SignIn transitions to Loading and mirrors the principal's full record
// set into the local cache, then enters Ready. Filtering and pagination
// afterwards never touch the server.
func (v *View) SignIn(ctx context.Context) error {
	v.mu.Lock()
	v.state = StateLoading
	v.mu.Unlock()

	records, err := v.fetchAll(ctx)
	if err != nil {
		v.mu.Lock()
		v.state = StateUnauthenticated
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache = records
	v.state = StateReady
	v.resetCursorLocked()
	return nil
}

// Reload re-fetches the full set from the server, replacing the cache.
// Search and sort survive a reload; the pagination cursor does not.
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	if v.state != StateReady {
		v.mu.Unlock()
		return fmt.Errorf("historyview: reload requires ready state, was %s", v.state)
	}
	v.state = StateLoading
	v.mu.Unlock()

	records, err := v.fetchAll(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		// Keep the stale cache rather than blanking the screen.
		v.state = StateReady
		return err
	}
	v.cache = records
	v.state = StateReady
	v.resetCursorLocked()
	return nil
}

// SignOut drops everything and returns to Unauthenticated.
func (v *View) SignOut() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancelDebounce != nil {
		v.cancelDebounce()
		v.cancelDebounce = nil
	}
	v.state = StateUnauthenticated
	v.cache = nil
	v.search = ""
	v.pendingSearch = ""
	v.sortKey = SortNewest
	v.displayed = 0
	v.pendingDelete = ""
}

// SetSearch records the new query and re-filters after the debounce
// window. Typing again inside the window restarts it.
func (v *View) SetSearch(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingSearch = query
	if v.cancelDebounce != nil {
		v.cancelDebounce()
	}
	v.cancelDebounce = v.schedule(SearchDebounce, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.cancelDebounce = nil
		if v.pendingSearch == v.search {
			return
		}
		v.search = v.pendingSearch
		v.resetCursorLocked()
	})
}

// SetSort switches ordering immediately and rewinds pagination.
func (v *View) SetSort(key SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if key == v.sortKey {
		return
	}
	v.sortKey = key
	v.resetCursorLocked()
}

// Visible returns the currently revealed slice of the filtered, sorted
// cache.
func (v *View) Visible() []vidclient.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	filtered := v.filteredLocked()
	if v.displayed < len(filtered) {
		filtered = filtered[:v.displayed]
	}
	return filtered
}

// HasMore reports whether another pagination step would reveal records.
func (v *View) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.displayed < len(v.filteredLocked())
}

// ShowMore reveals one more page of the filtered set.
func (v *View) ShowMore() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advanceLocked()
}

// RequestDelete stages a record for deletion pending confirmation.
func (v *View) RequestDelete(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, record := range v.cache {
		if record.ID == id {
			v.pendingDelete = id
			return nil
		}
	}
	return fmt.Errorf("historyview: unknown record %q", id)
}

// PendingDelete returns the staged record id, if any.
func (v *View) PendingDelete() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pendingDelete, v.pendingDelete != ""
}

// CancelDelete clears the staged deletion.
func (v *View) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingDelete = ""
}

// ConfirmDelete performs the server-side delete and, only after the
// server confirms, removes the record from the local cache. On failure
// the cache is left untouched and the error is returned to be surfaced.
func (v *View) ConfirmDelete(ctx context.Context) (string, error) {
	v.mu.Lock()
	id := v.pendingDelete
	v.mu.Unlock()
	if id == "" {
		return "", fmt.Errorf("historyview: no delete pending")
	}

	deletedID, err := v.backend.DeleteRecord(ctx, id)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingDelete = ""
	if err != nil {
		return "", err
	}

	kept := v.cache[:0]
	for _, record := range v.cache {
		if record.ID != deletedID {
			kept = append(kept, record)
		}
	}
	v.cache = kept
	if v.displayed > len(v.cache) {
		v.displayed = len(v.cache)
	}
	return deletedID, nil
}

// Stats aggregates the whole cache, ignoring the active filter.
func (v *View) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()

	stats := Stats{Count: len(v.cache)}
	for _, record := range v.cache {
		stats.OriginalBytes += record.OriginalSize
		stats.CompressedBytes += record.CompressedSize
	}
	stats.SavingsPercent = SavingsPercent(stats.OriginalBytes, stats.CompressedBytes)
	return stats
}

// SavingsPercent computes 100 * (1 - compressed/original) for display,
// treating a zero or negative original size as no savings. A compression
// that grew the file is shown as 0%.
func SavingsPercent(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	saving := 100 * (1 - float64(compressed)/float64(original))
	if saving < 0 {
		return 0
	}
	return saving
}

// savingsRatio is the unclamped sort key for biggest-saving: negative when
// compression grew the file, so those records order after every real saving.
func savingsRatio(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	return 1 - float64(compressed)/float64(original)
}

func (v *View) fetchAll(ctx context.Context) ([]vidclient.Record, error) {
	var all []vidclient.Record
	for {
		page, err := v.backend.ListHistory(ctx, vidclient.ListOptions{
			Limit:  fetchPageSize,
			Offset: len(all),
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if int64(len(all)) >= page.Total || len(page.Data) == 0 {
			return all, nil
		}
	}
}

// resetCursorLocked rewinds the pagination cursor to zero, then reveals
// the first page so a criterion change never leaves the list empty.
func (v *View) resetCursorLocked() {
	v.displayed = 0
	v.advanceLocked()
}

func (v *View) advanceLocked() {
	total := len(v.filteredLocked())
	v.displayed += PageSize
	if v.displayed > total {
		v.displayed = total
	}
}

func (v *View) filteredLocked() []vidclient.Record {
	needle := strings.ToLower(strings.TrimSpace(v.search))

	filtered := make([]vidclient.Record, 0, len(v.cache))
	for _, record := range v.cache {
		if needle == "" || strings.Contains(strings.ToLower(record.Filename), needle) {
			filtered = append(filtered, record)
		}
	}

	switch v.sortKey {
	case SortOldest:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		})
	case SortBiggestFile:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].OriginalSize > filtered[j].OriginalSize
		})
	case SortBiggestSaving:
		sort.SliceStable(filtered, func(i, j int) bool {
			return savingsRatio(filtered[i].OriginalSize, filtered[i].CompressedSize) >
				savingsRatio(filtered[j].OriginalSize, filtered[j].CompressedSize)
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}
	return filtered
}
