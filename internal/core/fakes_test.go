package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// fakeOrderStore records every call made by the uploader and service.
type fakeOrderStore struct {
	mu sync.Mutex

	truncateErr error
	deleteErr   error
	// insertErrs[i] is returned by the i-th InsertOrders call.
	insertErrs map[int]error
	// block, when set, is received from before each insert.
	block chan struct{}

	calls        []string
	batches      [][]OrderRecord
	rows         []OrderRecord
	deletedIDs   []int64
	lastFilter   OrderFilter
	searchResult *OrderPage
	options      FilterOptions
}

func (f *fakeOrderStore) TruncateOrders(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "truncate")
	if f.truncateErr != nil {
		return f.truncateErr
	}
	f.rows = nil
	return nil
}

func (f *fakeOrderStore) DeleteAllOrders(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.rows = nil
	return nil
}

func (f *fakeOrderStore) InsertOrders(ctx context.Context, batch []OrderRecord) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.batches)
	f.calls = append(f.calls, "insert")
	f.batches = append(f.batches, append([]OrderRecord(nil), batch...))
	if err := f.insertErrs[n]; err != nil {
		return err
	}
	f.rows = append(f.rows, batch...)
	return nil
}

func (f *fakeOrderStore) SearchOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.searchResult != nil {
		return f.searchResult, nil
	}
	return &OrderPage{Page: filter.Page, PageSize: filter.PageSize, TotalPages: 1, Filter: filter}, nil
}

func (f *fakeOrderStore) DeleteOrders(ctx context.Context, ids []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete_ids")
	f.deletedIDs = append(f.deletedIDs, ids...)
	return int64(len(ids)), nil
}

func (f *fakeOrderStore) FilterOptions(ctx context.Context) (FilterOptions, error) {
	return f.options, nil
}

func (f *fakeOrderStore) batchSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.batches))
	for i, b := range f.batches {
		sizes[i] = len(b)
	}
	return sizes
}

func (f *fakeOrderStore) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeProjectStore records switch and refresh calls.
type fakeProjectStore struct {
	mu sync.Mutex

	settings   []ProjectSetting
	switchErr  error
	refreshErr error

	switched  []uuid.UUID
	methods   []CalculationMethod
	refreshes int
}

func (f *fakeProjectStore) ListProjectSettings(ctx context.Context) ([]ProjectSetting, error) {
	return f.settings, nil
}

func (f *fakeProjectStore) SwitchCalculationMethod(ctx context.Context, id uuid.UUID, method CalculationMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.switchErr != nil {
		return f.switchErr
	}
	f.switched = append(f.switched, id)
	f.methods = append(f.methods, method)
	return nil
}

func (f *fakeProjectStore) RefreshAnalyticsViews(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeProjectStore) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func makeRecords(n int) []OrderRecord {
	records := make([]OrderRecord, n)
	for i := range records {
		records[i] = OrderRecord{
			Succursale:  "GDC",
			Operateur:   "john",
			NumCde:      "CMD",
			Reference:   "REF",
			Designation: "Part",
			QteCde:      float64(i),
			Status:      DefaultStatus,
		}
	}
	return records
}
