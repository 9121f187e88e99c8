package storage

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context) (CategoryTable, PaymentTable, error) {
	args := m.Called(ctx)
	var cats CategoryTable
	var pays PaymentTable
	if v := args.Get(0); v != nil {
		cats = v.(CategoryTable)
	}
	if v := args.Get(1); v != nil {
		pays = v.(PaymentTable)
	}
	return cats, pays, args.Error(2)
}

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Save(categories CategoryTable, payments PaymentTable) error {
	args := m.Called(categories, payments)
	return args.Error(0)
}

func (m *MockSnapshotStore) Load() (CategoryTable, PaymentTable, time.Time, error) {
	args := m.Called()
	var cats CategoryTable
	var pays PaymentTable
	if v := args.Get(0); v != nil {
		cats = v.(CategoryTable)
	}
	if v := args.Get(1); v != nil {
		pays = v.(PaymentTable)
	}
	return cats, pays, args.Get(2).(time.Time), args.Error(3)
}

func (m *MockSnapshotStore) LoadSurcharge() (Surcharge, error) {
	args := m.Called()
	var sur Surcharge
	if v := args.Get(0); v != nil {
		sur = v.(Surcharge)
	}
	return sur, args.Error(1)
}

func loaderTables() (CategoryTable, PaymentTable) {
	cats := CategoryTable{
		ActivityServices: {"A": {Income: 1000}},
		ActivityGoods:    {"A": {Income: 1000}},
	}
	pays := PaymentTable{
		ActivityServices: {"A": {TaxOnly: 100}},
		ActivityGoods:    {"A": {TaxOnly: 100}},
	}
	return cats, pays
}

func TestLoaderLiveSource(t *testing.T) {
	cats, pays := loaderTables()

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(cats, pays, nil)

	store := new(MockSnapshotStore)
	store.On("LoadSurcharge").Return(Surcharge{"A": 500.0}, nil)
	store.On("Save", cats, pays).Return(nil)

	loader := NewLoader(fetcher, store, slog.Default())
	ds := loader.Load(context.Background())

	require.NotNil(t, ds)
	assert.Equal(t, SourceLive, ds.Source)
	assert.Equal(t, cats, ds.Categories)
	assert.Equal(t, 500.0, ds.Aref["A"])
	store.AssertCalled(t, "Save", cats, pays)
}

func TestLoaderFallsBackToSnapshot(t *testing.T) {
	cats, pays := loaderTables()
	saved := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(nil, nil, errors.New("afip unreachable"))

	store := new(MockSnapshotStore)
	store.On("LoadSurcharge").Return(Surcharge{}, nil)
	store.On("Load").Return(cats, pays, saved, nil)

	loader := NewLoader(fetcher, store, slog.Default())
	ds := loader.Load(context.Background())

	assert.Equal(t, SourceSnapshot, ds.Source)
	assert.Equal(t, saved, ds.UpdatedAt)
	assert.Equal(t, pays, ds.Payments)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLoaderEmptyWhenEverythingFails(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(nil, nil, errors.New("afip unreachable"))

	store := new(MockSnapshotStore)
	store.On("LoadSurcharge").Return(Surcharge{"A": 500.0}, nil)
	store.On("Load").Return(nil, nil, time.Time{}, errors.New("no snapshot"))

	loader := NewLoader(fetcher, store, slog.Default())
	ds := loader.Load(context.Background())

	require.NotNil(t, ds)
	assert.Equal(t, SourceEmpty, ds.Source)
	assert.Empty(t, ds.Categories[ActivityServices])
	assert.Equal(t, 500.0, ds.Aref["A"], "surcharge survives independently of the tables")
}

func TestLoaderRejectsBrokenSnapshot(t *testing.T) {
	// Snapshot missing one activity entirely: verification fails and the
	// loader falls through to empty tables.
	cats := CategoryTable{ActivityServices: {"A": {Income: 1000}}}
	pays := PaymentTable{ActivityServices: {"A": {TaxOnly: 100}}}

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything).Return(nil, nil, errors.New("afip unreachable"))

	store := new(MockSnapshotStore)
	store.On("LoadSurcharge").Return(Surcharge{}, nil)
	store.On("Load").Return(cats, pays, time.Now(), nil)

	loader := NewLoader(fetcher, store, slog.Default())
	ds := loader.Load(context.Background())

	assert.Equal(t, SourceEmpty, ds.Source)
}
