package storage

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetcher obtains fresh tables from the live source.
type Fetcher interface {
	Fetch(ctx context.Context) (CategoryTable, PaymentTable, error)
}

// SnapshotStore persists and restores the last known good tables.
type SnapshotStore interface {
	Save(categories CategoryTable, payments PaymentTable) error
	Load() (CategoryTable, PaymentTable, time.Time, error)
	LoadSurcharge() (Surcharge, error)
}

// Loader builds a dataset with the live → snapshot → empty fallback
// chain. It never fails: when every source is unavailable it returns an
// empty dataset and the engine fails closed on lookups.
type Loader struct {
	fetcher Fetcher
	store   SnapshotStore
	log     *slog.Logger
}

func NewLoader(fetcher Fetcher, store SnapshotStore, log *slog.Logger) *Loader {
	return &Loader{fetcher: fetcher, store: store, log: log}
}

func (l *Loader) Load(ctx context.Context) *Dataset {
	const op = "storage.Loader.Load"

	var (
		liveCats CategoryTable
		livePays PaymentTable
		fetchErr error
		sur      Surcharge
	)

	// The live fetch and the surcharge file are independent; load both
	// concurrently. Failures are handled per source, so neither branch
	// returns an error to the group.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		liveCats, livePays, fetchErr = l.fetcher.Fetch(gCtx)
		return nil
	})
	g.Go(func() error {
		var err error
		sur, err = l.store.LoadSurcharge()
		if err != nil {
			l.log.Warn("surcharge file unavailable", slog.String("op", op), slog.String("error", err.Error()))
			sur = Surcharge{}
		}
		return nil
	})
	_ = g.Wait()

	if fetchErr == nil {
		if err := l.store.Save(liveCats, livePays); err != nil {
			l.log.Warn("failed to save snapshot", slog.String("op", op), slog.String("error", err.Error()))
		}
		l.log.Info("dataset loaded from live source",
			slog.String("op", op),
			slog.Int("categories", len(liveCats[ActivityServices])))
		return &Dataset{
			Categories: liveCats,
			Payments:   livePays,
			Aref:       sur,
			UpdatedAt:  time.Now(),
			Source:     SourceLive,
		}
	}
	l.log.Warn("live source unavailable, trying snapshot", slog.String("op", op), slog.String("error", fetchErr.Error()))

	cats, pays, updatedAt, err := l.store.Load()
	if err == nil {
		if _, verr := Verify(cats, pays); verr != nil {
			l.log.Error("snapshot failed verification", slog.String("op", op), slog.String("error", verr.Error()))
		} else {
			l.log.Info("dataset loaded from snapshot", slog.String("op", op), slog.Time("updated_at", updatedAt))
			return &Dataset{
				Categories: cats,
				Payments:   pays,
				Aref:       sur,
				UpdatedAt:  updatedAt,
				Source:     SourceSnapshot,
			}
		}
	} else {
		l.log.Warn("snapshot unavailable", slog.String("op", op), slog.String("error", err.Error()))
	}

	l.log.Error("no data source available, starting with empty tables", slog.String("op", op))
	ds := EmptyDataset()
	ds.Aref = sur
	return ds
}
