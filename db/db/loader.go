package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/vikstrous/dataloadgen"

	"nomadguide/model"
)

type dataLoaderKey string

const (
	DataLoaderKeyTripData dataLoaderKey = "trip_data_loader"
)

// TripDataLoader batches per-trip reads issued while building a
// multi-trip response such as the user overview.
type TripDataLoader struct {
	GetTrip         *dataloadgen.Loader[uuid.UUID, *model.Trip]
	GetTransactions *dataloadgen.Loader[uuid.UUID, []model.Transaction]
	GetRecurring    *dataloadgen.Loader[uuid.UUID, []model.RecurringTransaction]
}

func NewTripDataLoader(store TripStore) *TripDataLoader {
	return &TripDataLoader{
		GetTrip:         dataloadgen.NewMappedLoader(store.DataLoaderGetTrips),
		GetTransactions: dataloadgen.NewMappedLoader(store.DataLoaderGetTransactions),
		GetRecurring:    dataloadgen.NewMappedLoader(store.DataLoaderGetRecurring),
	}
}

func WithTripDataLoader(ctx context.Context, l *TripDataLoader) context.Context {
	return context.WithValue(ctx, DataLoaderKeyTripData, l)
}

// TripDataLoaderFrom returns the request's loader, if one was attached.
func TripDataLoaderFrom(ctx context.Context) (*TripDataLoader, bool) {
	l, ok := ctx.Value(DataLoaderKeyTripData).(*TripDataLoader)
	return l, ok
}
