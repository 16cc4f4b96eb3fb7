package dataaggregator

import (
	"context"
	"errors"
	"reflect"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pendler/pkg/dataaggregator/source"
)

var ErrNoMatchingSource = errors.New("failed to find a matching data source for type")

type Aggregator struct {
	Sources []DataSource
}

func (a *Aggregator) RegisterSource(source DataSource) {
	a.Sources = append(a.Sources, source)

	log.Debug().Str("name", source.GetName()).Msg("Registering new Data Source")
}

// Lookup asks each source supporting T in registration order.
// A source that cannot answer the query returns an UnsupportedSourceError and the next one is tried.
func Lookup[T any](ctx context.Context, aggregator *Aggregator, query any) (T, error) {
	var empty T

	lookupType := reflect.TypeOf(*new(T))
	if lookupType.Kind() == reflect.Pointer {
		lookupType = lookupType.Elem()
	}

	lastError := ErrNoMatchingSource

	for _, dataSource := range aggregator.Sources {
		matches := false

		for _, supportedType := range dataSource.Supports() {
			if lookupType == supportedType {
				matches = true
				break
			}
		}

		if !matches {
			continue
		}

		returnValue, returnError := dataSource.Lookup(ctx, query)

		var unsupported source.UnsupportedSourceError
		if errors.As(returnError, &unsupported) {
			log.Debug().Str("source", dataSource.GetName()).Str("reason", unsupported.Reason).Msg("Source unable to answer query")
			lastError = returnError
			continue
		}

		if returnValue == nil {
			return empty, returnError
		}

		return returnValue.(T), returnError
	}

	return empty, lastError
}
