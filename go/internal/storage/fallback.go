package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// QueryFallback runs an index lookup and degrades to a filtered scan when
// the index is missing, so a deployment whose table is behind the code keeps
// working. Only ErrIndexNotFound triggers the fallback; every other error
// propagates. The warning names the index operators need to add.
func QueryFallback(ctx context.Context, p Provider, table string, q Query) ([]Record, error) {
	recs, err := p.Query(ctx, table, q)
	if err == nil {
		return recs, nil
	}
	if !errors.Is(err, ErrIndexNotFound) {
		return nil, err
	}

	log.Warn().
		Str("table", table).
		Str("index", q.Index).
		Msg("index missing, falling back to scan")

	return p.Scan(ctx, table, q.Key)
}
