package storage

import (
	"context"

	"flowScope/internal/model"
)

// Storage defines a sink for projection records.
type Storage interface {
	PutProjectionBatch(ctx context.Context, records []model.ProjectionRecord) error
}

// Reader returns the newest stored projection for an account, token and
// receiver. An empty receiver matches records without one.
type Reader interface {
	LatestProjection(ctx context.Context, account, token, receiver string) (model.ProjectionRecord, bool, error)
}
