package api

import (
	"context"
	"time"

	"github.com/warp/refund-engine/store/sqlite"
)

// Store is the persistence the handlers and the retention job depend on.
// *sqlite.Store implements it.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store
type Store interface {
	SavePolicy(ctx context.Context, policy sqlite.PolicyRecord) error
	GetPolicy(ctx context.Context, id string) (*sqlite.PolicyRecord, error)
	ListPolicies(ctx context.Context) ([]sqlite.PolicyRecord, error)
	DeletePolicy(ctx context.Context, id string) error
	SaveRun(ctx context.Context, run sqlite.Run) error
	GetRun(ctx context.Context, id string) (*sqlite.Run, error)
	ListRuns(ctx context.Context, limit int) ([]sqlite.Run, error)
	PurgeRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Reset(ctx context.Context) error
}

var _ Store = (*sqlite.Store)(nil)
