package cmd

import (
	"context"

	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
)

// PuGoingService is what cmd.run expects from the cloud client.
type PuGoingService interface {
	PollAll(ctx context.Context) (*pugoing.Snapshot, error)
	ForceRelogin(ctx context.Context) error
}

// SnapshotSink consumes one topology snapshot per poll tick.
type SnapshotSink func(ctx context.Context, snap *pugoing.Snapshot)
