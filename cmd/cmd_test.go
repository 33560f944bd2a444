package cmd

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/pugoing-integration/internal/pkg/config"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
)

// MockPuGoingService is a func-field mock of the cloud client.
type MockPuGoingService struct {
	PollAllFunc      func(ctx context.Context) (*pugoing.Snapshot, error)
	ForceReloginFunc func(ctx context.Context) error
}

func (m *MockPuGoingService) PollAll(ctx context.Context) (*pugoing.Snapshot, error) {
	if m.PollAllFunc != nil {
		return m.PollAllFunc(ctx)
	}
	return &pugoing.Snapshot{}, nil
}

func (m *MockPuGoingService) ForceRelogin(ctx context.Context) error {
	if m.ForceReloginFunc != nil {
		return m.ForceReloginFunc(ctx)
	}
	return nil
}

func testRunConfig() *config.Config {
	return &config.Config{
		PuGoing:  &config.PuGoingConfig{PollInterval: 5 * time.Millisecond},
		HTTPAddr: "127.0.0.1:0",
		LogLevel: "INFO",
	}
}

func TestRunAbortsOnAuthenticationError(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	svc := &MockPuGoingService{
		PollAllFunc: func(context.Context) (*pugoing.Snapshot, error) {
			return nil, &pugoing.AuthenticationError{Message: "bad credentials"}
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sink := func(context.Context, *pugoing.Snapshot) {}
	err := run(ctx, testRunConfig(), svc, sink, http.NotFoundHandler(), make(chan error, 10), logger)

	var authErr *pugoing.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestPollLoopContinuesOnCommunicationError(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	var polls atomic.Int64
	svc := &MockPuGoingService{
		PollAllFunc: func(context.Context) (*pugoing.Snapshot, error) {
			if polls.Add(1) <= 2 {
				return nil, &pugoing.CommunicationError{Message: "timeout"}
			}
			return &pugoing.Snapshot{Token: "tok"}, nil
		},
	}

	var delivered atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := func(_ context.Context, snap *pugoing.Snapshot) {
		assert.Equal(t, "tok", snap.Token)
		if delivered.Add(1) >= 2 {
			cancel()
		}
	}

	err := pollLoop(ctx, 2*time.Millisecond, svc, sink, logger)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, polls.Load(), int64(4))
	assert.GreaterOrEqual(t, delivered.Load(), int64(2))
}

func TestRunStopsOnCronError(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	svc := &MockPuGoingService{}
	errorChan := make(chan error, 1)
	errorChan <- errCron

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sink := func(context.Context, *pugoing.Snapshot) {}
	err := run(ctx, testRunConfig(), svc, sink, http.NotFoundHandler(), errorChan, logger)
	assert.ErrorIs(t, err, errCron)
}

func TestAsyncErrorsAreDrainedWithoutStopping(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	errorChan := make(chan error, 2)
	errorChan <- errors.New("transient broker hiccup")

	// the poll loop is the terminator here: second successful poll cancels
	var polls atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc := &MockPuGoingService{
		PollAllFunc: func(context.Context) (*pugoing.Snapshot, error) {
			if polls.Add(1) >= 2 {
				cancel()
			}
			return &pugoing.Snapshot{}, nil
		},
	}

	sink := func(context.Context, *pugoing.Snapshot) {}
	err := run(ctx, testRunConfig(), svc, sink, http.NotFoundHandler(), errorChan, logger)
	assert.ErrorIs(t, err, context.Canceled)
}
