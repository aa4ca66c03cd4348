package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
)

type increaseCounter struct {
	by int
}

type unknownRequest struct{}

func newCounterMediator(counter *atomic.Int64) *Mediator[int] {
	b := NewBuilder[int]().AddListener(func(ev int) { counter.Add(int64(ev)) })
	b = Register(b, func(ctx context.Context, m *Mediator[int], req increaseCounter) error {
		return m.Publish(ctx, req.by)
	})
	return b.Build()
}

func TestFreshMediatorNextReturnsEmpty(t *testing.T) {
	m := NewBuilder[int]().Build()

	assert.ErrorIs(t, m.Next(context.Background()), ErrEmpty)
}

func TestCounterReachesThree(t *testing.T) {
	ctx := context.Background()
	var counter atomic.Int64
	m := newCounterMediator(&counter)

	for i := 0; i < 3; i++ {
		require.NoError(t, Send(ctx, m, increaseCounter{by: 1}))
		require.NoError(t, m.Next(ctx))
	}

	assert.Equal(t, int64(3), counter.Load())
	assert.ErrorIs(t, m.Next(ctx), ErrEmpty)
}

func TestSendWithoutHandler(t *testing.T) {
	m := NewBuilder[int]().Build()

	err := Send(context.Background(), m, unknownRequest{})

	assert.ErrorIs(t, err, ErrHandlerNotRegistered)
}

func TestSendPropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	m := Register(NewBuilder[int](), func(ctx context.Context, m *Mediator[int], req increaseCounter) error {
		return boom
	}).Build()

	assert.Same(t, boom, Send(context.Background(), m, increaseCounter{}))
}

func TestPipelinesWrapHandler(t *testing.T) {
	var callLog []string
	b := NewBuilder[int]().WithPipeline(func(ctx context.Context, request any, next dispatch.Next) error {
		callLog = append(callLog, "broadcast")
		return next(ctx, request)
	})
	b = Register(b, func(ctx context.Context, m *Mediator[int], req increaseCounter) error {
		callLog = append(callLog, "handler")
		return nil
	})
	b = AddRequestPipeline(b, func(ctx context.Context, req increaseCounter, next func(context.Context, increaseCounter) error) error {
		callLog = append(callLog, "typed")
		return next(ctx, req)
	})

	require.NoError(t, Send(context.Background(), b.Build(), increaseCounter{}))

	assert.Equal(t, []string{"broadcast", "typed", "handler"}, callLog)
}

func TestCancelledPublishLeavesQueueUntouched(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	m := NewBuilder[int]().AddListener(func(ev int) {
		if ev == 0 {
			close(entered)
			<-release
		}
	}).Build()

	require.NoError(t, m.Publish(context.Background(), 0))
	var g errgroup.Group
	g.Go(func() error { return m.Next(context.Background()) })
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Publish(ctx, 1)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, m.Pending())

	close(release)
	require.NoError(t, g.Wait())
	assert.ErrorIs(t, m.Next(context.Background()), ErrEmpty)
}

func TestNextBlockingReleasesLockWhileWaiting(t *testing.T) {
	var got atomic.Int64
	m := NewBuilder[int]().AddListener(func(ev int) { got.Store(int64(ev)) }).Build()

	done := make(chan error, 1)
	go func() { done <- m.NextBlocking(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Publish(ctx, 4))

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.Load())
	case <-time.After(time.Second):
		t.Fatal("NextBlocking did not wake up")
	}
}

func TestNextBlockingAfterClose(t *testing.T) {
	ctx := context.Background()
	m := NewBuilder[int]().Build()
	require.NoError(t, m.Publish(ctx, 1))
	require.NoError(t, m.Close())

	require.NoError(t, m.NextBlocking(ctx))
	assert.ErrorIs(t, m.NextBlocking(ctx), ErrDisconnected)
}

func TestDrain(t *testing.T) {
	ctx := context.Background()
	var seen []int
	m := NewBuilder[int]().AddListener(func(ev int) { seen = append(seen, ev) }).Build()
	for i := 1; i <= 3; i++ {
		require.NoError(t, m.Publish(ctx, i))
	}

	n, err := m.Drain(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestConcurrentSendersAndRunLoop(t *testing.T) {
	var counter atomic.Int64
	m := newCounterMediator(&counter)
	ctx := context.Background()

	var consumer errgroup.Group
	consumer.Go(func() error { return m.Run(ctx) })

	var producers errgroup.Group
	for p := 0; p < 8; p++ {
		producers.Go(func() error {
			for i := 0; i < 50; i++ {
				if err := Send(ctx, m, increaseCounter{by: 1}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, producers.Wait())
	require.NoError(t, m.Close())
	require.NoError(t, consumer.Wait())

	assert.Equal(t, int64(400), counter.Load())
}

func TestBuilderIsCopyOnWrite(t *testing.T) {
	base := NewBuilder[int]()
	branch := Register(base, func(ctx context.Context, m *Mediator[int], req increaseCounter) error { return nil })

	assert.ErrorIs(t, Send(context.Background(), base.Build(), increaseCounter{}), ErrHandlerNotRegistered)
	assert.NoError(t, Send(context.Background(), branch.Build(), increaseCounter{}))
}

func TestClosedReportsClose(t *testing.T) {
	m := NewBuilder[int]().Build()
	assert.False(t, m.Closed())

	require.NoError(t, m.Close())

	assert.True(t, m.Closed())
}
