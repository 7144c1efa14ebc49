package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsWorkAndDeliversResult(t *testing.T) {
	p := NewPool[int](2)
	defer p.Close()

	f := p.Submit(func(ctx context.Context) (int, error) {
		return 42, nil
	})

	select {
	case res := <-f.C():
		require.NoError(t, res.Err)
		assert.Equal(t, 42, res.Data)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestPoolPropagatesError(t *testing.T) {
	p := NewPool[int](1)
	defer p.Close()

	wantErr := errors.New("boom")
	f := p.Submit(func(ctx context.Context) (int, error) {
		return 0, wantErr
	})

	res := <-f.C()
	assert.ErrorIs(t, res.Err, wantErr)
}

func TestPoolQueuesBeyondWorkerCount(t *testing.T) {
	p := NewPool[int](1)
	defer p.Close()

	block := make(chan struct{})
	first := p.Submit(func(ctx context.Context) (int, error) {
		<-block
		return 1, nil
	})
	second := p.Submit(func(ctx context.Context) (int, error) {
		return 2, nil
	})

	select {
	case <-second.C():
		t.Fatal("second job should not complete while first holds the only slot")
	case <-time.After(50 * time.Millisecond):
	}

	close(block)
	res1 := <-first.C()
	res2 := <-second.C()
	assert.Equal(t, 1, res1.Data)
	assert.Equal(t, 2, res2.Data)
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := NewPool[int](1)
	defer p.Close()

	f := p.Submit(func(ctx context.Context) (int, error) {
		panic("job exploded")
	})

	res := <-f.C()
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "job exploded")
}

func TestFutureStopCancelsContext(t *testing.T) {
	p := NewPool[int](1)
	defer p.Close()

	cancelled := make(chan struct{})
	f := p.Submit(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	f.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestQueuePushPopOrder(t *testing.T) {
	q := &queue[string]{}
	q.Push("a")
	q.Push("b")
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, "a", q.Pop())
	assert.Equal(t, "b", q.Pop())
	assert.Equal(t, 0, q.Len())
}
