package coroutine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sergeych/lyng-sub006/internal/value"
)

func TestLaunchAwait(t *testing.T) {
	c := NewCarrier(4)
	d := c.Launch(context.Background(), func(ctx context.Context) (value.Value, error) {
		return value.NewInt(42), nil
	})

	v, err := d.Await(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 42 {
		t.Fatalf("expected 42, got %d", v.Int())
	}
	if d.IsActive() {
		t.Fatal("expected deferred to be inactive after completion")
	}
	if !d.IsCompleted() {
		t.Fatal("expected deferred to be completed")
	}
}

func TestLaunchCancellation(t *testing.T) {
	c := NewCarrier(1)
	started := make(chan struct{})
	d := c.Launch(context.Background(), func(ctx context.Context) (value.Value, error) {
		close(started)
		<-ctx.Done()
		return value.Void, ctx.Err()
	})

	<-started
	d.Cancel()

	_, err := d.Await(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCarrierBoundsConcurrency(t *testing.T) {
	c := NewCarrier(1)
	inFlight := make(chan struct{}, 2)
	release := make(chan struct{})

	d1 := c.Launch(context.Background(), func(ctx context.Context) (value.Value, error) {
		inFlight <- struct{}{}
		<-release
		return value.Void, nil
	})
	d2 := c.Launch(context.Background(), func(ctx context.Context) (value.Value, error) {
		inFlight <- struct{}{}
		<-release
		return value.Void, nil
	})

	time.Sleep(50 * time.Millisecond)
	if n := len(inFlight); n != 1 {
		t.Fatalf("expected exactly one coroutine running under capacity-1 carrier, got %d", n)
	}

	close(release)
	d1.Await(context.Background())
	d2.Await(context.Background())
}

func TestMutexWithLockSerializes(t *testing.T) {
	m := NewMutex()
	order := []int{}
	ch := make(chan struct{})

	go func() {
		m.WithLock(context.Background(), func() (value.Value, error) {
			close(ch)
			time.Sleep(10 * time.Millisecond)
			order = append(order, 1)
			return value.Void, nil
		})
	}()

	<-ch
	m.WithLock(context.Background(), func() (value.Value, error) {
		order = append(order, 2)
		return value.Void, nil
	})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected serialized order [1 2], got %v", order)
	}
}

func TestFlowIsColdAndOrdered(t *testing.T) {
	runs := 0
	f := NewFlow(func(ctx context.Context, emit Emitter) error {
		runs++
		for i := 1; i <= 3; i++ {
			if err := emit(ctx, value.NewInt(int64(i))); err != nil {
				return err
			}
		}
		return nil
	})

	for pass := 0; pass < 2; pass++ {
		var got []int64
		err := f.Collect(context.Background(), func(v value.Value) error {
			got = append(got, v.Int())
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
			t.Fatalf("unexpected sequence: %v", got)
		}
	}
	if runs != 2 {
		t.Fatalf("expected the producer to re-run per collect, ran %d times", runs)
	}
}

func TestFlowStopsOnConsumerError(t *testing.T) {
	emitted := 0
	f := NewFlow(func(ctx context.Context, emit Emitter) error {
		for i := 0; i < 10; i++ {
			emitted++
			if err := emit(ctx, value.NewInt(int64(i))); err != nil {
				return err
			}
		}
		return nil
	})

	boom := errors.New("boom")
	err := f.Collect(context.Background(), func(v value.Value) error {
		if v.Int() == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if emitted > 4 {
		t.Fatalf("expected the producer to stop shortly after the consumer errors, emitted %d", emitted)
	}
}
