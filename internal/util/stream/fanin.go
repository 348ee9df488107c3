package stream

import (
	"context"
	"sync"
)

// FanIn merges streams into one that closes after every input closed.
// The output is buffered by the number of inputs, so each producer can
// hand over one value even when nobody is reading yet.
func FanIn[T any](streams ...<-chan T) <-chan T {
	out := make(chan T, len(streams))

	var wg sync.WaitGroup
	receive := func(c <-chan T) {
		defer wg.Done()
		for v := range c {
			out <- v
		}
	}

	wg.Add(len(streams))
	for _, stream := range streams {
		go receive(stream)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Collect drains c until it closes or ctx is done.
// It returns what was received and ctx.Err() if it gave up early.
func Collect[T any](ctx context.Context, c <-chan T) ([]T, error) {
	var got []T
	for {
		select {
		case <-ctx.Done():
			return got, ctx.Err()
		case v, ok := <-c:
			if !ok {
				return got, nil
			}
			got = append(got, v)
		}
	}
}
