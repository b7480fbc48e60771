package pipeline

import (
	"context"
	"sync"
)

// Row is an opaque unit of data flowing between processors. The physical
// batch/columnar format is an external collaborator; only the channel
// adjacency and fan-out shape matter here.
type Row = interface{}

// Runnable is the execution contract a transform kernel must implement to
// be driven by Execute. It is deliberately minimal: read from in until
// closed, write to out, and return when done or when ctx is cancelled.
// A closed downstream (out) must be treated as end-of-stream: the
// processor must stop producing, per spec §5 cancellation semantics.
type Runnable interface {
	Processor
	Run(ctx context.Context, in <-chan Row, out chan<- Row) error
}

// Execute drives every pipe in order, wiring pipe i's outputs to pipe i+1's
// inputs. Adjacent pipes of equal width connect 1:1 by index; a pipe of
// width 1 following a wider pipe (a merge pipe) fans all of the wider
// pipe's outputs into its single input channel, preserving arrival order
// but not sorting it — the same goroutine-per-stage + sync.WaitGroup shape
// the source executor uses to fan a shell pipeline's commands out across
// OS pipes, generalized here to typed channels of Row.
func Execute(ctx context.Context, p *Pipeline) error {
	if len(p.Pipes) == 0 {
		return nil
	}

	// prevOuts holds the previous pipe's output channels; fanIn turns them
	// into the current pipe's inputs. A source pipe (pi == 0) gets one
	// already-closed input channel per lane.
	var prevOuts []chan Row

	var wg sync.WaitGroup
	errCh := make(chan error, countProcessors(p))

	for pi, pipe := range p.Pipes {
		outs := make([]chan Row, len(pipe))
		for i := range outs {
			outs[i] = make(chan Row, 1)
		}

		ins := fanIn(prevOuts, len(pipe))

		for lane, proc := range pipe {
			r, ok := proc.(Runnable)
			if !ok {
				// Non-runnable processors (pure structural placeholders in
				// tests) are treated as immediate pass-through closers.
				close(outs[lane])
				continue
			}
			wg.Add(1)
			go func(in <-chan Row, out chan Row, r Runnable) {
				defer wg.Done()
				defer close(out)
				if err := r.Run(ctx, in, out); err != nil {
					select {
					case errCh <- err:
					default:
					}
				}
			}(ins[lane], outs[lane], r)
		}

		prevOuts = outs
		_ = pi
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func countProcessors(p *Pipeline) int {
	n := 0
	for _, pipe := range p.Pipes {
		n += len(pipe)
	}
	if n == 0 {
		return 1
	}
	return n
}

// fanIn builds the `width` input channels for the next pipe from the
// previous pipe's outputs. Equal width connects 1:1; a narrower next width
// (a merge) multiplexes every previous output into the single remaining
// input, preserving arrival order per stream but not sorting across
// streams.
func fanIn(prevOuts []chan Row, width int) []<-chan Row {
	if len(prevOuts) == 0 {
		ins := make([]<-chan Row, width)
		for i := range ins {
			closed := make(chan Row)
			close(closed)
			ins[i] = closed
		}
		return ins
	}

	if width == len(prevOuts) {
		ins := make([]<-chan Row, width)
		for i, c := range prevOuts {
			ins[i] = c
		}
		return ins
	}

	// width == 1: merge every previous output into one channel.
	merged := make(chan Row, len(prevOuts))
	var wg sync.WaitGroup
	wg.Add(len(prevOuts))
	for _, c := range prevOuts {
		go func(c <-chan Row) {
			defer wg.Done()
			for v := range c {
				merged <- v
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()
	return []<-chan Row{merged}
}
