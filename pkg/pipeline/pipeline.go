// Package pipeline implements the Pipeline Builder (PB): it walks a logical
// plan tree and materializes a parallel dataflow Pipeline of transforms.
package pipeline

import "github.com/latticedb/lattice/internal/invariant"

// Processor is one parallel worker within a Pipe. The concrete transform
// kernels (how a Processor actually executes) are external collaborators;
// only their composition into pipes matters here.
type Processor interface {
	// Kind names the transform, used in diagnostics and tests.
	Kind() string
}

// Pipe is one layer of the pipeline: a set of processors executing in
// parallel, sharing a role.
type Pipe []Processor

// Pipeline is an ordered sequence of pipes. Two shapes of adjacent pipes are
// possible: parallel-to-parallel (1:1 by index, equal width) and many-to-one
// through an explicit merge pipe of width 1.
type Pipeline struct {
	Pipes []Pipe
}

// Reset clears all pipes, used when a Stage reschedule delegates the prior
// pipes' work to remote executors.
func (p *Pipeline) Reset() {
	p.Pipes = nil
}

// Width returns the width of the last pipe, or 0 if the pipeline is empty.
func (p *Pipeline) Width() int {
	if len(p.Pipes) == 0 {
		return 0
	}
	return len(p.Pipes[len(p.Pipes)-1])
}

// AddSourcePipe appends a new pipe of processors with no inputs. The head
// pipe of a non-empty Pipeline must always be a source pipe; AddSourcePipe
// is the only way a pipe is created with a width independent of the
// previous pipe.
func (p *Pipeline) AddSourcePipe(procs []Processor) {
	invariant.Precondition(len(procs) > 0, "source pipe must have at least one processor")
	p.Pipes = append(p.Pipes, Pipe(procs))
}

// AppendLane appends a pipe with the same width as the current pipeline,
// one processor per lane, built by make(laneIndex).
func (p *Pipeline) AppendLane(make func(lane int) Processor) {
	w := p.Width()
	invariant.Precondition(w > 0, "cannot append a lane-wise pipe before any source pipe")
	procs := make2(w, make)
	p.Pipes = append(p.Pipes, procs)
}

func make2(w int, fn func(lane int) Processor) Pipe {
	procs := make(Pipe, w)
	for i := 0; i < w; i++ {
		procs[i] = fn(i)
	}
	return procs
}

// AppendMerge inserts a merge processor collapsing the current width to 1.
// A merge processor serializes but does not sort its inputs.
func (p *Pipeline) AppendMerge() {
	invariant.Precondition(len(p.Pipes) > 0, "cannot merge before any pipe exists")
	if p.Width() == 1 {
		return
	}
	p.Pipes = append(p.Pipes, Pipe{&MergeTransform{}})
}
