package engine

import "sync"

// executorPool hands executors to the dispatcher. The fixed variant is what
// bounds a Runner's concurrency: get blocks until one of the capacity
// executors comes back.
type executorPool interface {
	get() *executor
	put(*executor)
}

// fixedPool pre-allocates capacity executors behind a buffered channel, so
// at most capacity units execute at once.
type fixedPool struct {
	slots chan *executor
}

func newFixedPool(capacity uint) *fixedPool {
	p := &fixedPool{slots: make(chan *executor, capacity)}
	for i := uint(0); i < capacity; i++ {
		p.slots <- &executor{}
	}
	return p
}

func (p *fixedPool) get() *executor  { return <-p.slots }
func (p *fixedPool) put(e *executor) { p.slots <- e }

// dynamicPool recycles executors through sync.Pool and never blocks;
// concurrency is bounded only by how many units are in flight.
type dynamicPool struct {
	inner sync.Pool
}

func newDynamicPool() *dynamicPool {
	return &dynamicPool{inner: sync.Pool{New: func() interface{} { return &executor{} }}}
}

func (p *dynamicPool) get() *executor  { return p.inner.Get().(*executor) }
func (p *dynamicPool) put(e *executor) { p.inner.Put(e) }
