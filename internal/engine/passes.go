package engine

import (
	"context"
	"sync"
)

// Passes tracks the analysis passes of each document so that a result is
// only published by the latest pass started for that document.
type Passes struct {
	mu   sync.Mutex
	next uint64
	docs map[string]*docPass
	wg   sync.WaitGroup
}

type docPass struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewPasses creates an empty tracker.
func NewPasses() *Passes {
	return &Passes{docs: make(map[string]*docPass)}
}

// Pass is one analysis of one document.
type Pass struct {
	passes *Passes
	doc    string
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Begin starts a pass for doc, cancelling any pass still running for it.
// The caller must call Done when the pass finishes.
func (p *Passes) Begin(parent context.Context, doc string) *Pass {
	ctx, cancel := context.WithCancel(parent)

	p.mu.Lock()
	if prev, ok := p.docs[doc]; ok {
		prev.cancel()
	}
	p.next++
	gen := p.next
	p.docs[doc] = &docPass{gen: gen, cancel: cancel}
	p.wg.Add(1)
	p.mu.Unlock()

	return &Pass{passes: p, doc: doc, gen: gen, ctx: ctx, cancel: cancel}
}

// End cancels the running pass for doc and forgets the document. A pass
// that finishes afterwards cannot commit.
func (p *Passes) End(doc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.docs[doc]; ok {
		prev.cancel()
		delete(p.docs, doc)
	}
}

// Wait blocks until every begun pass is Done.
func (p *Passes) Wait() {
	p.wg.Wait()
}

// Context is cancelled when the pass is superseded or its document ends.
func (pass *Pass) Context() context.Context { return pass.ctx }

// Current reports whether no newer pass has started for the document.
func (pass *Pass) Current() bool {
	pass.passes.mu.Lock()
	defer pass.passes.mu.Unlock()
	return pass.currentLocked()
}

func (pass *Pass) currentLocked() bool {
	d, ok := pass.passes.docs[pass.doc]
	return ok && d.gen == pass.gen && pass.ctx.Err() == nil
}

// Commit runs publish if the pass is still current and reports whether it
// ran. publish runs under the tracker lock, so no newer pass can begin
// and publish in between; keep it short.
func (pass *Pass) Commit(publish func()) bool {
	pass.passes.mu.Lock()
	defer pass.passes.mu.Unlock()
	if !pass.currentLocked() {
		return false
	}
	publish()
	return true
}

// Done releases the pass. It is safe to call more than once.
func (pass *Pass) Done() {
	pass.once.Do(func() {
		pass.cancel()
		pass.passes.wg.Done()
	})
}
