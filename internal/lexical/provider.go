package lexical

import "sync/atomic"

// Provider hands the current index to concurrent readers and lets rebuilds
// swap in a replacement atomically. Readers either see the previous fully
// built index or the new one, never an intermediate state.
type Provider struct {
	current atomic.Pointer[Index]
}

// NewProvider returns a Provider, optionally seeded with an initial index.
// A nil seed means keyword search is unavailable until the first swap.
func NewProvider(initial *Index) *Provider {
	p := &Provider{}
	if initial != nil {
		p.current.Store(initial)
	}
	return p
}

// Get returns the serving index, or nil when none has been installed.
func (p *Provider) Get() *Index {
	return p.current.Load()
}

// Swap installs a freshly built index.
func (p *Provider) Swap(idx *Index) {
	p.current.Store(idx)
}
