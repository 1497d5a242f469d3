package memory

import (
	"fmt"
	"sync/atomic"
)

// Slot holds the buffer an operation publishes once all of its tiles are
// written. Readers may load it from any goroutine after publication.
type Slot struct {
	name string
	buf  atomic.Pointer[Buffer]
}

// NewSlot creates an empty slot for the named operation.
func NewSlot(name string) *Slot {
	return &Slot{name: name}
}

// Publish makes b visible to readers. Publishing twice is a programming
// error.
func (s *Slot) Publish(b *Buffer) {
	if !s.buf.CompareAndSwap(nil, b) {
		panic(fmt.Sprintf("memory: buffer for %q published twice", s.name))
	}
}

// Buffer returns the published buffer or nil.
func (s *Slot) Buffer() *Buffer {
	return s.buf.Load()
}
