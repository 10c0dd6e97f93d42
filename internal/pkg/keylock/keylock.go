// Package keylock provides a striped mutex keyed by string. Processing for
// one action or one target must be serialized while unrelated keys proceed
// in parallel; a fixed stripe count bounds memory regardless of fleet size.
package keylock

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 256

// KeyLock serializes critical sections per key.
type KeyLock struct {
	stripes []sync.Mutex
}

// New creates a KeyLock with the default stripe count.
func New() *KeyLock {
	return &KeyLock{stripes: make([]sync.Mutex, defaultStripes)}
}

// Lock acquires the stripe for key and returns its unlock function.
func (l *KeyLock) Lock(key string) func() {
	m := &l.stripes[l.index(key)]
	m.Lock()
	return m.Unlock
}

func (l *KeyLock) index(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % uint32(len(l.stripes))
}
