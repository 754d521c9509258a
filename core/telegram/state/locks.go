package state

import "sync"

// KeyedMutex hands out one mutex per chat id.
// Entries are never removed; there is one small mutex per chat ever seen.
type KeyedMutex struct {
	locks sync.Map // int64 -> *sync.Mutex
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key int64) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
