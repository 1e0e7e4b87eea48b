package store

import "sync"

// maxPooledKeyCap keeps oversized buffers out of the pool.
const maxPooledKeyCap = 512

// keyPool recycles the byte slices used to build database keys, keeping
// the read paths allocation-free. 256 bytes covers a prefix, the idx:
// marker, an index name, and a NanoID-sized value.
var keyPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 256)
	},
}

// buildKey assembles "<prefix><suffix>" in a pooled buffer. The slice is
// only valid until releaseKey; callers must release it when done:
//
//	key := buildKey("user:", userID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = append(buf[:0], prefix...)
	return append(buf, suffix...)
}

// buildIndexKey assembles "<prefix>idx:<indexName>:<value>" in a pooled
// buffer. Same ownership rules as buildKey:
//
//	key := buildIndexKey("user:", "email", email)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildIndexKey(prefix, indexName, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = append(buf[:0], prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	return append(buf, value...)
}

// releaseKey returns a key buffer to the pool. The slice must not be used
// afterwards.
func releaseKey(key []byte) {
	if cap(key) <= maxPooledKeyCap {
		keyPool.Put(key[:0])
	}
}
