package cache

import "time"

// BytesCache caches raw payloads (serialized candle batches) with a
// TTL. A miss is (nil, false, nil); errors are transport failures only.
type BytesCache interface {
	GetBytes(key string) ([]byte, bool, error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
