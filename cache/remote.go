package cache

import "context"

// RemoteStore is the persistent second tier of a Tiered cache.
//
// Values are addressed by a type tag and a string key. Get reports a miss
// with found=false; an unreachable store may report the same, and Tiered
// treats an error exactly like a miss. Implementations enforce their own
// expiry and command timeout.
type RemoteStore interface {
	Put(ctx context.Context, typeTag, key string, value []byte) error
	Get(ctx context.Context, typeTag, key string) (value []byte, found bool, err error)
}

// Codec converts values to and from the bytes kept by a RemoteStore.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}
