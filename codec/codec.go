// Package codec provides the value encodings used by the remote cache tier.
package codec

import (
	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrSerialization marks a value that could not be encoded.
	ErrSerialization = errors.New("codec: serialization failed")
	// ErrDeserialization marks bytes that could not be decoded.
	ErrDeserialization = errors.New("codec: deserialization failed")
)

func encodeError(err error, v any) error {
	return errors.Mark(errors.Wrapf(err, "codec: encode %T", v), ErrSerialization)
}

func decodeError(err error, v any) error {
	return errors.Mark(errors.Wrapf(err, "codec: decode %T", v), ErrDeserialization)
}

// Msgpack encodes values with msgpack. It is the default codec.
type Msgpack[T any] struct{}

func (Msgpack[T]) Encode(value T) ([]byte, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, encodeError(err, value)
	}
	return data, nil
}

func (Msgpack[T]) Decode(data []byte) (T, error) {
	var value T
	if err := msgpack.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, decodeError(err, value)
	}
	return value, nil
}

// JSON encodes values as JSON, which keeps remote rows readable by other tools.
type JSON[T any] struct{}

func (JSON[T]) Encode(value T) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, encodeError(err, value)
	}
	return data, nil
}

func (JSON[T]) Decode(data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, decodeError(err, value)
	}
	return value, nil
}
