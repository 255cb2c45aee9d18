package storage

import "encoding/json"

// Codec converts keys and values to and from the bytes a backend stores.
type Codec[K, V any] interface {
	EncodeKey(K) ([]byte, error)
	DecodeKey([]byte) (K, error)
	EncodeValue(V) ([]byte, error)
	DecodeValue([]byte) (V, error)
}

var (
	_ Codec[any, any]    = (*JSONCodec[any, any])(nil)
	_ Codec[string, any] = (*StringKeyCodec[any])(nil)
)

// JSONCodec encodes both keys and values as JSON.
//
// Encoded keys sort by their JSON form, which for strings is not always the
// order of the strings themselves; use [StringKeyCodec] when order matters.
type JSONCodec[K, V any] struct{}

func (JSONCodec[K, V]) EncodeKey(key K) ([]byte, error) {
	return json.Marshal(key)
}

func (JSONCodec[K, V]) DecodeKey(data []byte) (K, error) {
	var key K
	err := json.Unmarshal(data, &key)
	return key, err
}

func (JSONCodec[K, V]) EncodeValue(value V) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONCodec[K, V]) DecodeValue(data []byte) (V, error) {
	var value V
	err := json.Unmarshal(data, &value)
	return value, err
}

// StringKeyCodec stores string keys as their raw bytes, so on-disk order is
// string order, and values as JSON.
type StringKeyCodec[V any] struct {
	JSONCodec[string, V]
}

func (StringKeyCodec[V]) EncodeKey(key string) ([]byte, error) {
	return []byte(key), nil
}

func (StringKeyCodec[V]) DecodeKey(data []byte) (string, error) {
	return string(data), nil
}
