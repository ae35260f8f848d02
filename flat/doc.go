// Package flat turns nested JSON objects into flat, ordered path/value
// results.
//
// Decoding is streaming: a TokenReader produces tokens one at a time and a
// Tracker maintains the current path as the decoder descends into objects
// and arrays. Object keys and array indices are joined with a separator,
// "." by default, so {"obj":[{"a":1}]} flattens to obj.0.a = 1.
//
// Two readers are provided. NewReader reads encoding/json tokens from an
// io.Reader. NewValueReader walks an in-memory value tree, which lets
// timestamps and raw bytes flow through as typed values.
//
// Example:
//
//	res, err := flat.Unmarshal([]byte(`{"user":{"name":"ann","roles":["a","b"]}}`))
//	if err != nil {
//		return err
//	}
//	name, _ := res.Get("user.name")   // "ann"
//	role, _ := res.Get("user.roles.1") // "b"
package flat
