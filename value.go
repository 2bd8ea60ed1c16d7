package mrbt

import "encoding/json"

// Value encoding is explicitly out of scope for the tree itself
// (spec §1: values are opaque bytes) — but callers need something to
// turn their actual data into those bytes. EncodeJSON/DecodeJSON are
// thin convenience wrappers around the standard library's canonical
// JSON codec, matching spec §8's scenarios, which all assume a
// canonical-JSON value encoding when illustrating example digests.
// Callers needing a different encoding (CBOR, protobuf) can ignore
// these and pass their own []byte straight to Insert/Set.

// EncodeJSON marshals v with encoding/json for use as a Tree value.
func EncodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeJSON unmarshals a value previously produced by EncodeJSON.
func DecodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
