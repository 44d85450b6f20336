// Package targets provides ready-made Target types for values that need
// decoding beyond the built-in casts. Each implements
// encoding.TextUnmarshaler, so a parameter bound to one decodes its value
// when the parse fills targets.
package targets

import (
	"encoding"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex decodes a hex-encoded argument into bytes.
type Hex struct {
	Bytes []byte
}

var _ encoding.TextUnmarshaler = (*Hex)(nil)

func (h *Hex) UnmarshalText(text []byte) (err error) {
	h.Bytes, err = hex.DecodeString(string(text))
	return
}

// Base64 decodes a standard-encoding base64 argument into bytes.
type Base64 struct {
	Bytes []byte
}

var _ encoding.TextUnmarshaler = (*Base64)(nil)

func (b *Base64) UnmarshalText(text []byte) (err error) {
	b.Bytes, err = base64.StdEncoding.DecodeString(string(text))
	return
}

// Commas splits a comma-separated argument into its parts. Parts are
// trimmed of surrounding whitespace; empty parts are dropped.
type Commas struct {
	Parts []string
}

var _ encoding.TextUnmarshaler = (*Commas)(nil)

func (c *Commas) UnmarshalText(text []byte) error {
	for _, part := range strings.Split(string(text), ",") {
		if part = strings.TrimSpace(part); part != "" {
			c.Parts = append(c.Parts, part)
		}
	}
	return nil
}

// KeyValue splits a single key=value argument.
type KeyValue struct {
	Key   string
	Value string
}

var _ encoding.TextUnmarshaler = (*KeyValue)(nil)

func (kv *KeyValue) UnmarshalText(text []byte) error {
	key, value, found := strings.Cut(string(text), "=")
	if !found || key == "" {
		return fmt.Errorf("expected key=value, got %q", text)
	}
	kv.Key = key
	kv.Value = value
	return nil
}
