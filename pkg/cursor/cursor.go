// Package cursor encodes the keyset pagination position as an opaque
// token. The tuple is deliberately fixed: (createdAt, id) is the page
// ordering key, and both fields must move together so resumption stays
// stable when records share a timestamp.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

type Key struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

func Encode(key Key) string {
	raw, err := json.Marshal(key)
	if err != nil {
		// Key is a plain struct; Marshal cannot fail on it.
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode parses an opaque cursor. A missing or malformed cursor means
// "start from the top", so it reports ok=false instead of an error.
func Decode(token string) (Key, bool) {
	if token == "" {
		return Key{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Key{}, false
	}
	var key Key
	if err := json.Unmarshal(raw, &key); err != nil {
		return Key{}, false
	}
	if key.ID == "" || key.CreatedAt.IsZero() {
		return Key{}, false
	}
	return key, true
}
