package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is the opaque pagination state we encode/decode.
//   - Offset pages through a fixed ordered list (match results).
//   - UserID + CreatedUnix (in millis) give a keyset cursor (likes received).
type Cursor struct {
	Offset      int    `json:"offset,omitempty"`
	UserID      uint64 `json:"user_id,omitempty"`
	CreatedUnix int64  `json:"created_unix,omitempty"`
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool {
	return c == Cursor{}
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	if c.Offset < 0 {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}

// Page slices a fixed list using an offset cursor and returns the next token,
// or "" when the list is exhausted.
func Page[T any](items []T, token string, size int) ([]T, string, error) {
	c, err := Decode(token)
	if err != nil {
		return nil, "", err
	}
	if size <= 0 {
		size = len(items)
	}
	if c.Offset >= len(items) {
		return []T{}, "", nil
	}
	end := c.Offset + size
	if end >= len(items) {
		return items[c.Offset:], "", nil
	}
	next, err := Encode(Cursor{Offset: end})
	if err != nil {
		return nil, "", err
	}
	return items[c.Offset:end], next, nil
}
