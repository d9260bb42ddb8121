package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Cursor is the opaque pagination state we encode/decode.
// ID + UnixMilli establish a stable keyset position for lists ordered by
// (timestamp DESC, id DESC).
type Cursor struct {
	ID        uint64 `json:"id"`
	UnixMilli int64  `json:"ts,omitempty"`
}

// After builds the cursor pointing past the given row.
func After(id uint64, ts time.Time) Cursor {
	return Cursor{ID: id, UnixMilli: ts.UnixMilli()}
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool { return c.ID == 0 && c.UnixMilli == 0 }

// Time returns the cursor timestamp in UTC.
func (c Cursor) Time() time.Time { return time.UnixMilli(c.UnixMilli).UTC() }

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ErrInvalidToken is returned by Decode for malformed tokens.
var ErrInvalidToken = errors.New("invalid pagination token")

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}

// Page trims a limit+1 result set to limit rows and returns the token for
// the next page, or nil when there is none.
func Page[T any](rows []T, limit int, key func(T) Cursor) ([]T, *string) {
	if limit <= 0 || len(rows) <= limit {
		return rows, nil
	}
	token, err := Encode(key(rows[limit-1]))
	if err != nil {
		return rows[:limit], nil
	}
	return rows[:limit], &token
}
