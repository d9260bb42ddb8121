package rpc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	svcErr "github.com/oggyb/matrimony-core/internal/errors"
)

// ParseID parses a required user/payment id. field names the request field
// in the InvalidArgument message.
func ParseID(field, v string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(fmt.Sprintf("%s must be a valid uint64", field))
	}
	return id, nil
}

// ParseOptionalID returns nil for an empty value.
func ParseOptionalID(field, v string) (*uint64, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	id, err := ParseID(field, v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func FormatID(id uint64) string { return strconv.FormatUint(id, 10) }

// Unix returns t as unix seconds, 0 for nil.
func Unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}
