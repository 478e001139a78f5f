package kvstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedValue = errors.New("malformed kv value")

// Store is the scalar key-value side of the storage gateway.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetIfAbsent writes value only when the key is missing and reports whether it wrote.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)
	Delete(ctx context.Context, key string) error
}

func CountdownKey(leagueType string) string    { return "countdown" + leagueType }
func TransferOpenKey(leagueType string) string { return "transferOpen" + leagueType }
func LockedKey(leagueType string) string       { return "locked" + leagueType }
func UpdateKey(leagueType string) string       { return "update" + leagueType }
func LastUpdateKey(leagueType string) string   { return "lastUpdate" + leagueType }

const (
	UpdateRequested = "1"
	UpdateCleared   = "0"
)

func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func ParseInt(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedValue, raw)
	}
	return v, nil
}

func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

func ParseBool(raw string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrMalformedValue, raw)
	}
	return v, nil
}

// GetInt reads an integer key. A missing key returns ok=false.
func GetInt(ctx context.Context, store Store, key string) (int64, bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := ParseInt(raw)
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, true, nil
}

// GetBool reads a boolean key. A missing key returns ok=false.
func GetBool(ctx context.Context, store Store, key string) (bool, bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return false, false, err
	}
	v, err := ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, true, nil
}
