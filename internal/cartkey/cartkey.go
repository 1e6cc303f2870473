// Package cartkey encodes a beverage selection into the opaque string key
// used by the session cart.
package cartkey

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	SizeRegular = "regular"
	SizeLarge   = "large"

	LevelLess    = "less"
	LevelDefault = "default"
	LevelMore    = "more"
)

// Sizes and Levels enumerate the option domains in display order.
var (
	Sizes  = []string{SizeRegular, SizeLarge}
	Levels = []string{LevelLess, LevelDefault, LevelMore}
)

const sep = ":"

// Selection is a decoded cart key.
type Selection struct {
	BeverageID int64
	Size       string
	Sugar      string
	Ice        string
}

// NormalizeSize maps anything outside the size domain to "regular".
func NormalizeSize(s string) string {
	if s == SizeLarge {
		return SizeLarge
	}
	return SizeRegular
}

// NormalizeLevel maps anything outside the level domain to "default".
func NormalizeLevel(s string) string {
	if s == LevelLess || s == LevelMore {
		return s
	}
	return LevelDefault
}

// Encode builds the cart key for a selection. Unrecognized size and level
// values are normalized, never rejected.
func Encode(beverageID int64, size, sugar, ice string) string {
	return strings.Join([]string{
		strconv.FormatInt(beverageID, 10),
		NormalizeSize(size),
		NormalizeLevel(sugar),
		NormalizeLevel(ice),
	}, sep)
}

// Decode parses a cart key. Unlike Encode it is strict: keys that were not
// produced by Encode are an error.
func Decode(key string) (Selection, error) {
	parts := strings.Split(key, sep)
	if len(parts) != 4 {
		return Selection{}, fmt.Errorf("cart key %q: expected 4 fields", key)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return Selection{}, fmt.Errorf("cart key %q: invalid beverage id", key)
	}
	size := parts[1]
	if size != SizeRegular && size != SizeLarge {
		return Selection{}, fmt.Errorf("cart key %q: invalid size %q", key, size)
	}
	for _, level := range parts[2:] {
		if level != LevelLess && level != LevelDefault && level != LevelMore {
			return Selection{}, fmt.Errorf("cart key %q: invalid level %q", key, level)
		}
	}
	return Selection{BeverageID: id, Size: size, Sugar: parts[2], Ice: parts[3]}, nil
}
