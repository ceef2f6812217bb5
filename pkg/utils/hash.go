package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// HashString returns a stable hex digest of the input; used for cache keys,
// never for anything security sensitive.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashFields joins the parts with a separator that cannot appear inside a
// field and hashes the result. Two requests hash equal iff every field does.
func HashFields(parts ...string) string {
	return HashString(strings.Join(parts, "\x1f"))
}
