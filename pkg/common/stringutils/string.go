package stringutils

import (
	"os"
	"strings"
)

func ExpandTildePath(s string) string {
	if !strings.HasPrefix(s, "~") {
		return s
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return s
	}
	return strings.Replace(s, "~", home, 1)
}

// JoinKey joins a store prefix and a key with "/", skipping an empty prefix.
func JoinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}

// TrimKey strips a prefix added by JoinKey.
func TrimKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/")+"/")
}
