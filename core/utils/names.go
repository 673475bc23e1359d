package utils

import (
	"path"
	"strings"
)

// BaseName returns the object key's file name without directories and
// without its final extension.
// Example: "images/ubuntu-22.04.ova" -> "ubuntu-22.04".
func BaseName(key string) string {
	base := path.Base(key)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// FileName returns the last element of the object key.
// Example: "images/ubuntu-22.04.ova" -> "ubuntu-22.04.ova".
func FileName(key string) string {
	base := path.Base(key)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// Extension returns the file extension of the key without the leading dot,
// lower-cased.
func Extension(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
}

// HasExtension reports whether the key's extension is one of the given
// suffixes, compared case-insensitively. Suffixes may be given with or
// without a leading dot.
func HasExtension(key string, suffixes []string) bool {
	ext := Extension(key)
	if ext == "" {
		return false
	}
	for _, s := range suffixes {
		if strings.EqualFold(strings.TrimPrefix(s, "."), ext) {
			return true
		}
	}
	return false
}

// SplitList splits a comma separated list, trimming blanks and dropping
// empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
