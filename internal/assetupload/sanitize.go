package assetupload

import "strings"

// sanitizeFileName replaces path separators and shell-unsafe characters
// with "_"; an empty result becomes "file" (spec.md §4.4).
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if isUnsafeFileNameRune(r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "file"
	}
	return out
}

func isUnsafeFileNameRune(r rune) bool {
	switch r {
	case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ';', '&', '$', '`', '\x00':
		return true
	}
	return r < 0x20
}
