package config

import (
	"os"
	"strings"
)

// CleanFileName drops characters the platform does not allow in file names
// and leading dots, so generated names never become hidden files.
func CleanFileName(in string) string {
	forbidden := invalidNameChars + string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(r rune) rune {
		if r == 0 || strings.ContainsRune(forbidden, r) {
			return -1
		}
		return r
	}, in)
	out = strings.TrimLeft(out, ".")
	if len(out) == 0 {
		return "_bad_file_name_"
	}
	return out
}
