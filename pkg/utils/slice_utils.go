package utils

import (
	"strconv"
	"strings"
)

// ParseUintList parses a comma separated id list such as "3, 7,x,9".
// Entries that are not positive integers are skipped; duplicates are kept once.
func ParseUintList(s string) []uint {
	var out []uint
	seen := make(map[uint]struct{})
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || n == 0 {
			continue
		}
		id := uint(n)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
