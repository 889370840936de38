package utils

import (
	"strings"
)

// JoinCodes renders codes as a comma-separated list: "JPY,EUR".
func JoinCodes[T ~string](codes []T) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = string(code)
	}
	return strings.Join(parts, ",")
}

// SplitCodes is the inverse of JoinCodes. Blank items are dropped.
func SplitCodes(list string) []string {
	codes := make([]string, 0)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		codes = append(codes, part)
	}
	return codes
}
