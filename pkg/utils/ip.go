package utils

import "strings"

// NormalizeIP lowercases and trims an IP string and, when it looks like
// IPv6 (contains a colon), expands "::" compression to the full 8-group
// form with each group zero-padded to 4 hex digits. IPv4 and strings
// that cannot be expanded are returned as-is after the lowercase/trim,
// so a malformed value still compares byte-for-byte against itself.
func NormalizeIP(ip string) string {
	ip = strings.ToLower(strings.TrimSpace(ip))
	if !strings.Contains(ip, ":") {
		return ip
	}

	parts := strings.Split(ip, ":")
	nonEmpty := 0
	for _, p := range parts {
		if p != "" {
			nonEmpty++
		}
	}
	if nonEmpty > 8 {
		return ip
	}

	expanded := make([]string, 0, 8)
	compressed := false
	for _, p := range parts {
		if p == "" {
			if !compressed {
				for i := 0; i < 8-nonEmpty; i++ {
					expanded = append(expanded, "0000")
				}
				compressed = true
			}
			continue
		}
		if len(p) > 4 {
			return ip
		}
		expanded = append(expanded, strings.Repeat("0", 4-len(p))+p)
	}
	// Only "::" compression may supply missing groups. A short form
	// without it is malformed and passes through unchanged.
	if len(expanded) != 8 {
		return ip
	}

	return strings.Join(expanded, ":")
}

// IsIgnoredIP reports whether candidate matches the configured ignore
// value after normalization on both sides. An empty configured value
// never matches anything.
func IsIgnoredIP(configured, candidate string) bool {
	if strings.TrimSpace(configured) == "" {
		return false
	}
	return NormalizeIP(configured) == NormalizeIP(candidate)
}
