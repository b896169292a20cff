package toolchain

import (
	"path/filepath"
	"strings"
)

// latestVersion picks the version-maximal path among matches of pattern.
// Only the wildcard segments are compared, the last one first, so an install's
// version directory outranks a user name matched earlier in the path.
func latestVersion(pattern string, paths []string) string {
	wild := wildcardSegments(pattern)
	best := ""
	for _, path := range paths {
		if best == "" || compareMatches(wild, path, best) > 0 {
			best = path
		}
	}
	return best
}

// wildcardSegments returns the indexes of pattern segments holding glob metacharacters, last first.
func wildcardSegments(pattern string) []int {
	var idx []int
	segments := splitSegments(pattern)
	for i := len(segments) - 1; i >= 0; i-- {
		if strings.ContainsAny(segments[i], "*?[") {
			idx = append(idx, i)
		}
	}
	return idx
}

func compareMatches(wild []int, a, b string) int {
	sa, sb := splitSegments(a), splitSegments(b)
	for _, i := range wild {
		if i >= len(sa) || i >= len(sb) {
			break
		}
		if c := compareVersions(sa[i], sb[i]); c != 0 {
			return c
		}
	}
	return compareVersions(a, b)
}

func splitSegments(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}

// compareVersions orders strings by runs: digit runs compare numerically, others lexically.
func compareVersions(a, b string) int {
	ta, tb := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		if c := compareRun(ta[i], tb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	default:
		return 0
	}
}

func compareRun(a, b string) int {
	if isDigits(a) && isDigits(b) {
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a, b)
}

func splitRuns(s string) []string {
	var runs []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[start]) {
			runs = append(runs, s[start:i])
			start = i
		}
	}
	return runs
}

func isDigits(s string) bool {
	return s != "" && isDigit(s[0])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
