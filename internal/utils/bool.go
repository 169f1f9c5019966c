package utils

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeBool is the single place where spreadsheet cell text is coerced to a boolean.
// "true", "yes" and non-zero numbers are true; everything else, including blanks, is false.
func NormalizeBool(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "true", "yes", "1":
		return true
	case "", "false", "no", "0":
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f != 0
	}
	return false
}
