package ssml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Prosody defaults used when a value is not configured.
const (
	DefaultRate        = "0%"
	DefaultPitch       = "default"
	DefaultVolume      = "default"
	DefaultStyleDegree = "1"
)

// FormatRate converts a numeric speaking rate into a prosody percentage.
// Values between 0.1 and 3.0 in magnitude are speed multipliers, so 1.2
// becomes "+20%" and 0.87 becomes "-13%". Anything else is taken as a
// percentage already.
func FormatRate(rate float64) string {
	if abs := math.Abs(rate); abs >= 0.1 && abs <= 3.0 {
		percent := int(math.Round((rate - 1.0) * 100))
		if percent >= 0 {
			return fmt.Sprintf("+%d%%", percent)
		}
		return fmt.Sprintf("%d%%", percent)
	}
	return fmt.Sprintf("%d%%", int(rate))
}

// NormalizeRate accepts a configured rate as written by a user. Decimal
// numbers are converted with FormatRate, integers are percentages, and
// anything else (for example "+10%" or "slow") is passed through.
func NormalizeRate(rate string) string {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return DefaultRate
	}
	if strings.Contains(rate, ".") {
		if f, err := strconv.ParseFloat(rate, 64); err == nil {
			return FormatRate(f)
		}
		return rate
	}
	if n, err := strconv.Atoi(rate); err == nil {
		return fmt.Sprintf("%d%%", n)
	}
	return rate
}
