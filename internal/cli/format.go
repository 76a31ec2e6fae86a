// Package cli provides the command-line interface for the simulator.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/pkg/utils"
)

// FormatMoney formats an amount as currency.
func FormatMoney(amount float64) string {
	return utils.FormatCurrency(amount)
}

// FormatProfit formats a profit with sign.
func FormatProfit(profit float64) string {
	return utils.FormatProfit(profit)
}

// FormatPercent formats a fraction (0.25) as a signed percentage.
func FormatPercent(fraction float64) string {
	return utils.FormatPercent(fraction * 100)
}

// FormatRate formats a probability as an unsigned percentage.
func FormatRate(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// FormatDateTime formats a timestamp in local time.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("02-Jan-2006 15:04:05")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// ShortID returns the first block of a uuid.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return TruncateString(id, 8)
}

// FormatRatioValue formats a ratio or fraction to three places.
func FormatRatioValue(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// FormatSeed formats a seed.
func FormatSeed(seed int64) string {
	return strconv.FormatInt(seed, 10)
}

// FormatCount formats a count.
func FormatCount(n int) string {
	return strconv.Itoa(n)
}

func errAmbiguous(prefix string) error {
	return fmt.Errorf("run id prefix %q matches more than one run: %w", prefix, apperrors.ErrInputValidation)
}
