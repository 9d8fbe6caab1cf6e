// Package keterangan reads and writes the loan metadata that the legacy
// back office embeds in the free-text description of a transaction.
//
// A disbursement written by the legacy system looks like:
//
//	Pinjaman Reguler - Jumlah Tenor: 12 bulan, Suku Bunga: 1.5%, Angsuran per Bulan: Rp 1.070.000, Total Pengembalian: Rp 12.840.000
//
// Every field is extracted independently and falls back to its default when it
// is missing or unreadable.
package keterangan

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultTenor     = 12
	DefaultSukuBunga = 1.5

	// MaxTenor is the longest tenor in months accepted from any source.
	MaxTenor = 600
)

var (
	tenorPattern     = regexp.MustCompile(`(?i)(Jumlah Tenor|Tenor):\s*(\d+)\s*bulan`)
	sukuBungaPattern = regexp.MustCompile(`(?i)(Rate )?Suku Bunga:\s*([\d.]+)%`)
	angsuranPattern  = regexp.MustCompile(`(?i)Angsuran per Bulan:\s*Rp\s*([\d,.]+)`)
	totalPattern     = regexp.MustCompile(`(?i)Total Pengembalian:\s*Rp\s*([\d,.]+)`)

	leadingDecimal = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)
)

// Terms are the repayment parameters of a loan.
type Terms struct {
	Tenor             int     `json:"tenor"`
	SukuBunga         float64 `json:"suku_bunga"`
	AngsuranPerBulan  int64   `json:"angsuran_per_bulan"`
	TotalPengembalian int64   `json:"total_pengembalian"`
}

// Defaults returns the terms assumed for a loan whose description carries no metadata.
func Defaults() Terms {
	return Terms{
		Tenor:     DefaultTenor,
		SukuBunga: DefaultSukuBunga,
	}
}

// ValidTenor reports whether n months is a usable tenor.
func ValidTenor(n int) bool {
	return n > 0 && n <= MaxTenor
}

// Parse extracts loan terms from a description. It never fails.
func Parse(text string) Terms {
	terms := Defaults()

	if m := tenorPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && ValidTenor(n) {
			terms.Tenor = n
		}
	}

	if m := sukuBungaPattern.FindStringSubmatch(text); m != nil {
		if rate, ok := parseLeadingFloat(m[2]); ok {
			terms.SukuBunga = rate
		}
	}

	if m := angsuranPattern.FindStringSubmatch(text); m != nil {
		if n, ok := ParseAmount(m[1]); ok {
			terms.AngsuranPerBulan = n
		}
	}

	if m := totalPattern.FindStringSubmatch(text); m != nil {
		if n, ok := ParseAmount(m[1]); ok {
			terms.TotalPengembalian = n
		}
	}

	return terms
}

// ParseAmount parses a rupiah amount written with "." or "," digit grouping,
// e.g. "1.070.000" or "1,070,000".
func ParseAmount(s string) (int64, bool) {
	clean := strings.NewReplacer(",", "", ".", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, false
	}

	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// parseLeadingFloat reads the longest numeric prefix of s, so "1.5." reads as 1.5.
func parseLeadingFloat(s string) (float64, bool) {
	prefix := leadingDecimal.FindString(s)
	if prefix == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(prefix, "."), 64)
	if err != nil {
		return 0, false
	}

	return f, true
}
