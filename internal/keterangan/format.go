package keterangan

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders a whole-rupiah amount with Indonesian digit grouping, e.g. "Rp 1.070.000".
func FormatRupiah(amount int64) string {
	if amount < 0 {
		return "-Rp " + rupiahPrinter.Sprintf("%d", -amount)
	}

	return "Rp " + rupiahPrinter.Sprintf("%d", amount)
}

// Format writes terms in the description layout the legacy system reads back.
// label, when not empty, is written first (usually the loan category).
func Format(label string, t Terms) string {
	parts := []string{
		fmt.Sprintf("Jumlah Tenor: %d bulan", t.Tenor),
		fmt.Sprintf("Suku Bunga: %s%%", decimal.NewFromFloat(t.SukuBunga).String()),
		"Angsuran per Bulan: " + FormatRupiah(t.AngsuranPerBulan),
		"Total Pengembalian: " + FormatRupiah(t.TotalPengembalian),
	}

	body := strings.Join(parts, ", ")
	if label == "" {
		return body
	}

	return label + " - " + body
}
