package view

import (
	"context"
	"time"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats whole rupiah, e.g. "Rp 1.070.000".
func FormatAmount(rupiah int64) string {
	return keterangan.FormatRupiah(rupiah)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
