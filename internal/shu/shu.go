// Package shu computes the year-end profit share (SHU) and holiday bonus (THR)
// of cooperative members from configurable formulas.
package shu

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var ErrSettingsNotFound = errors.New("shu settings not found")

// DistributionTolerance is how far the bucket percentages may drift from 100.
const DistributionTolerance = 0.01

// CustomVariable is a user-defined constant available to formulas.
type CustomVariable struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// Distribution splits the cooperative's SHU pool into named buckets, in percent.
type Distribution struct {
	RekeningPenyimpan     float64 `json:"rekening_penyimpan"`
	RekeningBerjasa       float64 `json:"rekening_berjasa"`
	Pengurus              float64 `json:"pengurus"`
	DanaKaryawan          float64 `json:"dana_karyawan"`
	DanaPendidikan        float64 `json:"dana_pendidikan"`
	DanaPembangunanDaerah float64 `json:"dana_pembangunan_daerah"`
	DanaSosial            float64 `json:"dana_sosial"`
	Cadangan              float64 `json:"cadangan"`
}

// Settings is the persisted SHU configuration.
type Settings struct {
	Formula         string           `json:"formula"`
	THRFormula      string           `json:"thrFormula"`
	CustomVariables []CustomVariable `json:"customVariables"`
	Distribution    Distribution     `json:"distribution"`
}

// DefaultSettings is used until settings have been saved.
func DefaultSettings() Settings {
	return Settings{
		Formula:    "simpanan_pokok * 0.03 + simpanan_wajib * 0.05 + simpanan_sukarela * 0.02 + jasa_pinjaman * 0.4",
		THRFormula: "min(total_simpanan * 0.05, 1000000)",
		Distribution: Distribution{
			RekeningPenyimpan:     25,
			RekeningBerjasa:       25,
			Pengurus:              10,
			DanaKaryawan:          5,
			DanaPendidikan:        5,
			DanaPembangunanDaerah: 5,
			DanaSosial:            5,
			Cadangan:              20,
		},
	}
}

// Bucket is one named share of a distribution.
type Bucket struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Amount  int64   `json:"amount"`
}

// Buckets lists the shares in their canonical order.
func (d Distribution) Buckets() []Bucket {
	return []Bucket{
		{Name: "rekening_penyimpan", Percent: d.RekeningPenyimpan},
		{Name: "rekening_berjasa", Percent: d.RekeningBerjasa},
		{Name: "pengurus", Percent: d.Pengurus},
		{Name: "dana_karyawan", Percent: d.DanaKaryawan},
		{Name: "dana_pendidikan", Percent: d.DanaPendidikan},
		{Name: "dana_pembangunan_daerah", Percent: d.DanaPembangunanDaerah},
		{Name: "dana_sosial", Percent: d.DanaSosial},
		{Name: "cadangan", Percent: d.Cadangan},
	}
}

func (d Distribution) Total() float64 {
	var total float64
	for _, b := range d.Buckets() {
		total += b.Percent
	}

	return total
}

// DistributionError reports percentages that do not add up to 100.
type DistributionError struct {
	Total float64
}

func (e *DistributionError) Error() string {
	diff := e.Total - 100
	if diff > 0 {
		return fmt.Sprintf("distribution must total 100%%: currently %.2f%% (%.2f%% over)", e.Total, diff)
	}

	return fmt.Sprintf("distribution must total 100%%: currently %.2f%% (%.2f%% under)", e.Total, -diff)
}

// ValidateDistribution checks that the buckets add up to 100 percent.
func ValidateDistribution(d Distribution) error {
	total := d.Total()
	if math.Abs(total-100) < DistributionTolerance {
		return nil
	}

	return &DistributionError{Total: total}
}

// Allocate splits pool across the buckets. Amounts are rounded down and the
// remainder goes to cadangan.
func (d Distribution) Allocate(pool int64) []Bucket {
	buckets := d.Buckets()
	p := decimal.NewFromInt(pool)

	var allocated int64
	for i := range buckets {
		amount := p.Mul(decimal.NewFromFloat(buckets[i].Percent)).Div(decimal.NewFromInt(100)).Floor().IntPart()
		buckets[i].Amount = amount
		allocated += amount
	}

	if rest := pool - allocated; rest > 0 && math.Abs(d.Total()-100) < DistributionTolerance {
		buckets[len(buckets)-1].Amount += rest
	}

	return buckets
}
