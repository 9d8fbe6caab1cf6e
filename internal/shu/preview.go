package shu

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/formula"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
)

// DefaultPreviewSize is the number of members sampled by a preview.
const DefaultPreviewSize = 5

// Jitter bounds applied to baseline values per sampled member.
const (
	jitterMin   = 0.8
	jitterRange = 0.4
)

// Sample is the simulated result for one member.
type Sample struct {
	AnggotaID string             `json:"anggotaId"`
	Nama      string             `json:"nama"`
	Variables map[string]float64 `json:"variables"`
	SHU       float64            `json:"shu"`
	THR       float64            `json:"thr"`
	Error     string             `json:"error,omitempty"`
}

// PreviewResult summarizes a simulated distribution.
type PreviewResult struct {
	Samples  []Sample `json:"samples"`
	TotalSHU float64  `json:"totalShu"`
	TotalTHR float64  `json:"totalThr"`
	// AverageSHU is taken over the samples that evaluated successfully.
	AverageSHU float64 `json:"averageShu"`
}

// compiled holds the formulas of a settings value, ready for evaluation.
type compiled struct {
	shu *formula.Expr
	thr *formula.Expr // Nil when no THR formula is configured
}

func compile(s Settings) (*compiled, error) {
	shu, err := formula.Compile(s.Formula)
	if err != nil {
		return nil, fmt.Errorf("compiling shu formula: %w", err)
	}

	c := &compiled{shu: shu}

	if s.THRFormula != "" {
		if c.thr, err = formula.Compile(s.THRFormula); err != nil {
			return nil, fmt.Errorf("compiling thr formula: %w", err)
		}
	}

	return c, nil
}

func (c *compiled) eval(vars map[string]float64) (shu, thr float64, err error) {
	if shu, err = c.shu.Eval(vars); err != nil {
		return 0, 0, err
	}

	if c.thr != nil {
		if thr, err = c.thr.Eval(vars); err != nil {
			return 0, 0, err
		}
	}

	return shu, thr, nil
}

// Preview simulates SHU and THR for up to size members using jittered baseline
// values instead of their real history. Synthetic members are used when the
// list is empty. A formula that fails to compile aborts the preview; a
// failure for one sample is recorded on that sample.
func Preview(s Settings, members []*member.Member, size int, rng *rand.Rand) (*PreviewResult, error) {
	c, err := compile(s)
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		size = DefaultPreviewSize
	}

	sampled := sampleMembers(members, size)
	result := &PreviewResult{Samples: make([]Sample, 0, len(sampled))}

	var ok int

	for _, m := range sampled {
		vars := jitter(rng)
		mergeCustom(vars, s.CustomVariables)

		sample := Sample{AnggotaID: m.ID, Nama: m.Nama, Variables: vars}

		shu, thr, err := c.eval(vars)
		if err != nil {
			sample.Error = formula.Message(err)
		} else {
			sample.SHU, sample.THR = shu, thr
			result.TotalSHU += shu
			result.TotalTHR += thr
			ok++
		}

		result.Samples = append(result.Samples, sample)
	}

	if ok > 0 {
		result.AverageSHU = result.TotalSHU / float64(ok)
	}

	return result, nil
}

func sampleMembers(members []*member.Member, size int) []*member.Member {
	if len(members) > 0 {
		return members[:min(size, len(members))]
	}

	synthetic := make([]*member.Member, size)
	for i := range synthetic {
		synthetic[i] = &member.Member{
			ID:     fmt.Sprintf("SAMPLE-%d", i+1),
			Nama:   fmt.Sprintf("Anggota Contoh %d", i+1),
			Status: member.StatusAktif,
		}
	}

	return synthetic
}

// jitter scales every baseline value by a factor in [0.8, 1.2), rounded to
// whole rupiah. Membership length is kept as is.
func jitter(rng *rand.Rand) map[string]float64 {
	vars := make(map[string]float64, len(baseline))

	for _, name := range Variables() {
		v := baseline[name]
		if name == VarLamaKeanggotaan {
			vars[name] = v
			continue
		}

		factor := decimal.NewFromFloat(jitterMin + rng.Float64()*jitterRange)
		vars[name] = decimal.NewFromFloat(v).Mul(factor).Round(0).InexactFloat64()
	}

	return vars
}
