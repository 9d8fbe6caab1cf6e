package loan

import (
	"time"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
)

type detailsResponse struct {
	ID                string      `json:"id"`
	AnggotaID         string      `json:"anggota_id"`
	Kategori          string      `json:"kategori"`
	JumlahPinjaman    int64       `json:"jumlah_pinjaman"`
	Tenor             int         `json:"tenor"`
	SukuBunga         float64     `json:"suku_bunga"`
	AngsuranPerBulan  int64       `json:"angsuran_per_bulan"`
	TotalPengembalian int64       `json:"total_pengembalian"`
	TotalDibayar      int64       `json:"total_dibayar"`
	SisaPinjaman      int64       `json:"sisa_pinjaman"`
	Status            loan.Status `json:"status"`
	Tanggal           time.Time   `json:"tanggal"`
	JatuhTempo        time.Time   `json:"jatuh_tempo"`
}

func toDetailsResponse(d *loan.Details) detailsResponse {
	return detailsResponse{
		ID:                d.ID,
		AnggotaID:         d.AnggotaID,
		Kategori:          d.Kategori,
		JumlahPinjaman:    d.JumlahPinjaman,
		Tenor:             d.Tenor,
		SukuBunga:         d.SukuBunga,
		AngsuranPerBulan:  d.AngsuranPerBulan,
		TotalPengembalian: d.TotalPengembalian,
		TotalDibayar:      d.TotalDibayar,
		SisaPinjaman:      d.SisaPinjaman,
		Status:            d.Status,
		Tanggal:           d.Tanggal,
		JatuhTempo:        d.JatuhTempo,
	}
}

type installmentResponse struct {
	AngsuranKe   int                    `json:"angsuran_ke"`
	JatuhTempo   time.Time              `json:"jatuh_tempo"`
	Jumlah       int64                  `json:"jumlah"`
	Status       loan.InstallmentStatus `json:"status"`
	TanggalBayar *time.Time             `json:"tanggal_bayar,omitempty"`
	NominalPokok int64                  `json:"nominal_pokok"`
	NominalJasa  int64                  `json:"nominal_jasa"`
}

func toScheduleResponse(schedule []loan.Installment) []installmentResponse {
	resp := make([]installmentResponse, len(schedule))
	for i, inst := range schedule {
		resp[i] = installmentResponse{
			AngsuranKe:   inst.AngsuranKe,
			JatuhTempo:   inst.JatuhTempo,
			Jumlah:       inst.Jumlah,
			Status:       inst.Status,
			TanggalBayar: inst.TanggalBayar,
			NominalPokok: inst.NominalPokok,
			NominalJasa:  inst.NominalJasa,
		}
	}

	return resp
}

type infoResponse struct {
	ID                string      `json:"id"`
	Kategori          string      `json:"kategori"`
	JumlahPinjaman    int64       `json:"jumlah_pinjaman"`
	Tenor             int         `json:"tenor"`
	SukuBunga         float64     `json:"suku_bunga"`
	AngsuranPerBulan  int64       `json:"angsuran_per_bulan"`
	TotalPengembalian int64       `json:"total_pengembalian"`
	SisaPinjaman      int64       `json:"sisa_pinjaman"`
	Status            loan.Status `json:"status"`
	NominalJasa       int64       `json:"nominal_jasa"`
	TotalNominalJasa  int64       `json:"total_nominal_jasa"`
	Derived           bool        `json:"derived"`
}

func toInfoResponse(i *loan.Info) infoResponse {
	return infoResponse{
		ID:                i.ID,
		Kategori:          i.Kategori,
		JumlahPinjaman:    i.JumlahPinjaman,
		Tenor:             i.Tenor,
		SukuBunga:         i.SukuBunga,
		AngsuranPerBulan:  i.AngsuranPerBulan,
		TotalPengembalian: i.TotalPengembalian,
		SisaPinjaman:      i.SisaPinjaman,
		Status:            i.Status,
		NominalJasa:       i.NominalJasa,
		TotalNominalJasa:  i.TotalNominalJasa,
		Derived:           i.Derived,
	}
}

type memberLoansResponse struct {
	AnggotaID     string            `json:"anggota_id"`
	TotalPinjaman int64             `json:"total_pinjaman"`
	Loans         []detailsResponse `json:"loans"`
}
