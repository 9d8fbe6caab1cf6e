package request_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/request"
)

type payload struct {
	AnggotaID string `json:"anggota_id" validate:"required"`
	Jumlah    int64  `json:"jumlah" validate:"gt=0"`
	Jenis     string `json:"jenis" validate:"omitempty,oneof=Simpan Pinjam"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"anggota_id":"A1","jumlah":10}`},
		{name: "malformed", body: `{"anggota_id":`, wantErr: "invalid request body"},
		{name: "missing member", body: `{"jumlah":10}`, wantErr: "anggota_id is required"},
		{name: "non positive amount", body: `{"anggota_id":"A1","jumlah":0}`, wantErr: "jumlah must be greater than 0"},
		{name: "bad enum", body: `{"anggota_id":"A1","jumlah":1,"jenis":"Hibah"}`, wantErr: "jenis must be one of [Simpan Pinjam]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))

			var p payload
			err := request.Decode(httptest.NewRecorder(), r, &p)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "A1", p.AnggotaID)
				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDecode_BodyTooLarge(t *testing.T) {
	body := `{"anggota_id":"` + strings.Repeat("A", request.MaxBodyBytes) + `","jumlah":1}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var p payload
	err := request.Decode(httptest.NewRecorder(), r, &p)
	assert.ErrorContains(t, err, "larger than 1048576 bytes")
}
