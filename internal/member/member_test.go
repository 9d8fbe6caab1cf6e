package member_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
)

func TestMember_YearsOfMembership(t *testing.T) {
	joined := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{name: "day before anniversary", asOf: time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC), want: 2},
		{name: "on anniversary", asOf: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), want: 3},
		{name: "before joining", asOf: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := member.Member{TanggalBergabung: joined}
			assert.Equal(t, tt.want, m.YearsOfMembership(tt.asOf))
		})
	}

	assert.Zero(t, member.Member{}.YearsOfMembership(time.Now()))
}

func TestService_ListActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := member.NewMockRepository(ctrl)
	svc := member.NewService(repo)

	repo.EXPECT().ListMembers(gomock.Any()).Return([]*member.Member{
		{ID: "A1", Status: member.StatusAktif},
		{ID: "A2", Status: member.StatusNonaktif},
		{ID: "A3", Status: member.StatusAktif},
	}, nil)

	got, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A1", got[0].ID)
	assert.Equal(t, "A3", got[1].ID)
}

func TestService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := member.NewMockRepository(ctrl)
	svc := member.NewService(repo)

	repo.EXPECT().GetMember(gomock.Any(), "missing").Return(nil, member.ErrNotFound)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, member.ErrNotFound))
}
