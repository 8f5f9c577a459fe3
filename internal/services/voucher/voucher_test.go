package voucher

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talkwise/talkwise-backend/internal/models"
	"github.com/talkwise/talkwise-backend/internal/storage/repository"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateVoucher(ctx context.Context, v models.Voucher) (string, error) {
	args := m.Called(ctx, v)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ListVouchers(ctx context.Context) ([]*models.Voucher, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Voucher), args.Error(1)
}

func (m *MockRepository) GetVoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Voucher), args.Error(1)
}

func (m *MockRepository) ConsumeVoucher(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockRepository) RemoveVoucher(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRedeem_Success(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.AddDate(0, 1, 0)

	repo := new(MockRepository)
	repo.On("GetVoucherByCode", mock.Anything, "SPRING24").Return(&models.Voucher{
		Code:          "SPRING24",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 20,
		UsedCount:     3,
		MaxUses:       100,
		ExpiresAt:     &expires,
	}, nil)
	repo.On("ConsumeVoucher", mock.Anything, "SPRING24").Return(nil)

	svc := New(repo, discardLogger()).WithClock(fixedClock(now))

	v, err := svc.Redeem(context.Background(), "SPRING24")
	require.NoError(t, err)
	assert.Equal(t, 4, v.UsedCount)
	assert.Equal(t, 20, v.DiscountValue)
	repo.AssertExpectations(t)
}

func TestRedeem_DistinctErrors(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)

	tests := []struct {
		name    string
		setup   func(repo *MockRepository)
		wantErr error
	}{
		{
			name: "неизвестный код",
			setup: func(repo *MockRepository) {
				repo.On("GetVoucherByCode", mock.Anything, "CODE").
					Return(nil, repository.ErrVoucherNotFound)
			},
			wantErr: repository.ErrVoucherNotFound,
		},
		{
			name: "просроченный код",
			setup: func(repo *MockRepository) {
				repo.On("GetVoucherByCode", mock.Anything, "CODE").Return(&models.Voucher{
					Code: "CODE", MaxUses: 10, ExpiresAt: &past,
				}, nil)
			},
			wantErr: ErrVoucherExpired,
		},
		{
			name: "исчерпанный код",
			setup: func(repo *MockRepository) {
				repo.On("GetVoucherByCode", mock.Anything, "CODE").Return(&models.Voucher{
					Code: "CODE", UsedCount: 10, MaxUses: 10,
				}, nil)
				repo.On("ConsumeVoucher", mock.Anything, "CODE").
					Return(repository.ErrVoucherExhausted)
			},
			wantErr: repository.ErrVoucherExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setup(repo)

			svc := New(repo, discardLogger()).WithClock(fixedClock(now))

			_, err := svc.Redeem(context.Background(), "CODE")
			assert.ErrorIs(t, err, tt.wantErr)
			// Просроченный код гасить нельзя
			if tt.wantErr == ErrVoucherExpired {
				repo.AssertNotCalled(t, "ConsumeVoucher", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDiscountedCents(t *testing.T) {
	tests := []struct {
		name    string
		voucher *models.Voucher
		price   int
		want    int
	}{
		{"процентная скидка", &models.Voucher{DiscountType: models.DiscountPercentage, DiscountValue: 20}, 1000, 800},
		{"фиксированная скидка", &models.Voucher{DiscountType: models.DiscountFixed, DiscountValue: 300}, 1000, 700},
		{"скидка больше цены", &models.Voucher{DiscountType: models.DiscountFixed, DiscountValue: 1500}, 1000, 0},
		{"сто процентов", &models.Voucher{DiscountType: models.DiscountPercentage, DiscountValue: 100}, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountedCents(tt.voucher, tt.price))
		})
	}
}

func TestCreate_ParsesExpiry(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreateVoucher", mock.Anything, mock.MatchedBy(func(v models.Voucher) bool {
		return v.ExpiresAt != nil && v.ExpiresAt.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	})).Return("voucher-id", nil)

	svc := New(repo, discardLogger())

	id, err := svc.Create(context.Background(), models.DummyVoucher{
		Code:          "NY2025",
		DiscountType:  models.DiscountFixed,
		DiscountValue: 500,
		MaxUses:       50,
		ExpiresAt:     "31-12-2024",
	})
	require.NoError(t, err)
	assert.Equal(t, "voucher-id", id)
}

func TestExportCSV(t *testing.T) {
	expires := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	repo := new(MockRepository)
	repo.On("ListVouchers", mock.Anything).Return([]*models.Voucher{
		{Code: "SPRING24", DiscountType: "percentage", DiscountValue: 20, UsedCount: 4, MaxUses: 100, ExpiresAt: &expires},
		{Code: "FOREVER", DiscountType: "fixed", DiscountValue: 500, UsedCount: 0, MaxUses: 10},
	}, nil)

	svc := New(repo, discardLogger())

	data, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "code,discount_type,discount_value,used_count,max_uses,expires_at", lines[0])
	assert.Contains(t, lines[1], "SPRING24,percentage,20,4,100,2024-12-31T00:00:00Z")
	assert.Contains(t, lines[2], "FOREVER,fixed,500,0,10,")
}
