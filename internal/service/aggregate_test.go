package service

import (
	"testing"
	"time"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Bookings(t *testing.T) {
	b1 := uuid.New()
	b2 := uuid.New()
	units := []models.BillingUnit{
		{ID: b1, Kind: domain.UnitKindBooking, Amount: 100_000_000, Commission: 10_000_000, NetRevenue: 90_000_000},
		{ID: b2, Kind: domain.UnitKindBooking, Amount: 200_000_000, Commission: 20_000_000, NetRevenue: 180_000_000},
	}

	total, items := aggregate(units)

	assert.Equal(t, int64(300_000_000), total)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].BookingID)
	assert.Equal(t, b1, *items[0].BookingID)
	assert.Nil(t, items[0].PaymentID)
	assert.Equal(t, int64(100_000_000), items[0].Amount)
	assert.Equal(t, int64(10_000_000), items[0].Commission)
	assert.Equal(t, int64(90_000_000), items[0].NetRevenue)

	require.NotNil(t, items[1].BookingID)
	assert.Equal(t, b2, *items[1].BookingID)
}

func TestAggregate_Payments(t *testing.T) {
	p1 := uuid.New()
	units := []models.BillingUnit{
		{ID: p1, Kind: domain.UnitKindPayment, Amount: 55_500_000},
	}

	total, items := aggregate(units)

	assert.Equal(t, int64(55_500_000), total)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].PaymentID)
	assert.Equal(t, p1, *items[0].PaymentID)
	assert.Nil(t, items[0].BookingID)
}

func TestAggregate_ZeroAmounts(t *testing.T) {
	units := []models.BillingUnit{
		{ID: uuid.New(), Kind: domain.UnitKindBooking, Amount: 0},
		{ID: uuid.New(), Kind: domain.UnitKindBooking, Amount: 0},
	}

	total, items := aggregate(units)
	assert.Equal(t, int64(0), total)
	assert.Len(t, items, 2)
}

func TestAggregate_LargeAmounts(t *testing.T) {
	// Values past float64 integer precision must still sum exactly.
	units := []models.BillingUnit{
		{ID: uuid.New(), Kind: domain.UnitKindBooking, Amount: 9_007_199_254_740_993},
		{ID: uuid.New(), Kind: domain.UnitKindBooking, Amount: 1},
	}

	total, _ := aggregate(units)
	assert.Equal(t, int64(9_007_199_254_740_994), total)
}

func TestNumberGenerator_Format(t *testing.T) {
	gen := NewNumberGenerator().
		WithClock(func() time.Time { return time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC) }).
		WithRand(func(n int) int { return 0 })

	number := gen.Generate("acme-hotels")
	assert.Equal(t, "INV-ACME-HOTELS-20260315-000000", number)
}

func TestNumberGenerator_ClockInUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	gen := NewNumberGenerator().
		WithClock(func() time.Time { return time.Date(2026, 3, 15, 23, 30, 0, 0, loc) }).
		WithRand(func(n int) int { return 1 })

	number := gen.Generate("acme")
	assert.Equal(t, "INV-ACME-20260316-111111", number)
}

func TestNumberGenerator_SuffixAlphabet(t *testing.T) {
	gen := NewNumberGenerator().WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	})

	for i := 0; i < 50; i++ {
		number := gen.Generate("t")
		suffix := number[len(number)-numberSuffixLen:]
		for _, c := range suffix {
			assert.Contains(t, numberSuffixAlphabet, string(c))
		}
	}
}
