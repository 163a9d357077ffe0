package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$15.000", FormatPrice(1500000))
	assert.Equal(t, "$15.800", FormatPrice(1580000))
	assert.Equal(t, "$12.346", FormatPrice(1234550))
	assert.Equal(t, "$0", FormatPrice(0))
	assert.Equal(t, "$0", FormatPrice(-10))
}

func TestRelativeLabel(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ago := func(d time.Duration) int64 { return now.Add(-d).Unix() }

	tests := []struct {
		name string
		ts   int64
		want string
	}{
		{name: "just now", ts: ago(10 * time.Second), want: "Hace 0 mins"},
		{name: "one minute", ts: ago(time.Minute), want: "Hace 1 min"},
		{name: "minutes", ts: ago(45 * time.Minute), want: "Hace 45 mins"},
		{name: "one hour", ts: ago(time.Hour), want: "Hace 1 hora"},
		{name: "hours", ts: ago(5 * time.Hour), want: "Hace 5 horas"},
		{name: "one day", ts: ago(24 * time.Hour), want: "Hace 1 día"},
		{name: "days", ts: ago(3 * 24 * time.Hour), want: "Hace 3 días"},
		{name: "one week", ts: ago(8 * 24 * time.Hour), want: "Hace 1 semana"},
		{name: "weeks", ts: ago(21 * 24 * time.Hour), want: "Hace 3 semanas"},
		{name: "future", ts: now.Add(time.Hour).Unix(), want: "Hace 0 mins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeLabel(now, tt.ts))
		})
	}
}

func TestIsStale(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	assert.False(t, IsStale(now, now.Add(-6*24*time.Hour).Unix()))
	assert.True(t, IsStale(now, now.Add(-8*24*time.Hour).Unix()))
}

func TestNewPriceDisplay(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	d := NewPriceDisplay("3", 1500000, now.Add(-2*time.Hour).Unix(), now)
	assert.Equal(t, "3", d.StoreID)
	assert.Equal(t, int64(1500000), d.PriceInCents)
	assert.Equal(t, "$15.000", d.FormattedPrice)
	assert.Equal(t, "Hace 2 horas", d.UpdatedLabel)
	assert.False(t, d.Stale)
}

func TestPriceCents(t *testing.T) {
	cents, err := Price{Amount: "158000"}.Cents()
	require.NoError(t, err)
	assert.Equal(t, int64(158000), cents)

	cents, err = Price{}.Cents()
	require.NoError(t, err)
	assert.Equal(t, int64(0), cents)

	_, err = Price{Amount: "340282366920938463463374607431768211456"}.Cents()
	assert.Error(t, err)

	assert.False(t, Price{Amount: "000"}.IsSet())
	assert.True(t, Price{Amount: "10"}.IsSet())
}

func TestReportDescription(t *testing.T) {
	for _, reason := range ReportReasons {
		got, err := NewReportDescription(reason)
		require.NoError(t, err)
		assert.Equal(t, reason, got)
	}

	_, err := NewReportDescription("   ")
	assert.ErrorIs(t, err, ErrEmptyReport)

	_, err = NewReportDescription("El precio publicado no coincide con el de la góndola")
	assert.ErrorIs(t, err, ErrReportTooLong)
}

func TestStoreMapsURL(t *testing.T) {
	assert.Equal(t, "https://maps.app.goo.gl/HB4Hymkdh6NRnHy1A", Store{URI: "HB4Hymkdh6NRnHy1A"}.MapsURL())
	assert.Equal(t, "https://example.com/x", Store{URI: "https://example.com/x"}.MapsURL())
	assert.Equal(t, "", Store{}.MapsURL())
}

func TestParseStoreID(t *testing.T) {
	id, err := ParseStoreID(" 007 ")
	require.NoError(t, err)
	assert.Equal(t, "7", id)

	for _, raw := range []string{"", "-1", "0x1", "abc", "18446744073709551616"} {
		_, err := ParseStoreID(raw)
		assert.ErrorIs(t, err, ErrInvalidStoreID, raw)
	}
}
