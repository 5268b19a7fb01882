package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	// Формат PostgreSQL с секундами нормализуется к HH:MM
	ts, err = NewTimeStringFromString("14:45:00")
	require.NoError(t, err)
	assert.Equal(t, "14:45", ts.String())

	for _, bad := range []string{"25:00", "9:30am", "abc", ""} {
		_, err := NewTimeStringFromString(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeString, "input %q", bad)
	}
}

func TestAddMinutes(t *testing.T) {
	ts := TimeString("10:00")

	shifted, err := ts.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, "10:30", shifted.String())

	shifted, err = ts.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, "11:30", shifted.String())

	// Переход через полночь - ошибка данных расписания
	_, err = TimeString("23:45").AddMinutes(30)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestCompare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("18:30").IsAfter("08:30"))
}

func TestMinutesBetween(t *testing.T) {
	minutes, err := TimeString("09:00").MinutesBetween("10:30")
	require.NoError(t, err)
	assert.Equal(t, 90, minutes)

	minutes, err = TimeString("12:00").MinutesBetween("11:00")
	require.NoError(t, err)
	assert.Equal(t, -60, minutes)
}

func TestScan(t *testing.T) {
	var ts TimeString

	// lib/pq возвращает колонки TIME строками
	require.NoError(t, ts.Scan("10:15:00"))
	assert.Equal(t, "10:15", ts.String())

	require.NoError(t, ts.Scan([]byte("08:00")))
	assert.Equal(t, "08:00", ts.String())

	require.NoError(t, ts.Scan(time.Date(2026, 9, 15, 16, 45, 0, 0, time.UTC)))
	assert.Equal(t, "16:45", ts.String())

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestValue(t *testing.T) {
	v, err := TimeString("10:15").Value()
	require.NoError(t, err)
	assert.Equal(t, "10:15:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("bad").Value()
	assert.Error(t, err)
}
