package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	now := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC) // 2024-03-02 01:00 KST

	got, err := parseDate("2024-02-14", now, seoul)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, seoul), got)

	got, err = parseDate("", now, seoul)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, seoul), got)

	_, err = parseDate("14/02/2024", now, seoul)
	assert.Error(t, err)
}
