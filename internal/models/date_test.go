package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-15"`), &d))
	assert.Equal(t, "2024-01-15", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-15"`, string(out))

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"15/01/2024"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20240115`), &d))
}

func TestDateScanValue(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC))

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", v)

	var scanned Date
	require.NoError(t, scanned.Scan("2024-03-09"))
	assert.True(t, scanned.Equal(d.Time))
	require.NoError(t, scanned.Scan([]byte("2024-03-10")))
	assert.Equal(t, "2024-03-10", scanned.String())
	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())
	assert.Error(t, scanned.Scan(42))
}

func TestDateTimeAcceptsNaiveTimestamps(t *testing.T) {
	for _, in := range []string{`"2024-01-15T10:30:00Z"`, `"2024-01-15T10:30:00"`, `"2024-01-15 10:30:00"`, `"2024-01-15T12:30:00+02:00"`} {
		var dt DateTime
		require.NoError(t, json.Unmarshal([]byte(in), &dt), in)
		assert.True(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC).Equal(dt.Time), in)
	}

	var dt DateTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &dt))
}
