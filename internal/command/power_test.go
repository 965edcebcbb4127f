package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAccrue_SingleDay(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	logs := Accrue(nil, start, start.Add(30*time.Minute), Rates{Watts: 1000, CostPerKwh: 60})

	require.Len(t, logs, 1)
	assert.Equal(t, PowerLog{Date: "2025-06-02", Runtime: 30, Kwh: 30, Cost: 30}, logs[0])
}

func TestAccrue_VAT(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	logs := Accrue(nil, start, start.Add(60*time.Minute), Rates{Watts: 500, CostPerKwh: 6, VATRate: 17})

	require.Len(t, logs, 1)
	assert.InDelta(t, 60, logs[0].Runtime, 1e-9)
	assert.InDelta(t, 30, logs[0].Kwh, 1e-9)
	assert.InDelta(t, 30*(6.0/60)*1.17, logs[0].Cost, 1e-9)
}

func TestAccrue_SplitsAtMidnight(t *testing.T) {
	loc := time.FixedZone("IDT", 3*60*60)
	start := time.Date(2025, 6, 2, 23, 15, 40, 0, loc)
	end := time.Date(2025, 6, 4, 0, 45, 10, 0, loc)

	logs := Accrue(nil, start, end, Rates{Watts: 1000, CostPerKwh: 60})
	require.Len(t, logs, 3)
	assert.Equal(t, "2025-06-04", logs[0].Date)
	assert.Equal(t, "2025-06-03", logs[1].Date)
	assert.Equal(t, "2025-06-02", logs[2].Date)
	assert.Equal(t, 45.0, logs[0].Runtime)
	assert.Equal(t, 1440.0, logs[1].Runtime)
	assert.Equal(t, 45.0, logs[2].Runtime)

	var total float64
	for _, l := range logs {
		total += l.Runtime
	}
	elapsed := end.Truncate(time.Minute).Sub(start.Truncate(time.Minute)).Minutes()
	assert.Equal(t, elapsed, total)
}

func TestAccrue_EndsAtMidnight(t *testing.T) {
	start := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	logs := Accrue(nil, start, end, Rates{Watts: 1000, CostPerKwh: 60})
	require.Len(t, logs, 1)
	assert.Equal(t, "2025-06-02", logs[0].Date)
	assert.Equal(t, 60.0, logs[0].Runtime)
}

func TestAccrue_MergesSameDay(t *testing.T) {
	existing := []PowerLog{
		{Date: "2025-06-01", Runtime: 10, Kwh: 10, Cost: 10},
		{Date: "2025-06-02", Runtime: 5, Kwh: 5, Cost: 5},
	}
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	logs := Accrue(existing, start, start.Add(20*time.Minute), Rates{Watts: 1000, CostPerKwh: 60})
	require.Len(t, logs, 2)
	assert.Equal(t, PowerLog{Date: "2025-06-02", Runtime: 25, Kwh: 25, Cost: 25}, logs[0])
	assert.Equal(t, existing[0], logs[1])
}

func TestAccrue_ZeroLengthAddsNothing(t *testing.T) {
	start := time.Date(2025, 6, 2, 8, 0, 10, 0, time.UTC)
	assert.Empty(t, Accrue(nil, start, start.Add(20*time.Second), Rates{Watts: 1000, CostPerKwh: 60}))
}

func TestDecodePowerLogs(t *testing.T) {
	raw := []any{
		map[string]any{"date": "2025-06-02", "runtime": 30.0, "kwh": 30.0, "cost": 30.0},
		map[string]any{"date": 7},
		"garbage",
	}
	logs := DecodePowerLogs(raw, zap.NewNop())
	require.Len(t, logs, 1)
	assert.Equal(t, PowerLog{Date: "2025-06-02", Runtime: 30, Kwh: 30, Cost: 30}, logs[0])

	assert.Nil(t, DecodePowerLogs(nil, zap.NewNop()))
}
