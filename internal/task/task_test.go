package task

import (
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityRankOrder(t *testing.T) {
	assert.Equal(t, 0, High.Rank())
	assert.Equal(t, 1, Medium.Rank())
	assert.Equal(t, 2, Low.Rank())
	for i, p := range Priorities {
		assert.Equal(t, i, p.Rank(), p.String())
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{in: "HIGH", want: High},
		{in: "high", want: High},
		{in: " h ", want: High},
		{in: "Medium", want: Medium},
		{in: "m", want: Medium},
		{in: "LOW", want: Low},
		{in: "l", want: Low},
		{in: "urgent", want: Medium, wantErr: true},
		{in: "", want: Medium, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriorityNextPrevClamp(t *testing.T) {
	assert.Equal(t, High, Medium.Next())
	assert.Equal(t, High, High.Next())
	assert.Equal(t, Medium, Low.Next())
	assert.Equal(t, Low, Medium.Prev())
	assert.Equal(t, Low, Low.Prev())
	assert.Equal(t, Medium, High.Prev())
}

func TestPriorityTOML(t *testing.T) {
	type doc struct {
		Priority Priority `toml:"priority"`
	}
	data, err := toml.Marshal(doc{Priority: Low})
	require.NoError(t, err)
	assert.Contains(t, string(data), "LOW")

	var d doc
	require.NoError(t, toml.Unmarshal([]byte(`priority = "high"`), &d))
	assert.Equal(t, High, d.Priority)

	require.Error(t, toml.Unmarshal([]byte(`priority = "soon"`), &d))
}

func TestNormalizeDue(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	in := time.Date(2025, 1, 10, 6, 0, 0, 0, loc)
	got := NormalizeDue(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, in.Equal(got))
}
