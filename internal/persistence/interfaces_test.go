package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRRBandFor(t *testing.T) {
	tests := []struct {
		rr   float64
		want string
	}{
		{4.0, "rr_gte_3"},
		{3.0, "rr_gte_3"},
		{2.5, "rr_2_3"},
		{2.0, "rr_2_3"},
		{1.25, "rr_lt_2"},
		{0.0, "rr_none"},
		{-1.0, "rr_none"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RRBandFor(tt.rr), "RRBandFor(%v)", tt.rr)
	}
}
