package geo

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() []Point {
	return []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
}

func TestBuildRingTooShort(t *testing.T) {
	var buf bytes.Buffer
	b := NewRingBuilder(0, slog.New(slog.NewTextHandler(&buf, nil)))

	for n := 0; n < MinRingPoints; n++ {
		poly, ok := b.Build("XX", "raw-text", square()[:n])
		assert.False(t, ok)
		assert.Nil(t, poly)
	}
	assert.Contains(t, buf.String(), "ring_too_short")
	assert.Contains(t, buf.String(), "code=XX")
	assert.Contains(t, buf.String(), "raw=raw-text")
}

func TestBuildRingClosedIsIdempotent(t *testing.T) {
	b := NewRingBuilder(0, nil)
	poly, ok := b.Build("XX", "", square())
	require.True(t, ok)
	assert.Equal(t, len(square()), len(RingFromPolygon(poly)))
	assert.Equal(t, Ring(square()), RingFromPolygon(poly))
}

func TestBuildRingAppendsClosingPoint(t *testing.T) {
	open := []Point{{0, 0}, {0, 2}, {2, 2}, {2, 0}, {1, -1}}
	b := NewRingBuilder(0, nil)
	poly, ok := b.Build("XX", "", open)
	require.True(t, ok)
	ring := RingFromPolygon(poly)
	require.Len(t, ring, len(open)+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Equal(t, 0.0, FirstLon(poly))
}

func TestCloseSnapsNearlyClosedRing(t *testing.T) {
	pts := []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0.4, 0.4}}
	ring := Close(pts, LegacyTolerance)
	require.Len(t, ring, len(pts))
	assert.Equal(t, ring[0], ring[len(ring)-1])
	// 输入不被修改
	assert.Equal(t, Point{0.4, 0.4}, pts[4])
}

func TestRingFlat(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0, 1}, Ring{{0, 0}, {0, 1}}.Flat())
}
