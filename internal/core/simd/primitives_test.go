package simd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orbitkernel/physics/internal/core/simd"
)

func TestUpdateVelocityMatchesScalarExpectation(t *testing.T) {
	n := 37 // deliberately not a multiple of any lane width
	vx := make([]float64, n)
	vy := make([]float64, n)
	vz := make([]float64, n)
	ax := make([]float64, n)
	ay := make([]float64, n)
	az := make([]float64, n)
	for i := range ax {
		ax[i] = float64(i)
		ay[i] = 2 * float64(i)
		az[i] = -float64(i)
	}

	simd.UpdateVelocity(vx, vy, vz, ax, ay, az, 0.5)

	for i := range vx {
		assert.InDelta(t, float64(i)*0.5, vx[i], 1e-10)
		assert.InDelta(t, 2*float64(i)*0.5, vy[i], 1e-10)
		assert.InDelta(t, -float64(i)*0.5, vz[i], 1e-10)
	}
}

func TestUpdatePositionMatchesScalarExpectation(t *testing.T) {
	n := 13
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)
	vx := make([]float64, n)
	vy := make([]float64, n)
	vz := make([]float64, n)
	ax := make([]float64, n)
	ay := make([]float64, n)
	az := make([]float64, n)
	for i := range vx {
		vx[i] = 1
		ax[i] = 2
	}

	dt := 0.1
	simd.UpdatePosition(px, py, pz, vx, vy, vz, ax, ay, az, dt)

	expected := vx[0]*dt + 0.5*ax[0]*dt*dt
	for i := range px {
		assert.InDelta(t, expected, px[i], 1e-12)
		assert.InDelta(t, 0.0, py[i], 1e-12)
		assert.InDelta(t, 0.0, pz[i], 1e-12)
	}
}

func TestAccumulateTotalSumsAcrossCalls(t *testing.T) {
	n := 9
	totx := make([]float64, n)
	toty := make([]float64, n)
	totz := make([]float64, n)
	fx := make([]float64, n)
	fy := make([]float64, n)
	fz := make([]float64, n)
	for i := range fx {
		fx[i] = 1
	}

	simd.AccumulateTotal(totx, toty, totz, fx, fy, fz)
	simd.AccumulateTotal(totx, toty, totz, fx, fy, fz)

	for i := range totx {
		assert.Equal(t, 2.0, totx[i])
		assert.Equal(t, 0.0, toty[i])
		assert.Equal(t, 0.0, totz[i])
	}
}

func TestDetectReturnsStableLaneWidth(t *testing.T) {
	first := simd.Detect()
	second := simd.Detect()
	assert.Equal(t, first, second, "lane width detection must be cached and stable within a process")
	assert.Contains(t, []simd.LaneWidth{simd.Lane1, simd.Lane4, simd.Lane8}, first)
}
