package simd

// UpdateVelocity performs v[i] += a[i]*dt for every lane in parallel
// x/y/z arrays, i.e. the F=ma integration step's velocity half applied in
// bulk across a dense SoA store. All four slices must share the same
// length; callers (the dense SoA store's bulk accessors) guarantee this.
func UpdateVelocity(vx, vy, vz, ax, ay, az []float64, dt float64) {
	n := len(vx)
	lane := int(Detect())
	i := 0
	for ; i+lane <= n; i += lane {
		for j := 0; j < lane; j++ {
			vx[i+j] += ax[i+j] * dt
			vy[i+j] += ay[i+j] * dt
			vz[i+j] += az[i+j] * dt
		}
	}
	for ; i < n; i++ {
		vx[i] += ax[i] * dt
		vy[i] += ay[i] * dt
		vz[i] += az[i] * dt
	}
}

// UpdatePosition performs p[i] += v[i]*dt + 0.5*a[i]*dt^2 across parallel
// x/y/z arrays.
func UpdatePosition(px, py, pz, vx, vy, vz, ax, ay, az []float64, dt float64) {
	n := len(px)
	half := 0.5 * dt * dt
	lane := int(Detect())
	i := 0
	for ; i+lane <= n; i += lane {
		for j := 0; j < lane; j++ {
			px[i+j] += vx[i+j]*dt + ax[i+j]*half
			py[i+j] += vy[i+j]*dt + ay[i+j]*half
			pz[i+j] += vz[i+j]*dt + az[i+j]*half
		}
	}
	for ; i < n; i++ {
		px[i] += vx[i]*dt + ax[i]*half
		py[i] += vy[i]*dt + ay[i]*half
		pz[i] += vz[i]*dt + az[i]*half
	}
}

// AccumulateTotal performs tot[i] += f[i] across parallel x/y/z arrays, the
// bulk form of a single force provider's contribution being folded into
// the running per-entity total.
func AccumulateTotal(totx, toty, totz, fx, fy, fz []float64) {
	n := len(totx)
	lane := int(Detect())
	i := 0
	for ; i+lane <= n; i += lane {
		for j := 0; j < lane; j++ {
			totx[i+j] += fx[i+j]
			toty[i+j] += fy[i+j]
			totz[i+j] += fz[i+j]
		}
	}
	for ; i < n; i++ {
		totx[i] += fx[i]
		toty[i] += fy[i]
		totz[i] += fz[i]
	}
}
