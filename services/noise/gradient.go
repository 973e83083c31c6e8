package noise

import "math"

// The explicit float64 conversions below stop the compiler from fusing
// multiply-add pairs into FMA instructions, which would round differently on
// arm64, ppc64le, s390x and GOAMD64=v3 builds.

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	inner := float64(t*6) - 15
	inner = float64(t*inner) + 10
	return t * t * t * inner
}

func lerp(t, a, b float64) float64 {
	return a + float64(t*(b-a))
}

// grad dots one of four axis-aligned gradients, chosen by the low two bits of
// hash, with the corner offset (x, y).
func grad(hash uint8, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return y
	case 1:
		return -y
	case 2:
		return x
	default:
		return -x
	}
}

// cell returns floor(v) wrapped into [0, TableSize). It is well-defined for
// every finite v, including values outside the int range.
func cell(floor float64) int {
	m := math.Mod(floor, TableSize)
	if m < 0 {
		m += TableSize
	}
	return int(m)
}

// Evaluate returns 2D gradient noise at (x, y). The result is continuous
// across cell boundaries and bounded by ±√2/2 for the four-gradient set.
func Evaluate(x, y float64, t *Table) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi, yi := cell(fx), cell(fy)

	xf := x - fx
	yf := y - fy

	u := fade(xf)
	v := fade(yf)

	a := (int(t[xi]) + yi) & (TableSize - 1)
	b := (int(t[xi+1]) + yi) & (TableSize - 1)

	return lerp(v,
		lerp(u, grad(t[a], xf, yf), grad(t[b], xf-1, yf)),
		lerp(u, grad(t[a+1], xf, yf-1), grad(t[b+1], xf-1, yf-1)),
	)
}
