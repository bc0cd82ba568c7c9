package apu

import "math"

// firstOrderFilter is a single-pole IIR filter used to shape the mixer
// output the way the console's output stage does.
type firstOrderFilter struct {
	b0, b1, a1   float64
	prevX, prevY float64
}

func highPassFilter(sampleRate, cutoff float64) firstOrderFilter {
	c := sampleRate / math.Pi / cutoff
	a0i := 1 / (1 + c)
	return firstOrderFilter{
		b0: c * a0i,
		b1: -c * a0i,
		a1: (1 - c) * a0i,
	}
}

func lowPassFilter(sampleRate, cutoff float64) firstOrderFilter {
	c := sampleRate / math.Pi / cutoff
	a0i := 1 / (1 + c)
	return firstOrderFilter{
		b0: a0i,
		b1: a0i,
		a1: (1 - c) * a0i,
	}
}

func (f *firstOrderFilter) tick(x float64) float64 {
	y := f.b0*x + f.b1*f.prevX - f.a1*f.prevY
	f.prevY = y
	f.prevX = x
	return y
}
