package resound

import "golang.org/x/sys/cpu"

// laneWidth is the vector width chosen once at process start: 8 when
// AVX2 is available, 4 for SSE2/NEON class hardware, else scalar. The
// inner loops below are unrolled to that width so the compiler can
// keep the lanes in vector registers.
var laneWidth = detectLanes()

func detectLanes() int {
	switch {
	case cpu.X86.HasAVX2:
		return 8
	case cpu.X86.HasSSE2, cpu.ARM64.HasASIMD, cpu.ARM.HasNEON:
		return 4
	default:
		return 1
	}
}

// processBuffer applies fn to every sample using the widest available
// lane with a scalar remainder loop.
func processBuffer(buf []float32, fn func(float32) float32) {
	n := len(buf)
	i := 0
	switch laneWidth {
	case 8:
		for ; i+8 <= n; i += 8 {
			buf[i+0] = fn(buf[i+0])
			buf[i+1] = fn(buf[i+1])
			buf[i+2] = fn(buf[i+2])
			buf[i+3] = fn(buf[i+3])
			buf[i+4] = fn(buf[i+4])
			buf[i+5] = fn(buf[i+5])
			buf[i+6] = fn(buf[i+6])
			buf[i+7] = fn(buf[i+7])
		}
	case 4:
		for ; i+4 <= n; i += 4 {
			buf[i+0] = fn(buf[i+0])
			buf[i+1] = fn(buf[i+1])
			buf[i+2] = fn(buf[i+2])
			buf[i+3] = fn(buf[i+3])
		}
	}
	for ; i < n; i++ {
		buf[i] = fn(buf[i])
	}
}

// scaleBuffer multiplies every sample by gain. Specialized rather than
// routed through processBuffer: a constant multiply vectorizes, a
// closure call does not.
func scaleBuffer(buf []float32, gain float32) {
	n := len(buf)
	i := 0
	switch laneWidth {
	case 8:
		for ; i+8 <= n; i += 8 {
			buf[i+0] *= gain
			buf[i+1] *= gain
			buf[i+2] *= gain
			buf[i+3] *= gain
			buf[i+4] *= gain
			buf[i+5] *= gain
			buf[i+6] *= gain
			buf[i+7] *= gain
		}
	case 4:
		for ; i+4 <= n; i += 4 {
			buf[i+0] *= gain
			buf[i+1] *= gain
			buf[i+2] *= gain
			buf[i+3] *= gain
		}
	}
	for ; i < n; i++ {
		buf[i] *= gain
	}
}

// accumulateScaled adds src*gain into dst; used by the mixer's
// channel sums.
func accumulateScaled(dst, src []float32, gain float32) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	i := 0
	if laneWidth >= 4 {
		for ; i+4 <= n; i += 4 {
			dst[i+0] += src[i+0] * gain
			dst[i+1] += src[i+1] * gain
			dst[i+2] += src[i+2] * gain
			dst[i+3] += src[i+3] * gain
		}
	}
	for ; i < n; i++ {
		dst[i] += src[i] * gain
	}
}
