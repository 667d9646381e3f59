package audio

import (
	"encoding/binary"
	"math"
)

// FloatsToFrame converts mono float samples in [-1,1] to interleaved int16
// samples, duplicating each sample across all channels. Values outside the
// range are clipped.
func FloatsToFrame(mono []float64) []int16 {
	frame := make([]int16, len(mono)*Channels)
	for i, v := range mono {
		s := clip16(v * math.MaxInt16)
		for c := 0; c < Channels; c++ {
			frame[i*Channels+c] = s
		}
	}
	return frame
}

func clip16(v float64) int16 {
	if v > 32767 {
		return 32767
	} else if v < -32768 {
		return -32768
	}
	return int16(v)
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// Silence returns an all-zero interleaved frame.
func Silence() []int16 {
	return make([]int16, FrameSamples)
}
