package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// wavHeaderSize is the canonical 44-byte RIFF/fmt/data header.
const wavHeaderSize = 44

// WAVSize is the encoded size in bytes of a mono 16-bit clip.
func WAVSize(samples int) uint64 {
	return wavHeaderSize + uint64(samples)*2
}

// EncodeWAV writes samples as a 16-bit mono PCM WAV stream.
func EncodeWAV(w io.Writer, samples []float32, sampleRate int) error {
	const bitsPerSample = 16
	dataLen := uint32(len(samples) * 2)

	header := struct {
		RIFF          [4]byte
		ChunkSize     uint32
		WAVE          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataLen,
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * bitsPerSample / 8),
		BlockAlign:    bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataLen,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = int16(clamp(float64(s), -1, 1) * 32767)
	}
	if err := binary.Write(w, binary.LittleEndian, pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}

// RenderClip runs a fresh engine for the given duration and returns the
// samples. The engine is stopped before returning.
func RenderClip(p Params, seconds float64, sampleRate int, seed int64) []float32 {
	e := New(sampleRate, seed)
	_ = e.Start(p)
	defer e.Stop()

	buf := make([]float32, int(seconds*float64(e.SampleRate())))
	e.Render(buf)
	return buf
}
