package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/user-none/pisplay/pis"
)

// WAVFormat describes the encoded output.
type WAVFormat struct {
	SampleRate int
	Channels   int
	Format     pis.Format
}

// WriteWAV writes mono samples as a RIFF WAVE file, duplicating each
// sample to every channel.
func WriteWAV(w io.Writer, mono []int16, f WAVFormat) error {
	if f.Channels < 1 {
		f.Channels = 1
	}
	enc := pis.FrameEncoder{Format: f.Format, Channels: f.Channels}

	bw := bufio.NewWriter(w)
	if err := wavHeader(bw, len(mono), f); err != nil {
		return err
	}

	const block = 4096
	buf := make([]byte, block*enc.FrameSize())
	for len(mono) > 0 {
		n := min(len(mono), block)
		written := enc.Encode(buf, mono[:n])
		if _, err := bw.Write(buf[:written]); err != nil {
			return fmt.Errorf("writing wav data: %w", err)
		}
		mono = mono[n:]
	}
	return bw.Flush()
}

// wavHeader writes the RIFF, fmt and data chunk headers for frames
// frames. Float output adds the fact chunk required for non-PCM data.
func wavHeader(w io.Writer, frames int, f WAVFormat) error {
	bytesPerSample := f.Format.BytesPerSample()
	dataSize := frames * f.Channels * bytesPerSample

	var chunkSize, fmtChunkSize, waveFormat int
	factChunk := f.Format == pis.FormatFloat32
	if factChunk {
		chunkSize = 50 + dataSize
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
	} else {
		chunkSize = 36 + dataSize
		fmtChunkSize = 16
		waveFormat = 1 // PCM
	}

	fields := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(chunkSize),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(fmtChunkSize),
		uint16(waveFormat),
		uint16(f.Channels),
		uint32(f.SampleRate),
		uint32(f.SampleRate * f.Channels * bytesPerSample), // avgBytesPerSec
		uint16(f.Channels * bytesPerSample),                // blockAlign
		uint16(8 * bytesPerSample),                         // bits per sample
	}
	if fmtChunkSize > 16 {
		fields = append(fields, uint16(0)) // size of extension
	}
	if factChunk {
		fields = append(fields, [4]byte{'f', 'a', 'c', 't'}, uint32(4), uint32(frames))
	}
	fields = append(fields, [4]byte{'d', 'a', 't', 'a'}, uint32(dataSize))

	for _, v := range fields {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("writing wav header: %w", err)
		}
	}
	return nil
}
