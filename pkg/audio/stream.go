// Package audio decodes local audio files into opus packets sized for a
// Discord voice connection.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"layeh.com/gopus"
)

const (
	// Discord native format
	SampleRate = 48000
	Channels   = 2

	// FrameSamples is samples per channel in one 20ms frame at 48kHz.
	FrameSamples = 960

	// maxOpusBytes is the largest opus packet one frame may produce.
	maxOpusBytes = 1275
)

// Stream reads a clip through ffmpeg and yields one encoded opus packet per
// Next call. ffmpeg handles whatever container/codec the catalog serves;
// this package only ever sees interleaved s16le PCM on its stdout.
type Stream struct {
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	encoder *gopus.Encoder

	pcm     []byte
	samples []int16
}

// OpenStream starts the decode pipeline for the file at path.
func OpenStream(path string) (*Stream, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("audio file: %w", err)
	}

	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "s16le",
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"pipe:1")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating ffmpeg pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	encoder, err := gopus.NewEncoder(SampleRate, Channels, gopus.Audio)
	if err != nil {
		stdout.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return nil, fmt.Errorf("creating opus encoder: %w", err)
	}

	return &Stream{
		cmd:     cmd,
		stdout:  stdout,
		encoder: encoder,
		pcm:     make([]byte, FrameSamples*Channels*2),
		samples: make([]int16, FrameSamples*Channels),
	}, nil
}

// Next returns the next opus packet, or io.EOF when the clip ends. A final
// partial frame is dropped rather than padded; at 20ms it is inaudible.
func (s *Stream) Next() ([]byte, error) {
	if _, err := io.ReadFull(s.stdout, s.pcm); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("reading pcm: %w", err)
	}

	for i := range s.samples {
		s.samples[i] = int16(binary.LittleEndian.Uint16(s.pcm[2*i:]))
	}

	packet, err := s.encoder.Encode(s.samples, FrameSamples, maxOpusBytes)
	if err != nil {
		return nil, fmt.Errorf("encoding opus frame: %w", err)
	}

	return packet, nil
}

// Close tears down the ffmpeg process. Safe after EOF or mid-stream.
func (s *Stream) Close() error {
	s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()

	return nil
}
