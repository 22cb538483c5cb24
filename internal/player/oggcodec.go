package player

import (
	"encoding/binary"
	"errors"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

var (
	errUnknownOggCodec     = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errInvalidOpusHead     = errors.New("opus: invalid identification header")
	errUnsupportedOpus     = errors.New("opus: unsupported version")
	errInvalidVorbisHeader = errors.New("vorbis: invalid identification header")
	errVorbisBufferSmall   = errors.New("vorbis: output buffer too small")
)

const (
	// Opus always decodes at 48 kHz whatever the input rate was.
	opusSampleRate = 48000
	// Decoder convergence window recommended after an Opus seek.
	opusPreRoll = 3840
)

// oggCodec decodes the packets of one Ogg logical stream.
type oggCodec interface {
	sampleRate() int
	channels() int
	// preSkip is the number of leading frames to discard.
	preSkip() int
	// preRoll is how far before a seek target decoding must restart.
	preRoll() int
	headersDone() bool
	// addHeader consumes the next header packet and reports whether all
	// headers have been read.
	addHeader(packet []byte) (bool, error)
	// decode writes interleaved samples to pcm and returns the frame count.
	decode(packet []byte, pcm []float32) (int, error)
	reset()
}

// detectOggCodec builds the codec announced by the first packet.
func detectOggCodec(first []byte) (oggCodec, error) {
	switch {
	case len(first) >= 8 && string(first[:8]) == "OpusHead":
		return newOpusCodec(first)
	case len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis":
		return newVorbisCodec(first)
	}
	return nil, errUnknownOggCodec
}

type opusCodec struct {
	decoder *opus.Decoder
	ch      int
	skip    int
	tags    bool // OpusTags seen
}

func newOpusCodec(head []byte) (*opusCodec, error) {
	if len(head) < 19 {
		return nil, errInvalidOpusHead
	}
	if head[8] != 1 {
		return nil, errUnsupportedOpus
	}
	ch := int(head[9])
	if ch < 1 || ch > 2 {
		return nil, errInvalidOpusHead
	}
	dec, err := opus.NewDecoder(opusSampleRate, ch)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		decoder: dec,
		ch:      ch,
		skip:    int(binary.LittleEndian.Uint16(head[10:12])),
	}, nil
}

func (c *opusCodec) sampleRate() int   { return opusSampleRate }
func (c *opusCodec) channels() int     { return c.ch }
func (c *opusCodec) preSkip() int      { return c.skip }
func (c *opusCodec) preRoll() int      { return opusPreRoll }
func (c *opusCodec) headersDone() bool { return c.tags }

func (c *opusCodec) addHeader(_ []byte) (bool, error) {
	c.tags = true
	return true, nil
}

func (c *opusCodec) decode(packet []byte, pcm []float32) (int, error) {
	return c.decoder.DecodeFloat32(packet, pcm)
}

// reset is a no-op: the pre-roll lets the decoder converge.
func (c *opusCodec) reset() {}

// vorbisCodec buffers the three Vorbis headers before building the
// decoder.
type vorbisCodec struct {
	decoder *vorbis.Decoder
	ch      int
	rate    int
	headers [][]byte
}

func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	// [0] type, [1:7] "vorbis", [7:11] version, [11] channels, [12:16] rate
	if len(ident) < 16 || binary.LittleEndian.Uint32(ident[7:11]) != 0 {
		return nil, errInvalidVorbisHeader
	}
	ch := int(ident[11])
	if ch < 1 {
		return nil, errInvalidVorbisHeader
	}
	return &vorbisCodec{
		ch:      ch,
		rate:    int(binary.LittleEndian.Uint32(ident[12:16])),
		headers: [][]byte{append([]byte(nil), ident...)},
	}, nil
}

func (c *vorbisCodec) sampleRate() int   { return c.rate }
func (c *vorbisCodec) channels() int     { return c.ch }
func (c *vorbisCodec) preSkip() int      { return 0 }
func (c *vorbisCodec) preRoll() int      { return 0 }
func (c *vorbisCodec) headersDone() bool { return c.decoder != nil }

func (c *vorbisCodec) addHeader(packet []byte) (bool, error) {
	if c.decoder != nil {
		return true, nil
	}
	c.headers = append(c.headers, append([]byte(nil), packet...))
	if len(c.headers) < 3 {
		return false, nil
	}
	dec := &vorbis.Decoder{}
	for _, h := range c.headers {
		if err := dec.ReadHeader(h); err != nil {
			return false, err
		}
	}
	c.decoder = dec
	c.headers = nil
	return true, nil
}

func (c *vorbisCodec) decode(packet []byte, pcm []float32) (int, error) {
	samples, err := c.decoder.Decode(packet)
	if err != nil {
		return 0, err
	}
	if len(pcm) < len(samples) {
		return 0, errVorbisBufferSmall
	}
	return copy(pcm, samples) / c.ch, nil
}

func (c *vorbisCodec) reset() {
	if c.decoder != nil {
		c.decoder.Clear()
	}
}
