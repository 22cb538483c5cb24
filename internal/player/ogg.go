package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
	errOggNoHeaders      = errors.New("ogg: stream ended before codec headers")
)

const (
	oggHeaderSize    = 27
	oggContinued     = 0x01
	oggNoGranule     = -1
	oggFramesPerPass = 8192
)

// oggPage is one demuxed page: the packets completed on it and the
// granule position after the last of them.
type oggPage struct {
	granule int64
	packets [][]byte
}

// oggPageHeader is the fixed part of a page plus its lacing values.
type oggPageHeader struct {
	flags    byte
	granule  int64
	segments []byte
}

func (h oggPageHeader) bodySize() int64 {
	var n int64
	for _, s := range h.segments {
		n += int64(s)
	}
	return n
}

func readOggPageHeader(r io.Reader) (oggPageHeader, error) {
	var buf [oggHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return oggPageHeader{}, err
	}
	if string(buf[0:4]) != "OggS" {
		return oggPageHeader{}, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return oggPageHeader{}, errInvalidOggVersion
	}
	// Serial, sequence and CRC are not checked: single logical stream.
	h := oggPageHeader{
		flags:    buf[5],
		granule:  int64(binary.LittleEndian.Uint64(buf[6:14])),
		segments: make([]byte, buf[26]),
	}
	if _, err := io.ReadFull(r, h.segments); err != nil {
		return oggPageHeader{}, unexpected(err)
	}
	return h, nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// oggReader reassembles packets from the pages of a single logical stream.
type oggReader struct {
	rs        io.ReadSeeker
	dataStart int64

	partial []byte // packet continued on the next page
	open    bool
}

func (o *oggReader) readPage() (*oggPage, error) {
	h, err := readOggPageHeader(o.rs)
	if err != nil {
		return nil, err
	}
	body := make([]byte, h.bodySize())
	if _, err := io.ReadFull(o.rs, body); err != nil {
		return nil, unexpected(err)
	}

	pkt, open := o.partial, o.open
	if h.flags&oggContinued == 0 {
		pkt, open = nil, false
	}
	o.partial, o.open = nil, false

	page := &oggPage{granule: h.granule}
	off := 0
	for _, s := range h.segments {
		pkt = append(pkt, body[off:off+int(s)]...)
		open = true
		off += int(s)
		if s < 255 {
			page.packets = append(page.packets, pkt)
			pkt, open = nil, false
		}
	}
	if open {
		o.partial, o.open = pkt, true
	}
	return page, nil
}

// pages walks the page headers from dataStart, calling fn with each
// page's offset and granule, without reading bodies. fn returning false
// stops the walk.
func (o *oggReader) pages(fn func(offset, granule int64) bool) error {
	offset, err := o.rs.Seek(o.dataStart, io.SeekStart)
	if err != nil {
		return err
	}
	for {
		h, err := readOggPageHeader(o.rs)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(offset, h.granule) {
			_, err := o.rs.Seek(offset, io.SeekStart)
			return err
		}
		next, err := o.rs.Seek(h.bodySize(), io.SeekCurrent)
		if err != nil {
			return err
		}
		offset = next
	}
}

// lastGranule returns the highest granule position in the stream.
func (o *oggReader) lastGranule() (int64, error) {
	last := int64(0)
	err := o.pages(func(_, granule int64) bool {
		if granule != oggNoGranule {
			last = max(last, granule)
		}
		return true
	})
	return last, err
}

// seekGranule positions the reader on the first page that completes a
// packet at or past target. It returns the granule where decoding from
// that page starts.
func (o *oggReader) seekGranule(target int64) (int64, error) {
	start := int64(0)
	found := false
	err := o.pages(func(_, granule int64) bool {
		if granule == oggNoGranule {
			return true
		}
		if granule >= target {
			found = true
			return false
		}
		start = granule
		return true
	})
	o.partial, o.open = nil, false
	if err != nil {
		return 0, err
	}
	if !found {
		// Past the end: leave the reader at EOF.
		if _, err := o.rs.Seek(0, io.SeekEnd); err != nil {
			return 0, err
		}
	}
	return start, nil
}

// decodeOgg decodes an Ogg Opus or Ogg Vorbis stream.
func decodeOgg(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	r := &oggReader{rs: rc}

	first, err := r.readPage()
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("ogg: read first page: %w", err)
	}
	if len(first.packets) == 0 {
		return nil, beep.Format{}, errOggNoHeaders
	}
	codec, err := detectOggCodec(first.packets[0])
	if err != nil {
		return nil, beep.Format{}, err
	}

	// Headers always end on a page boundary; anything after them on the
	// same page is audio.
	pending := first.packets[1:]
	var audio [][]byte
	for done := codec.headersDone(); !done; {
		if len(pending) == 0 {
			page, err := r.readPage()
			if errors.Is(err, io.EOF) {
				return nil, beep.Format{}, errOggNoHeaders
			}
			if err != nil {
				return nil, beep.Format{}, err
			}
			pending = page.packets
			continue
		}
		if done, err = codec.addHeader(pending[0]); err != nil {
			return nil, beep.Format{}, err
		}
		pending = pending[1:]
		if done {
			audio = pending
		}
	}

	if r.dataStart, err = rc.Seek(0, io.SeekCurrent); err != nil {
		return nil, beep.Format{}, err
	}
	last, err := r.lastGranule()
	if err != nil {
		return nil, beep.Format{}, err
	}
	if _, err := rc.Seek(r.dataStart, io.SeekStart); err != nil {
		return nil, beep.Format{}, err
	}

	d := &oggDecoder{
		r:      r,
		codec:  codec,
		closer: rc,
		queue:  audio,
		pcm:    make([]float32, 0, oggFramesPerPass*codec.channels()),
		skip:   codec.preSkip(),
		length: max(int(last)-codec.preSkip(), 0),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.sampleRate()),
		NumChannels: codec.channels(),
		Precision:   2,
	}
	return d, format, nil
}

// oggDecoder implements beep.StreamSeekCloser over an oggReader. Positions
// exclude the codec pre-skip.
type oggDecoder struct {
	r      *oggReader
	codec  oggCodec
	closer io.Closer

	queue  [][]byte
	pcm    []float32 // interleaved
	pcmPos int
	skip   int // frames to drop before output resumes
	pos    int
	length int
	err    error
}

func (d *oggDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	ch := d.codec.channels()

	for n < len(samples) && d.pos < d.length {
		if d.pcmPos < len(d.pcm) {
			if d.skip > 0 {
				drop := min(d.skip, (len(d.pcm)-d.pcmPos)/ch)
				d.pcmPos += drop * ch
				d.skip -= drop
				continue
			}
			for n < len(samples) && d.pcmPos < len(d.pcm) && d.pos < d.length {
				samples[n][0] = float64(d.pcm[d.pcmPos])
				if ch > 1 {
					samples[n][1] = float64(d.pcm[d.pcmPos+1])
				} else {
					samples[n][1] = samples[n][0]
				}
				d.pcmPos += ch
				d.pos++
				n++
			}
			continue
		}

		if len(d.queue) == 0 {
			page, err := d.r.readPage()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					d.err = err
				}
				return n, n > 0
			}
			d.queue = page.packets
			continue
		}

		pkt := d.queue[0]
		d.queue = d.queue[1:]
		frames, err := d.codec.decode(pkt, d.pcm[:cap(d.pcm)])
		if err != nil {
			// Corrupt packets are skipped.
			continue
		}
		d.pcm = d.pcm[:frames*ch]
		d.pcmPos = 0
	}
	return n, n > 0
}

func (d *oggDecoder) Err() error    { return d.err }
func (d *oggDecoder) Len() int      { return d.length }
func (d *oggDecoder) Position() int { return d.pos }

func (d *oggDecoder) Seek(p int) error {
	p = min(max(p, 0), d.length)
	target := int64(p + d.codec.preSkip())
	from := max(target-int64(d.codec.preRoll()), 0)

	start, err := d.r.seekGranule(from)
	if err != nil {
		return err
	}
	d.codec.reset()
	d.queue = nil
	d.pcm = d.pcm[:0]
	d.pcmPos = 0
	d.skip = int(target - start)
	d.pos = p
	d.err = nil
	return nil
}

func (d *oggDecoder) Close() error {
	return d.closer.Close()
}
