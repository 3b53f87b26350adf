package stream

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns a chunked UTF-8 byte stream into text. A multi-byte sequence
// split across two chunks is held back until the rest of it arrives. Invalid
// bytes decode to U+FFFD.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

// NewDecoder returns a Decoder with no pending state.
func NewDecoder() *Decoder {
	return &Decoder{
		t:   unicode.UTF8.NewDecoder(),
		dst: make([]byte, 4096),
	}
}

// Decode returns the text completed by chunk. A trailing incomplete sequence
// is retained for the next call.
func (d *Decoder) Decode(chunk []byte) string {
	return d.run(chunk, false)
}

// Flush ends the stream. Any retained partial sequence is emitted as
// replacement characters and the decoder is reset.
func (d *Decoder) Flush() string {
	s := d.run(nil, true)
	d.t.Reset()
	return s
}

// Pending reports how many bytes are held back waiting for more input.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

func (d *Decoder) run(chunk []byte, atEOF bool) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}
	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out.Write(d.dst[:nDst])
		src = src[nSrc:]
		switch err {
		case nil:
			return out.String()
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			d.pending = append([]byte(nil), src...)
			return out.String()
		default:
			// The UTF-8 decoder replaces rather than rejects, so this is not
			// expected; keep the remainder for the next call.
			d.pending = append([]byte(nil), src...)
			return out.String()
		}
	}
}
