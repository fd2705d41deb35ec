package binio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"
)

// Writer encodes fixed-width values to one of three sinks: a growable
// in-memory buffer, a caller-supplied fixed-size buffer overwritten in
// place, or an io.WriteSeeker stream. The same width table governs both
// directions: a write of type T at offset O followed by a read of type T
// at offset O returns the original value (modulo half-float rounding).
type Writer struct {
	buf    []byte
	off    int
	fixed  bool
	stream io.WriteSeeker
	length int
	Order  binary.ByteOrder
}

// NewWriter returns a little-endian Writer backed by a growable buffer.
func NewWriter() *Writer {
	return &Writer{Order: binary.LittleEndian}
}

// NewWriterBuffer returns a Writer that overwrites buf in place. Writes
// past len(buf) fail with ErrOutOfBounds.
func NewWriterBuffer(buf []byte) *Writer {
	return &Writer{buf: buf, fixed: true, length: len(buf), Order: binary.LittleEndian}
}

// NewWriterStream returns a Writer that emits directly to ws. Tell and
// Seek delegate to the stream's own position.
func NewWriterStream(ws io.WriteSeeker) *Writer {
	return &Writer{stream: ws, Order: binary.LittleEndian}
}

// Buffer returns the accumulated bytes for buffer-backed writers, nil
// for stream writers.
func (w *Writer) Buffer() []byte { return w.buf }

// Len returns the sink size: buffer length for buffer-backed writers,
// the highest offset written for streams.
func (w *Writer) Len() int {
	if w.stream != nil {
		return w.length
	}
	return len(w.buf)
}

// Tell returns the current write offset.
func (w *Writer) Tell() int {
	if w.stream != nil {
		pos, err := w.stream.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		return int(pos)
	}
	return w.off
}

// Seek repositions the write offset.
func (w *Writer) Seek(pos int) error {
	if w.stream != nil {
		_, err := w.stream.Seek(int64(pos), io.SeekStart)
		return err
	}
	if pos < 0 {
		return fmt.Errorf("%w: seek to %d", ErrOutOfBounds, pos)
	}
	w.off = pos
	return nil
}

// put writes p at the current offset and advances it.
func (w *Writer) put(p []byte) error {
	switch {
	case w.stream != nil:
		if _, err := w.stream.Write(p); err != nil {
			return fmt.Errorf("binio: stream write: %w", err)
		}
		if pos := w.Tell(); pos > w.length {
			w.length = pos
		}
		return nil
	case w.fixed:
		if w.off+len(p) > len(w.buf) {
			return fmt.Errorf("%w: offset %d, need %d bytes of %d", ErrOutOfBounds, w.off, len(p), len(w.buf))
		}
		copy(w.buf[w.off:], p)
		w.off += len(p)
		return nil
	default:
		if w.off == len(w.buf) {
			w.buf = append(w.buf, p...)
		} else {
			if grow := w.off + len(p) - len(w.buf); grow > 0 {
				w.buf = append(w.buf, make([]byte, grow)...)
			}
			copy(w.buf[w.off:], p)
		}
		w.off += len(p)
		w.length = len(w.buf)
		return nil
	}
}

// Bytes writes raw bytes as-is.
func (w *Writer) Bytes(p []byte) error { return w.put(p) }

// FixedString writes s into an n-byte region, zero-padded or truncated
// to the declared width.
func (w *Writer) FixedString(s string, n int) error {
	p := make([]byte, n)
	copy(p, s)
	return w.put(p)
}

// ASCIIString writes the raw bytes of s with no length prefix.
func (w *Writer) ASCIIString(s string) error { return w.put([]byte(s)) }

// NumString writes a uint32 length prefix followed by the string bytes.
func (w *Writer) NumString(s string) error {
	if err := w.Uint32(uint32(len(s))); err != nil {
		return err
	}
	return w.ASCIIString(s)
}

// Zeros writes n zero bytes.
func (w *Writer) Zeros(n int) error { return w.put(make([]byte, n)) }

func (w *Writer) Uint8(v uint8) error { return w.put([]byte{v}) }

func (w *Writer) Int8(v int8) error { return w.Uint8(uint8(v)) }

func (w *Writer) Uint16(v uint16) error {
	var p [2]byte
	w.Order.PutUint16(p[:], v)
	return w.put(p[:])
}

func (w *Writer) Int16(v int16) error { return w.Uint16(uint16(v)) }

func (w *Writer) Uint32(v uint32) error {
	var p [4]byte
	w.Order.PutUint32(p[:], v)
	return w.put(p[:])
}

func (w *Writer) Int32(v int32) error { return w.Uint32(uint32(v)) }

func (w *Writer) Uint64(v uint64) error {
	var p [8]byte
	w.Order.PutUint64(p[:], v)
	return w.put(p[:])
}

func (w *Writer) Int64(v int64) error { return w.Uint64(uint64(v)) }

// Float16 narrows v to IEEE 754 half precision and writes its bits.
func (w *Writer) Float16(v float32) error {
	return w.Uint16(float16.Fromfloat32(v).Bits())
}

func (w *Writer) Float32(v float32) error {
	return w.Uint32(math.Float32bits(v))
}

func (w *Writer) Float64(v float64) error {
	return w.Uint64(math.Float64bits(v))
}

// Vec2f writes two float32 values.
func (w *Writer) Vec2f(v [2]float32) error {
	var p [8]byte
	for i, f := range v {
		w.Order.PutUint32(p[i*4:], math.Float32bits(f))
	}
	return w.put(p[:])
}

// Vec3f writes three float32 values.
func (w *Writer) Vec3f(v [3]float32) error {
	var p [12]byte
	for i, f := range v {
		w.Order.PutUint32(p[i*4:], math.Float32bits(f))
	}
	return w.put(p[:])
}

// Vec4f writes four float32 values.
func (w *Writer) Vec4f(v [4]float32) error {
	var p [16]byte
	for i, f := range v {
		w.Order.PutUint32(p[i*4:], math.Float32bits(f))
	}
	return w.put(p[:])
}

// Vec2hf writes two values narrowed to half precision.
func (w *Writer) Vec2hf(v [2]float32) error {
	var p [4]byte
	for i, f := range v {
		w.Order.PutUint16(p[i*2:], float16.Fromfloat32(f).Bits())
	}
	return w.put(p[:])
}

// Vec3ub writes three unsigned bytes.
func (w *Writer) Vec3ub(v [3]uint8) error { return w.put(v[:]) }

// Vec4ub writes four unsigned bytes.
func (w *Writer) Vec4ub(v [4]uint8) error { return w.put(v[:]) }

// Vec3sb writes three signed bytes.
func (w *Writer) Vec3sb(v [3]int8) error {
	return w.put([]byte{uint8(v[0]), uint8(v[1]), uint8(v[2])})
}

// Vec2us writes two unsigned 16-bit values.
func (w *Writer) Vec2us(v [2]uint16) error {
	var p [4]byte
	for i, u := range v {
		w.Order.PutUint16(p[i*2:], u)
	}
	return w.put(p[:])
}

// Vec3us writes three unsigned 16-bit values.
func (w *Writer) Vec3us(v [3]uint16) error {
	var p [6]byte
	for i, u := range v {
		w.Order.PutUint16(p[i*2:], u)
	}
	return w.put(p[:])
}

// Vec3ui writes three unsigned 32-bit values.
func (w *Writer) Vec3ui(v [3]uint32) error {
	var p [12]byte
	for i, u := range v {
		w.Order.PutUint32(p[i*4:], u)
	}
	return w.put(p[:])
}
