// Package binio provides positioned binary readers and writers for the
// fixed-layout model files handled by this project.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// ErrOutOfBounds is returned when a read would cross the end of the buffer.
var ErrOutOfBounds = errors.New("binio: read past end of buffer")

// Reader decodes fixed-width values from an in-memory byte buffer.
// Every read advances the offset by exactly the byte width of the
// decoded type. Reads at or past the end of the buffer fail with
// ErrOutOfBounds instead of returning zero values.
type Reader struct {
	data  []byte
	off   int
	Order binary.ByteOrder
}

// NewReader returns a little-endian Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, Order: binary.LittleEndian}
}

// NewReaderOrder returns a Reader over data with an explicit byte order.
func NewReaderOrder(data []byte, order binary.ByteOrder) *Reader {
	return &Reader{data: data, Order: order}
}

// Tell returns the current read offset.
func (r *Reader) Tell() int { return r.off }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.off >= len(r.data) {
		return 0
	}
	return len(r.data) - r.off
}

// Seek repositions the offset. Backward seeks are allowed; the padding
// scans rely on a one-byte rewind.
func (r *Reader) Seek(pos int) { r.off = pos }

// Skip moves the offset forward (or backward, if n is negative).
func (r *Reader) Skip(n int) { r.off += n }

// take returns the next n bytes and advances the offset. The returned
// slice aliases the underlying buffer.
func (r *Reader) take(n int) ([]byte, error) {
	if r.off < 0 || n < 0 || r.off+n > len(r.data) {
		return nil, fmt.Errorf("%w: offset %d, need %d bytes of %d", ErrOutOfBounds, r.off, n, len(r.data))
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Bytes reads n raw bytes. The returned slice aliases the underlying
// buffer; callers that retain it must copy.
func (r *Reader) Bytes(n int) ([]byte, error) { return r.take(n) }

// FixedString reads an n-byte fixed-width string region. The caller is
// responsible for trimming padding and sanitizing.
func (r *Reader) FixedString(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return r.Order.Uint16(b), nil
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return r.Order.Uint32(b), nil
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return r.Order.Uint64(b), nil
}

func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Float16 reads an IEEE 754 half-precision value widened to float32.
func (r *Reader) Float16() (float32, error) {
	bits, err := r.Uint16()
	if err != nil {
		return 0, err
	}
	return float16.Frombits(bits).Float32(), nil
}

func (r *Reader) Float32() (float32, error) {
	bits, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (r *Reader) Float64() (float64, error) {
	bits, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// Vec2f reads two float32 values.
func (r *Reader) Vec2f() ([2]float32, error) {
	var v [2]float32
	b, err := r.take(8)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = math.Float32frombits(r.Order.Uint32(b[i*4:]))
	}
	return v, nil
}

// Vec3f reads three float32 values.
func (r *Reader) Vec3f() ([3]float32, error) {
	var v [3]float32
	b, err := r.take(12)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = math.Float32frombits(r.Order.Uint32(b[i*4:]))
	}
	return v, nil
}

// Vec4f reads four float32 values.
func (r *Reader) Vec4f() ([4]float32, error) {
	var v [4]float32
	b, err := r.take(16)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = math.Float32frombits(r.Order.Uint32(b[i*4:]))
	}
	return v, nil
}

// Vec2hf reads two half-precision values widened to float32.
func (r *Reader) Vec2hf() ([2]float32, error) {
	var v [2]float32
	b, err := r.take(4)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = float16.Frombits(r.Order.Uint16(b[i*2:])).Float32()
	}
	return v, nil
}

// Vec3ub reads three unsigned bytes.
func (r *Reader) Vec3ub() ([3]uint8, error) {
	var v [3]uint8
	b, err := r.take(3)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// Vec4ub reads four unsigned bytes.
func (r *Reader) Vec4ub() ([4]uint8, error) {
	var v [4]uint8
	b, err := r.take(4)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// Vec3sb reads three signed bytes.
func (r *Reader) Vec3sb() ([3]int8, error) {
	var v [3]int8
	b, err := r.take(3)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = int8(b[i])
	}
	return v, nil
}

// Vec2us reads two unsigned 16-bit values.
func (r *Reader) Vec2us() ([2]uint16, error) {
	var v [2]uint16
	b, err := r.take(4)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = r.Order.Uint16(b[i*2:])
	}
	return v, nil
}

// Vec3us reads three unsigned 16-bit values.
func (r *Reader) Vec3us() ([3]uint16, error) {
	var v [3]uint16
	b, err := r.take(6)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = r.Order.Uint16(b[i*2:])
	}
	return v, nil
}

// Vec2ui reads two unsigned 32-bit values.
func (r *Reader) Vec2ui() ([2]uint32, error) {
	var v [2]uint32
	b, err := r.take(8)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = r.Order.Uint32(b[i*4:])
	}
	return v, nil
}

// Vec3ui reads three unsigned 32-bit values.
func (r *Reader) Vec3ui() ([3]uint32, error) {
	var v [3]uint32
	b, err := r.take(12)
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] = r.Order.Uint32(b[i*4:])
	}
	return v, nil
}

// Vec3si reads three signed 32-bit values.
func (r *Reader) Vec3si() ([3]int32, error) {
	u, err := r.Vec3ui()
	return [3]int32{int32(u[0]), int32(u[1]), int32(u[2])}, err
}
