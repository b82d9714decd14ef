package gridio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	trueByte  = 't'
	falseByte = 'f'

	// MaxStringBytes is the longest string an int16 length prefix can hold.
	MaxStringBytes = math.MaxInt16

	// IntSize and ShortSize are the encoded widths of array elements.
	IntSize   = 4
	ShortSize = 2
)

var (
	// ErrFormat reports bytes that do not decode to the expected record.
	ErrFormat = errors.New("gridio: invalid format")

	// ErrRange reports a value too large for its encoding.
	ErrRange = errors.New("gridio: value out of range")
)

// Writer encodes records to an underlying stream.
type Writer struct {
	w   *bufio.Writer
	buf [4]byte
}

// NewWriter returns a buffered Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64*1024)}
}

// Flush writes any buffered data.
func (w *Writer) Flush() error { return w.w.Flush() }

func (w *Writer) WriteInt(v int32) error {
	binary.BigEndian.PutUint32(w.buf[:4], uint32(v))
	_, err := w.w.Write(w.buf[:4])
	return err
}

// WriteShort writes v as int16. Values outside the int16 range fail with
// ErrRange.
func (w *Writer) WriteShort(v int32) error {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return fmt.Errorf("%w: %d does not fit in 16 bits", ErrRange, v)
	}
	binary.BigEndian.PutUint16(w.buf[:2], uint16(int16(v)))
	_, err := w.w.Write(w.buf[:2])
	return err
}

func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.w.WriteByte(trueByte)
	}
	return w.w.WriteByte(falseByte)
}

func (w *Writer) WriteString(s string) error {
	if len(s) > MaxStringBytes {
		return fmt.Errorf("%w: string of %d bytes", ErrRange, len(s))
	}
	if err := w.WriteShort(int32(len(s))); err != nil {
		return err
	}
	_, err := w.w.WriteString(s)
	return err
}

func (w *Writer) writeLen(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: array of %d elements", ErrRange, n)
	}
	return w.WriteInt(int32(n))
}

func (w *Writer) WriteIntArray(values []int32) error {
	if err := w.writeLen(len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteInt(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteShortArray writes values as int16 elements.
func (w *Writer) WriteShortArray(values []int32) error {
	if err := w.writeLen(len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteShort(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteStringArray(values []string) error {
	if err := w.writeLen(len(values)); err != nil {
		return err
	}
	for _, s := range values {
		if err := w.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

// Reader decodes records from an underlying stream. A stream that ends
// before a record starts yields io.EOF; one that ends inside a record
// yields io.ErrUnexpectedEOF.
type Reader struct {
	r   *bufio.Reader
	buf [4]byte
	off int64
}

// NewReader returns a buffered Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Offset is the number of bytes consumed by successful reads.
func (r *Reader) Offset() int64 { return r.off }

func (r *Reader) ReadInt() (int32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return 0, err
	}
	r.off += 4
	return int32(binary.BigEndian.Uint32(r.buf[:4])), nil
}

func (r *Reader) ReadShort() (int32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return 0, err
	}
	r.off += 2
	return int32(int16(binary.BigEndian.Uint16(r.buf[:2]))), nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return false, err
	}
	r.off++
	switch b {
	case trueByte:
		return true, nil
	case falseByte:
		return false, nil
	}
	return false, fmt.Errorf("%w: boolean byte %d, want %d or %d", ErrFormat, b, falseByte, trueByte)
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadShort()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: negative string length %d", ErrFormat, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", noEOF(err)
	}
	r.off += int64(n)
	return string(b), nil
}

func (r *Reader) readLen() (int, error) {
	n, err := r.ReadInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative array length %d", ErrFormat, n)
	}
	return int(n), nil
}

func (r *Reader) ReadIntArray() ([]int32, error) {
	return readArray(r, r.ReadInt)
}

// ReadShortArray reads int16 elements, widened to int32.
func (r *Reader) ReadShortArray() ([]int32, error) {
	return readArray(r, r.ReadShort)
}

func (r *Reader) ReadStringArray() ([]string, error) {
	return readArray(r, r.ReadString)
}

// SkipArray passes over an array of fixed-width elements without decoding
// it and returns its length.
func (r *Reader) SkipArray(elemSize int) (int, error) {
	n, err := r.readLen()
	if err != nil {
		return 0, err
	}
	size := n * elemSize
	skipped, err := r.r.Discard(size)
	r.off += int64(skipped)
	if err != nil {
		return 0, noEOF(err)
	}
	return n, nil
}

// AtEOF reports whether the stream has no bytes left.
func (r *Reader) AtEOF() bool {
	_, err := r.r.Peek(1)
	return err != nil
}

// arrayChunk caps the initial allocation for a declared array length.
const arrayChunk = 1 << 16

func readArray[T any](r *Reader, next func() (T, error)) ([]T, error) {
	n, err := r.readLen()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, min(n, arrayChunk))
	for range n {
		v, err := next()
		if err != nil {
			return nil, noEOF(err)
		}
		out = append(out, v)
	}
	return out, nil
}

// noEOF turns a clean EOF inside a record into io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
