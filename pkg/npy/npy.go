// Package npy reads and writes NumPy .npy files (format version 1.0) for
// the two dtypes the capture pipeline persists: uint8 and uint16 arrays.
// Little-endian, C order only.
package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var magic = []byte("\x93NUMPY")

const (
	descrUint8  = "|u1"
	descrUint16 = "<u2"
)

func WriteUint8(path string, data []uint8, shape ...int) error {
	if err := checkShape(len(data), shape); err != nil {
		return err
	}
	return writeFile(path, descrUint8, shape, data)
}

func WriteUint16(path string, data []uint16, shape ...int) error {
	if err := checkShape(len(data), shape); err != nil {
		return err
	}
	raw := make([]byte, 2*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint16(raw[2*i:], v)
	}
	return writeFile(path, descrUint16, shape, raw)
}

func ReadUint8(path string) ([]uint8, []int, error) {
	descr, shape, raw, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	if descr != descrUint8 {
		return nil, nil, fmt.Errorf("npy: %s has dtype %q, want %q", path, descr, descrUint8)
	}
	if len(raw) != numElems(shape) {
		return nil, nil, fmt.Errorf("npy: %s: payload is %d bytes, shape wants %d", path, len(raw), numElems(shape))
	}
	return raw, shape, nil
}

func ReadUint16(path string) ([]uint16, []int, error) {
	descr, shape, raw, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	if descr != descrUint16 {
		return nil, nil, fmt.Errorf("npy: %s has dtype %q, want %q", path, descr, descrUint16)
	}
	n := numElems(shape)
	if len(raw) != 2*n {
		return nil, nil, fmt.Errorf("npy: %s: payload is %d bytes, shape wants %d", path, len(raw), 2*n)
	}
	data := make([]uint16, n)
	for i := range data {
		data[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return data, shape, nil
}

func checkShape(n int, shape []int) error {
	if len(shape) == 0 {
		return fmt.Errorf("npy: empty shape")
	}
	if numElems(shape) != n {
		return fmt.Errorf("npy: shape %v wants %d elements, have %d", shape, numElems(shape), n)
	}
	return nil
}

func numElems(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func writeFile(path, descr string, shape []int, raw []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeHeader(f, descr, shape); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeHeader(w io.Writer, descr string, shape []int) error {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)
	// Pad so the payload starts on a 64-byte boundary, trailing newline
	// included, same as numpy itself.
	total := len(magic) + 2 + 2 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	buf := &bytes.Buffer{}
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	binary.Write(buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	_, err := w.Write(buf.Bytes())
	return err
}

func readFile(path string) (descr string, shape []int, raw []byte, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, err
	}
	if len(b) < len(magic)+4 || !bytes.Equal(b[:len(magic)], magic) {
		return "", nil, nil, fmt.Errorf("npy: %s is not an npy file", path)
	}
	major := b[len(magic)]
	if major != 1 {
		return "", nil, nil, fmt.Errorf("npy: %s: unsupported format version %d", path, major)
	}
	hlen := int(binary.LittleEndian.Uint16(b[len(magic)+2:]))
	start := len(magic) + 4
	if len(b) < start+hlen {
		return "", nil, nil, fmt.Errorf("npy: %s: truncated header", path)
	}
	header := string(b[start : start+hlen])
	descr, shape, err = parseHeader(header)
	if err != nil {
		return "", nil, nil, fmt.Errorf("npy: %s: %w", path, err)
	}
	return descr, shape, b[start+hlen:], nil
}

func parseHeader(header string) (descr string, shape []int, err error) {
	descr, err = dictValue(header, "descr")
	if err != nil {
		return "", nil, err
	}
	if strings.Contains(header, "'fortran_order': True") {
		return "", nil, fmt.Errorf("fortran order not supported")
	}
	lparen := strings.Index(header, "(")
	rparen := strings.Index(header, ")")
	if lparen < 0 || rparen < lparen {
		return "", nil, fmt.Errorf("malformed shape in header %q", header)
	}
	for _, part := range strings.Split(header[lparen+1:rparen], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return "", nil, fmt.Errorf("malformed shape in header %q", header)
		}
		shape = append(shape, d)
	}
	if len(shape) == 0 {
		return "", nil, fmt.Errorf("scalar npy not supported")
	}
	return descr, shape, nil
}

func dictValue(header, key string) (string, error) {
	tag := "'" + key + "': '"
	i := strings.Index(header, tag)
	if i < 0 {
		return "", fmt.Errorf("no %s in header %q", key, header)
	}
	rest := header[i+len(tag):]
	j := strings.Index(rest, "'")
	if j < 0 {
		return "", fmt.Errorf("malformed header %q", header)
	}
	return rest[:j], nil
}
