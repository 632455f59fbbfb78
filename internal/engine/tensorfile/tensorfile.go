// Package tensorfile reads and writes the safetensors container used for
// fitted model weights: an 8-byte little-endian header length, a JSON
// header, then raw little-endian tensor data.
package tensorfile

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
)

// Supported dtypes.
const (
	F32 = "F32"
	I64 = "I64"
)

// ErrNotFound is returned when a named tensor is absent from the file.
var ErrNotFound = errors.New("tensor not found")

// Tensor is one named tensor. Exactly one of F32 or I64 is populated,
// matching Dtype.
type Tensor struct {
	Name  string
	Dtype string
	Shape []int
	F32   []float32
	I64   []int64
}

type tensorMeta struct {
	Dtype       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// File is a decoded safetensors file.
type File struct {
	path    string
	tensors map[string]Tensor
}

// Read loads and decodes every F32 and I64 tensor in the file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tensorfile: %w", err)
	}
	tensors, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("tensorfile: %s: %w", path, err)
	}
	return &File{path: path, tensors: tensors}, nil
}

func decode(data []byte) (map[string]Tensor, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("file too small: %d bytes", len(data))
	}
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if uint64(len(data)) < 8+headerLen {
		return nil, fmt.Errorf("header length %d exceeds file size", headerLen)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	body := data[8+headerLen:]
	tensors := make(map[string]Tensor, len(header))
	for name, raw := range header {
		if name == "__metadata__" {
			continue
		}
		var meta tensorMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("tensor %q: parse metadata: %w", name, err)
		}
		t, err := decodeTensor(name, meta, body)
		if err != nil {
			return nil, err
		}
		tensors[name] = t
	}
	return tensors, nil
}

func decodeTensor(name string, meta tensorMeta, body []byte) (Tensor, error) {
	n := 1
	for _, d := range meta.Shape {
		if d < 0 {
			return Tensor{}, fmt.Errorf("tensor %q: negative dimension in shape %v", name, meta.Shape)
		}
		n *= d
	}

	start, end := meta.DataOffsets[0], meta.DataOffsets[1]
	if start < 0 || end < start || end > len(body) {
		return Tensor{}, fmt.Errorf("tensor %q: data range [%d:%d] exceeds data size %d",
			name, start, end, len(body))
	}
	raw := body[start:end]

	t := Tensor{Name: name, Dtype: meta.Dtype, Shape: meta.Shape}
	switch meta.Dtype {
	case F32:
		if len(raw) != n*4 {
			return Tensor{}, fmt.Errorf("tensor %q: data size %d doesn't match shape %v", name, len(raw), meta.Shape)
		}
		t.F32 = make([]float32, n)
		for i := range t.F32 {
			t.F32[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case I64:
		if len(raw) != n*8 {
			return Tensor{}, fmt.Errorf("tensor %q: data size %d doesn't match shape %v", name, len(raw), meta.Shape)
		}
		t.I64 = make([]int64, n)
		for i := range t.I64 {
			t.I64[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	default:
		return Tensor{}, fmt.Errorf("tensor %q: unsupported dtype %s", name, meta.Dtype)
	}
	return t, nil
}

// Path returns the file the tensors were read from.
func (f *File) Path() string {
	return f.path
}

// Has reports whether the file contains a tensor with the given name.
func (f *File) Has(name string) bool {
	_, ok := f.tensors[name]
	return ok
}

// Float32 returns the data and shape of an F32 tensor.
func (f *File) Float32(name string) ([]float32, []int, error) {
	t, ok := f.tensors[name]
	if !ok {
		return nil, nil, fmt.Errorf("tensorfile: %q: %w", name, ErrNotFound)
	}
	if t.Dtype != F32 {
		return nil, nil, fmt.Errorf("tensorfile: %q: expected dtype F32, got %s", name, t.Dtype)
	}
	return t.F32, t.Shape, nil
}

// Int64 returns the data and shape of an I64 tensor.
func (f *File) Int64(name string) ([]int64, []int, error) {
	t, ok := f.tensors[name]
	if !ok {
		return nil, nil, fmt.Errorf("tensorfile: %q: %w", name, ErrNotFound)
	}
	if t.Dtype != I64 {
		return nil, nil, fmt.Errorf("tensorfile: %q: expected dtype I64, got %s", name, t.Dtype)
	}
	return t.I64, t.Shape, nil
}

// Write encodes tensors into a safetensors file at path. Tensors are laid
// out in name order.
func Write(path string, tensors ...Tensor) error {
	sorted := make([]Tensor, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	header := make(map[string]tensorMeta, len(sorted))
	var body []byte
	for _, t := range sorted {
		start := len(body)
		switch t.Dtype {
		case F32:
			for _, v := range t.F32 {
				body = binary.LittleEndian.AppendUint32(body, math.Float32bits(v))
			}
		case I64:
			for _, v := range t.I64 {
				body = binary.LittleEndian.AppendUint64(body, uint64(v))
			}
		default:
			return fmt.Errorf("tensorfile: tensor %q: unsupported dtype %s", t.Name, t.Dtype)
		}
		header[t.Name] = tensorMeta{Dtype: t.Dtype, Shape: t.Shape, DataOffsets: [2]int{start, len(body)}}
	}

	hdr, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("tensorfile: marshal header: %w", err)
	}

	out := make([]byte, 0, 8+len(hdr)+len(body))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(hdr)))
	out = append(out, hdr...)
	out = append(out, body...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("tensorfile: %w", err)
	}
	return nil
}
