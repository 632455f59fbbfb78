package tabular

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

func init() {
	Register(".ndjson", ndjsonFormat{})
	Register(".jsonl", ndjsonFormat{})
}

type ndjsonFormat struct{}

func (ndjsonFormat) ContentType() string { return "application/x-ndjson" }

// Read decodes one JSON object per line. Columns are the union of keys in
// first-seen order. Numbers keep their literal text.
func (ndjsonFormat) Read(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	t := &Table{}
	index := map[string]int{}
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		keys, vals, err := decodeObject(b)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]any, len(t.Columns))
		for i, k := range keys {
			col, ok := index[k]
			if !ok {
				col = len(t.Columns)
				index[k] = col
				t.Columns = append(t.Columns, k)
			}
			for len(row) <= col {
				row = append(row, nil)
			}
			row[col] = vals[i]
		}
		t.Rows = append(t.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, ErrEmpty
	}
	return t, nil
}

// decodeObject reads a flat JSON object keeping key order.
func decodeObject(b []byte) ([]string, []any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected JSON object")
	}
	var (
		keys []string
		vals []any
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		vals = append(vals, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, vals, nil
}

func (ndjsonFormat) Write(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	for _, row := range t.Rows {
		bw.WriteByte('{')
		for i, c := range t.Columns {
			if i > 0 {
				bw.WriteByte(',')
			}
			k, err := json.Marshal(c)
			if err != nil {
				return err
			}
			v, err := json.Marshal(cell(row, i))
			if err != nil {
				return err
			}
			bw.Write(k)
			bw.WriteByte(':')
			bw.Write(v)
		}
		bw.WriteString("}\n")
	}
	return bw.Flush()
}
