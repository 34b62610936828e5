package report

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// fixedZipTime keeps archives byte-for-byte reproducible (1980-01-01 UTC,
// the ZIP epoch).
var fixedZipTime = time.Unix(315532800, 0).UTC()

func createEntry(zw *zip.Writer, name string) (*entryWriter, error) {
	h := &zip.FileHeader{Name: sanitizeZipPath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime
	w, err := zw.CreateHeader(h)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return &entryWriter{name: name, w: w}, nil
}

type entryWriter struct {
	name string
	w    io.Writer
}

func (e *entryWriter) write(b []byte) error {
	if _, err := e.w.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", e.name, err)
	}
	return nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	e, err := createEntry(zw, name)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return e.write(append(b, '\n'))
}

// writeJSONL writes one compact JSON value per line.
func writeJSONL[T any](zw *zip.Writer, name string, items []T) error {
	e, err := createEntry(zw, name)
	if err != nil {
		return err
	}
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := e.write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func writeText(zw *zip.Writer, name string, data []byte) error {
	e, err := createEntry(zw, name)
	if err != nil {
		return err
	}
	return e.write(data)
}

// sanitizeZipPath normalizes separators to '/', strips drive letters and
// leading slashes and resolves "." and ".." without escaping the root.
func sanitizeZipPath(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	parts := strings.Split(strings.TrimLeft(s, "/"), "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	if len(stack) == 0 {
		return "entry"
	}
	return path.Join(stack...)
}
