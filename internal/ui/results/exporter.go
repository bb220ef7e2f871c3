package results

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/querydesk/internal/api"
)

// ErrNoImage is returned when a result carries no usable visualization.
var ErrNoImage = errors.New("no visualization image")

// ExportCSV writes the given columns and rows to a CSV file at path. Null
// cells are written as empty fields.
func ExportCSV(path string, columns []string, rows [][]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j], _ = api.CellString(row[j])
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ExportJSON writes the given columns and rows as a JSON array of objects
// to a file at path. Values keep their decoded JSON types and null stays
// null.
func ExportJSON(path string, columns []string, rows [][]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	objects := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(columns))
		for j, name := range columns {
			if j < len(row) {
				obj[name] = row[j]
			} else {
				obj[name] = nil
			}
		}
		objects = append(objects, obj)
	}

	return enc.Encode(objects)
}

// Image is a decoded visualization.
type Image struct {
	MIME string
	Data []byte
}

// Ext returns the file extension for the image type.
func (img Image) Ext() string {
	switch img.MIME {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "image/gif":
		return ".gif"
	}
	return ".png"
}

// DecodeImage parses a visualization payload: a base64 data URI such as
// "data:image/png;base64,...", or bare base64 PNG data.
func DecodeImage(payload string) (Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Image{}, ErrNoImage
	}

	mime := "image/png"
	data := payload
	if strings.HasPrefix(payload, "data:") {
		meta, rest, ok := strings.Cut(payload[len("data:"):], ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return Image{}, fmt.Errorf("decode visualization: unsupported data URI")
		}
		if t := strings.TrimSuffix(meta, ";base64"); t != "" {
			mime = t
		}
		data = rest
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Image{}, fmt.Errorf("decode visualization: %w", err)
	}
	return Image{MIME: mime, Data: raw}, nil
}

// SaveImage decodes payload and writes it to dir with a timestamped name.
// It returns the written path.
func SaveImage(dir, payload string, now time.Time) (string, error) {
	img, err := DecodeImage(payload)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportName("visualization", img.Ext(), now))
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ExportName returns "<prefix>_<timestamp><ext>".
func ExportName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s%s", prefix, now.Format("20060102_150405"), ext)
}
