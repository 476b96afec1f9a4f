package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/teranos/folio/errors"
	"gopkg.in/yaml.v3"
)

// Format is a data file encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatCSV     Format = "csv"
	FormatDiagram Format = "mermaid"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".csv":
		return FormatCSV, nil
	case ".mmd", ".mermaid":
		return FormatDiagram, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrInvalidRequest, "unsupported data file %s", path),
		"use .json, .yaml, .toml, .csv or .mmd",
	)
}

// ReadFile loads and decodes one data file.
func ReadFile(path string) (Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Dataset{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, errors.Wrapf(err, "failed to read %s", path)
	}
	ds, err := Decode(format, data)
	if err != nil {
		return Dataset{}, errors.Wrapf(err, "failed to decode %s", path)
	}
	ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ds, nil
}

// recordFile is the document shape shared by the structured formats:
// either a bare list or a table with a records key.
type recordFile struct {
	Records []Record `json:"records" yaml:"records" toml:"records"`
}

// Decode parses data in format. Every record is validated.
func Decode(format Format, data []byte) (Dataset, error) {
	var ds Dataset
	var err error
	switch format {
	case FormatJSON:
		ds.Records, err = decodeJSON(data)
	case FormatYAML:
		ds.Records, err = decodeYAML(data)
	case FormatTOML:
		var f recordFile
		_, err = toml.Decode(string(data), &f)
		ds.Records = f.Records
	case FormatCSV:
		ds.Records, err = decodeCSV(bytes.NewReader(data))
	case FormatDiagram:
		ds.Text = string(data)
		return ds, nil
	default:
		return ds, errors.Wrapf(errors.ErrInvalidRequest, "format %q", format)
	}
	if err != nil {
		return Dataset{}, err
	}
	seen := make(map[string]bool, len(ds.Records))
	for i, r := range ds.Records {
		if err := r.Validate(); err != nil {
			return Dataset{}, errors.Wrapf(err, "record %d", i)
		}
		if seen[r.ID] {
			return Dataset{}, errors.Wrapf(errors.ErrInvalidNode, "duplicate record id %q", r.ID)
		}
		seen[r.ID] = true
	}
	return ds, nil
}

func decodeJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, errors.Wrap(err, "invalid json")
		}
		return recs, nil
	}
	var f recordFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, errors.Wrap(err, "invalid json")
	}
	return f.Records, nil
}

func decodeYAML(data []byte) ([]Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.Wrap(err, "invalid yaml")
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var recs []Record
		if err := node.Content[0].Decode(&recs); err != nil {
			return nil, errors.Wrap(err, "invalid yaml")
		}
		return recs, nil
	}
	var f recordFile
	if err := node.Content[0].Decode(&f); err != nil {
		return nil, errors.Wrap(err, "invalid yaml")
	}
	return f.Records, nil
}

// decodeCSV reads a header row and one record per line. Known columns map to
// Record fields; "tag.<axis>" columns become Tags (values split on ";"); links
// are split on ";"; anything else lands in Meta.
func decodeCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "invalid csv")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	recs := make([]Record, 0, len(rows)-1)
	for line, row := range rows[1:] {
		var rec Record
		for i, raw := range row {
			if i >= len(header) {
				break
			}
			v := strings.TrimSpace(raw)
			if v == "" {
				continue
			}
			switch col := header[i]; {
			case col == "id":
				rec.ID = v
			case col == "title" || col == "name":
				rec.Title = v
			case col == "category" || col == "theme":
				rec.Category = v
			case col == "weight":
				w, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, errors.Wrapf(errors.ErrInvalidNode, "line %d: weight %q", line+2, v)
				}
				rec.Weight = w
			case col == "start":
				rec.Start = v
			case col == "end":
				rec.End = v
			case col == "parent":
				rec.Parent = v
			case col == "whisper":
				rec.Whisper = v
			case col == "icon":
				rec.Icon = v
			case col == "links":
				rec.Links = splitList(v)
			case strings.HasPrefix(col, "tag."):
				if rec.Tags == nil {
					rec.Tags = make(map[string][]string)
				}
				rec.Tags[strings.TrimPrefix(col, "tag.")] = splitList(v)
			default:
				if rec.Meta == nil {
					rec.Meta = make(map[string]string)
				}
				rec.Meta[col] = v
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
