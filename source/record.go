// Package source is the data collaborator of the visualizations: parsed
// records, file decoders, and an asynchronous loader whose Snapshot never blocks.
package source

import (
	"strings"
	"time"

	"github.com/teranos/folio/errors"
)

// Record is one portfolio item as delivered by a data file.
type Record struct {
	ID       string              `json:"id" yaml:"id" toml:"id"`
	Title    string              `json:"title" yaml:"title" toml:"title"`
	Category string              `json:"category" yaml:"category" toml:"category"`
	Tags     map[string][]string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	Weight   float64             `json:"weight,omitempty" yaml:"weight,omitempty" toml:"weight,omitempty"`
	Start    string              `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End      string              `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
	Parent   string              `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	Whisper  string              `json:"whisper,omitempty" yaml:"whisper,omitempty" toml:"whisper,omitempty"`
	Icon     string              `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Links    []string            `json:"links,omitempty" yaml:"links,omitempty" toml:"links,omitempty"`
	Meta     map[string]string   `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty"`
}

// Validate checks the fields every builder relies on.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.Wrap(errors.ErrInvalidNode, "record id is required")
	}
	if r.Weight < 0 {
		return errors.Wrapf(errors.ErrInvalidNode, "record %s: negative weight", r.ID)
	}
	if r.Start != "" {
		if _, err := ParseDate(r.Start); err != nil {
			return errors.Wrapf(err, "record %s", r.ID)
		}
	}
	if r.End != "" {
		if _, err := ParseDate(r.End); err != nil {
			return errors.Wrapf(err, "record %s", r.ID)
		}
	}
	return nil
}

// Label is the display title, falling back to the id.
func (r Record) Label() string {
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}

// StartTime parses Start. ok is false when it is missing or malformed.
func (r Record) StartTime() (time.Time, bool) {
	t, err := ParseDate(r.Start)
	return t, err == nil
}

// Months is the span from Start to End in months; an open end counts as zero length.
func (r Record) Months() float64 {
	start, err := ParseDate(r.Start)
	if err != nil {
		return 0
	}
	end, err := ParseDate(r.End)
	if err != nil || end.Before(start) {
		return 0
	}
	return end.Sub(start).Hours() / (24 * 30.44)
}

var dateLayouts = []string{"2006-01-02", "2006-01", "2006", time.RFC3339}

// ParseDate accepts a full date, a year-month, a bare year, or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(errors.ErrInvalidNode, "unrecognized date %q", s)
}

// Dataset is one loaded data file.
type Dataset struct {
	Name    string   `json:"name"`
	Records []Record `json:"records,omitempty"`
	// Text is the raw source of text-defined visualizations (diagrams).
	Text string `json:"text,omitempty"`
}

// Source supplies a dataset without blocking. ok is false until the data has
// arrived; callers poll instead of building on partial data.
type Source interface {
	Snapshot() (Dataset, bool)
}

// Static is a Source that is ready from the start.
type Static Dataset

// Snapshot returns the dataset.
func (s Static) Snapshot() (Dataset, bool) { return Dataset(s), true }
