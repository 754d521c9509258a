package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/espertofit/core/logger"
)

//go:embed workout.json
var embedded []byte

// idSep is the callback token delimiter; training ids end at its first occurrence.
const idSep = ":"

// ErrCodeLoad is reported by LoadError.Code.
const ErrCodeLoad = "CATALOG_LOAD"

// LoadError reports catalog data that could not be decoded or validated.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Code returns a stable identifier for logs.
func (e *LoadError) Code() string { return ErrCodeLoad }

// Parse decodes and validates a JSON catalog.
func Parse(data []byte) ([]Training, error) {
	return parse("json", data, decodeJSON)
}

// ParseYAML decodes and validates a YAML catalog with the same field names as JSON.
func ParseYAML(data []byte) ([]Training, error) {
	return parse("yaml", data, decodeYAML)
}

func parse(source string, data []byte, decode func([]byte, *[]Training) error) ([]Training, error) {
	var out []Training
	if err := decode(data, &out); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if err := validate(out); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return out, nil
}

func decodeJSON(data []byte, dst *[]Training) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after the catalog array")
	}
	return nil
}

func decodeYAML(data []byte, dst *[]Training) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("unexpected document after the catalog")
	}
	return nil
}

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	ts, err := Parse(embedded)
	if err != nil {
		return nil, err
	}
	return build(ts), nil
}

// Open loads the catalog at path. Files ending in .yaml or .yml are decoded
// as YAML, anything else as JSON. An empty path selects the embedded catalog.
func Open(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	source := path
	var (
		c   *Catalog
		err error
	)
	if path == "" {
		source = "embedded"
		c, err = Default()
	} else {
		c, err = openFile(path)
	}
	if err != nil {
		logger.Catalog.Error("catalog load failed",
			slog.String("event", "catalog.load"),
			slog.String("status", "fail"),
			slog.String("source", source),
			slog.String("err", err.Error()),
			slog.String("err_code", ErrCodeLoad),
		)
		return nil, err
	}
	logger.Catalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.String("status", "ok"),
		slog.String("source", source),
		slog.Int("count", c.Len()),
	)
	return c, nil
}

func openFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	var ts []Training
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		ts, err = ParseYAML(data)
	default:
		ts, err = Parse(data)
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Source = path
		}
		return nil, err
	}
	return build(ts), nil
}

func validate(ts []Training) error {
	seen := make(map[string]struct{}, len(ts))
	for i, t := range ts {
		if t.Identifier == "" {
			return fmt.Errorf("training #%d: empty identifier", i)
		}
		if strings.Contains(t.Identifier, idSep) {
			return fmt.Errorf("training %q: identifier must not contain %q", t.Identifier, idSep)
		}
		if _, dup := seen[t.Identifier]; dup {
			return fmt.Errorf("duplicate training %q", t.Identifier)
		}
		seen[t.Identifier] = struct{}{}

		names := make(map[string]struct{}, len(t.Exercises))
		for j, e := range t.Exercises {
			if e.Name == "" {
				return fmt.Errorf("training %q exercise #%d: empty name", t.Identifier, j)
			}
			if _, dup := names[e.Name]; dup {
				return fmt.Errorf("training %q: duplicate exercise %q", t.Identifier, e.Name)
			}
			names[e.Name] = struct{}{}
			if err := validateSeries(e.Series); err != nil {
				return fmt.Errorf("training %q exercise %q: %w", t.Identifier, e.Name, err)
			}
		}
	}
	return nil
}

func validateSeries(s Series) error {
	switch {
	case s.Repetitions != nil && s.Continuous != nil:
		return errors.New("series has both Repetitions and Continuous")
	case s.Repetitions != nil:
		r := s.Repetitions
		if r.Sets < 0 || r.Repetitions < 0 {
			return errors.New("negative sets or repetitions")
		}
		if r.Load != nil && *r.Load < 0 {
			return errors.New("negative load")
		}
	case s.Continuous != nil:
		c := s.Continuous
		if c.DurationSeconds < 0 {
			return errors.New("negative duration")
		}
		if c.Sets != nil && *c.Sets < 0 {
			return errors.New("negative sets")
		}
	default:
		return errors.New("series has no variant")
	}
	return nil
}
