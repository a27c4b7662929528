package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Error codes reported in structured CLI output.
const (
	ErrCodeNotFound = "E_NOT_FOUND" // project or score file missing
	ErrCodeParse    = "E_PARSE"     // project file does not parse
	ErrCodeInvalid  = "E_INVALID"   // project field fails validation
	ErrCodeRun      = "E_RUN"       // frame run failed
)

// Project is the YAML project file driving a generate run.
type Project struct {
	// Score is the notation document, ".mscx" or packed ".mscz".
	Score string `yaml:"score"`

	// Width is the target frame width in pixels.
	Width int `yaml:"width"`

	OutDir     string `yaml:"outdir"`
	Workers    int    `yaml:"workers"`
	Executable string `yaml:"executable"`

	AlphaOnly       *bool `yaml:"alpha_only"`
	FirstEmptyFrame *bool `yaml:"first_empty_frame"`
	DeleteTemp      *bool `yaml:"delete_temp"`

	Frame0 int `yaml:"frame0"`

	// MaxTremolo is the finest animated tremolo stroke, as a duration
	// denominator (32 = 32nd note, 0.5 = breve). Zero means default.
	MaxTremolo float64 `yaml:"max_tremolo"`

	Jobs []JobSpec `yaml:"jobs"`
}

// JobSpec schedules a reveal subdivision for a measure selection.
type JobSpec struct {
	// Measures selects 1-based measures: a single "3", a range "2-5",
	// an open range "6-", or "all".
	Measures string `yaml:"measures"`

	// Subdivision is the reveal step as a duration denominator
	// (16 = one frame per 16th note).
	Subdivision float64 `yaml:"subdivision"`
}

// LoadError reports a problem with the project file, pointing at the
// offending field where one is known.
type LoadError struct {
	Code    string
	Field   string
	Message string
}

func (e *LoadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadProject reads and validates a project file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("project file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading project file: %v", err)}
	}

	var p Project
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Project) validate() error {
	if p.Score == "" {
		return &LoadError{Code: ErrCodeInvalid, Field: "score", Message: "required"}
	}
	if p.Width <= 0 {
		return &LoadError{Code: ErrCodeInvalid, Field: "width", Message: "must be a positive pixel width"}
	}
	if p.Workers < 0 {
		return &LoadError{Code: ErrCodeInvalid, Field: "workers", Message: "must not be negative"}
	}
	if p.Frame0 < 0 {
		return &LoadError{Code: ErrCodeInvalid, Field: "frame0", Message: "must not be negative"}
	}
	if p.MaxTremolo < 0 {
		return &LoadError{Code: ErrCodeInvalid, Field: "max_tremolo", Message: "must not be negative"}
	}

	for i, job := range p.Jobs {
		field := fmt.Sprintf("jobs[%d]", i)
		if job.Subdivision <= 0 {
			return &LoadError{Code: ErrCodeInvalid, Field: field + ".subdivision", Message: "must be a positive duration denominator"}
		}
		if _, err := parseMeasureSpec(job.Measures); err != nil {
			return &LoadError{Code: ErrCodeInvalid, Field: field + ".measures", Message: err.Error()}
		}
	}
	return nil
}

// measureSpec is a parsed measure selection.
type measureSpec struct {
	All  bool
	Open bool // From through the last measure
	From int
	To   int
}

// parseMeasureSpec parses a measure selection: "3", "2-5", "6-", "all".
func parseMeasureSpec(s string) (measureSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return measureSpec{}, fmt.Errorf("empty measure selection")
	}
	if strings.EqualFold(s, "all") {
		return measureSpec{All: true}, nil
	}

	if from, to, ok := strings.Cut(s, "-"); ok {
		first, err := parseMeasureNumber(from)
		if err != nil {
			return measureSpec{}, err
		}
		if strings.TrimSpace(to) == "" {
			return measureSpec{Open: true, From: first}, nil
		}
		last, err := parseMeasureNumber(to)
		if err != nil {
			return measureSpec{}, err
		}
		if last < first {
			return measureSpec{}, fmt.Errorf("range %q ends before it starts", s)
		}
		return measureSpec{From: first, To: last}, nil
	}

	n, err := parseMeasureNumber(s)
	if err != nil {
		return measureSpec{}, err
	}
	return measureSpec{From: n, To: n}, nil
}

func parseMeasureNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("measure number %q is not an integer", strings.TrimSpace(s))
	}
	if n < 1 {
		return 0, fmt.Errorf("measure numbers are 1-based, got %d", n)
	}
	return n, nil
}
