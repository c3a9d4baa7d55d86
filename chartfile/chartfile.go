// Package chartfile loads chart documents written in YAML or CUE.
//
// A document is a nested state mapping:
//
//	id: door
//	export: [open, close]
//	states:
//	  - id: closed
//	    transitions:
//	      - event: open
//	        condition: data == 1234
//	        target: opened
//	  - id: opened
//	    entry: log door opened
//	    transitions:
//	      - {event: close, target: closed}
//
// State keys are id, kind, initial, deep, entry, exit, export, states,
// transitions and subcharts. Transition keys are event, condition, target,
// targets and action. Any other key is carried as an unknown attribute and
// rejected by statechart.New. Actions and conditions are names resolved
// through a Registry. State ids, targets, events and exported names are
// NFC-normalised.
package chartfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/comalice/statechart/internal/primitives"
)

// Format is a chart document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

var (
	ErrUnknownFormat = errors.New("unknown chart format")
	ErrSyntax        = errors.New("chart syntax error")
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownGuard  = errors.New("unknown condition")
)

// Error locates a problem inside a chart document.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadFile reads and converts the chart document at path. A nil registry
// resolves only the built-in actions and conditions.
func LoadFile(path string, reg *Registry) (*primitives.StateConfig, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart: %w", err)
	}
	doc, err := decode(data, format, path)
	if err != nil {
		return nil, err
	}
	return convert(doc, reg)
}

// Load converts a chart document held in memory.
func Load(data []byte, format Format, reg *Registry) (*primitives.StateConfig, error) {
	doc, err := decode(data, format, "")
	if err != nil {
		return nil, err
	}
	return convert(doc, reg)
}

func decode(data []byte, format Format, filename string) (any, error) {
	switch format {
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %w", ErrSyntax, err)
		}
		return doc, nil
	case FormatCUE:
		var opts []cue.BuildOption
		if filename != "" {
			opts = append(opts, cue.Filename(filename))
		}
		v := cuecontext.New().CompileBytes(data, opts...)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("%w: compile cue: %w", ErrSyntax, err)
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, fmt.Errorf("%w: validate cue: %w", ErrSyntax, err)
		}
		var doc any
		if err := v.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode cue: %w", ErrSyntax, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

func convert(doc any, reg *Registry) (*primitives.StateConfig, error) {
	if doc == nil {
		return nil, &Error{Err: errors.New("empty document")}
	}
	if reg == nil {
		reg = NewRegistry(nil)
	}
	c := &converter{reg: reg}
	return c.state("", doc)
}
