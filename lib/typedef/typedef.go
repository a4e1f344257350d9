// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package typedef declares live types from definition files rather
// than Go code, so tools can decode and encode envelopes for types
// they were not compiled with.
//
// Definition files are YAML or JSONC (JSON extended with comments and
// trailing commas), chosen by file extension:
//
//	types:
//	  - name: Person
//	    kind: composite
//	    fields:
//	      - {name: name, type: string}
//	      - {name: nickname, type: string, optional: true}
//	    constructors:
//	      - {version: 2, params: [name, nickname]}
//	  - name: Colour
//	    kind: enum
//	    constants: [RED, GREEN, BLUE]
//	    renames: {CRIMSON: RED}
//
// Composite values are [Record] maps keyed by field name; enum values
// are [Constant]s. The primary constructor of a composite takes every
// field; listed constructors take a subset of fields and carry a
// version.
//
// The typical flow:
//
//  1. Load or Parse: YAML/JSONC bytes → File
//  2. Validate: structural checks (names, kinds, constructor params)
//  3. Register: File → serde live types in a serde.Types table
package typedef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// Kind values of a [Definition].
const (
	KindComposite = "composite"
	KindEnum      = "enum"
)

// File is the content of one or more definition files.
type File struct {
	Types []Definition `json:"types" yaml:"types"`
}

// Definition declares one live type.
type Definition struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`

	// Composite types.
	Fields       []FieldDefinition       `json:"fields,omitempty" yaml:"fields,omitempty"`
	Constructors []ConstructorDefinition `json:"constructors,omitempty" yaml:"constructors,omitempty"`

	// Enum types.
	Constants []string          `json:"constants,omitempty" yaml:"constants,omitempty"`
	Renames   map[string]string `json:"renames,omitempty" yaml:"renames,omitempty"`
}

// FieldDefinition declares one field of a composite type.
type FieldDefinition struct {
	Name     string             `json:"name" yaml:"name"`
	Type     wireschema.TypeRef `json:"type" yaml:"type"`
	Optional bool               `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// ConstructorDefinition declares an additional constructor taking the
// named fields, in order.
type ConstructorDefinition struct {
	Version int      `json:"version,omitempty" yaml:"version,omitempty"`
	Params  []string `json:"params" yaml:"params"`
}

// Format selects the syntax of definition data.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSONC Format = "jsonc"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSONC, nil
	default:
		return "", fmt.Errorf("%s: unknown definition file extension (want .yaml, .yml, .json, or .jsonc)", path)
	}
}

// Parse decodes definition data. Unknown keys are rejected so typos
// in hand-written files surface immediately.
func Parse(data []byte, format Format) (*File, error) {
	var file File
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("parsing type definitions: %w", err)
		}
	case FormatJSONC:
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("parsing type definitions: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown definition format %q", format)
	}
	return &file, nil
}

// ReadFile reads and parses one definition file.
func ReadFile(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	file, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Load reads every path and concatenates their definitions, then
// validates the result. Definitions may reference types declared in
// other files.
func Load(paths ...string) (*File, error) {
	merged := &File{}
	for _, path := range paths {
		file, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		merged.Types = append(merged.Types, file.Types...)
	}
	if issues := Validate(merged); len(issues) > 0 {
		return nil, fmt.Errorf("invalid type definitions:\n  %s", strings.Join(issues, "\n  "))
	}
	return merged, nil
}

// Validate checks a File for structural issues. Returns a list of
// human-readable issue descriptions; an empty list means the file can
// be registered. Field type references to undeclared types are not
// checked here: they fail when a serializer needing them is built.
func Validate(file *File) []string {
	var issues []string
	names := make(map[string]int, len(file.Types))
	for index, definition := range file.Types {
		prefix := fmt.Sprintf("types[%d] %q", index, definition.Name)
		if err := wireschema.ValidateName(definition.Name); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
		}
		if first, exists := names[definition.Name]; exists {
			issues = append(issues, fmt.Sprintf("%s: duplicate type name (first declared at types[%d])", prefix, first))
		} else {
			names[definition.Name] = index
		}

		switch definition.Kind {
		case KindComposite:
			issues = append(issues, validateComposite(definition, prefix)...)
		case KindEnum:
			if len(definition.Fields) > 0 || len(definition.Constructors) > 0 {
				issues = append(issues, prefix+": enum types cannot declare fields or constructors")
			}
			if len(definition.Constants) == 0 {
				issues = append(issues, prefix+": enum has no constants")
			}
		default:
			issues = append(issues, fmt.Sprintf("%s: kind must be %q or %q, got %q", prefix, KindComposite, KindEnum, definition.Kind))
		}
	}
	return issues
}

func validateComposite(definition Definition, prefix string) []string {
	var issues []string
	if len(definition.Constants) > 0 || len(definition.Renames) > 0 {
		issues = append(issues, prefix+": composite types cannot declare constants or renames")
	}
	fields := make(map[string]bool, len(definition.Fields))
	for _, field := range definition.Fields {
		if err := field.Type.Validate(); err != nil {
			issues = append(issues, fmt.Sprintf("%s field %q: %v", prefix, field.Name, err))
		}
		fields[field.Name] = true
	}
	for index, constructor := range definition.Constructors {
		if constructor.Version < 0 {
			issues = append(issues, fmt.Sprintf("%s constructors[%d]: negative version %d", prefix, index, constructor.Version))
		}
		for _, param := range constructor.Params {
			if !fields[param] {
				issues = append(issues, fmt.Sprintf("%s constructors[%d]: parameter %q is not a field", prefix, index, param))
			}
		}
	}
	return issues
}
