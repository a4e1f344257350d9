// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typedef

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/bureau-foundation/wirecodec/lib/serde"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// Record is the value of a composite type declared in a definition
// file. Keys are field names. A field whose constructor parameter had
// no on-wire source is absent; a field decoded as null is present with
// a nil value.
type Record map[string]any

// Constant is the value of an enum type declared in a definition file.
type Constant struct {
	Name    string
	Ordinal int
}

// MarshalJSON encodes the constant as its name.
func (c Constant) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Name)
}

func (c Constant) String() string {
	return c.Name
}

// Register declares every definition of file as a live type in types.
func (f *File) Register(types *serde.Types) error {
	live, err := f.LiveTypes()
	if err != nil {
		return err
	}
	return types.Register(live...)
}

// LiveTypes converts the definitions into unregistered live types.
func (f *File) LiveTypes() ([]serde.LiveType, error) {
	live := make([]serde.LiveType, 0, len(f.Types))
	for _, definition := range f.Types {
		switch definition.Kind {
		case KindComposite:
			live = append(live, compositeType(definition))
		case KindEnum:
			live = append(live, enumType(definition))
		default:
			return nil, fmt.Errorf("type %q: unknown kind %q", definition.Name, definition.Kind)
		}
	}
	return live, nil
}

func compositeType(definition Definition) *serde.CompositeType {
	fields := make([]serde.Param, len(definition.Fields))
	byName := make(map[string]serde.Param, len(definition.Fields))
	for i, field := range definition.Fields {
		fields[i] = serde.Param{Name: field.Name, Type: field.Type, Optional: field.Optional}
		byName[field.Name] = fields[i]
	}

	constructors := []serde.Constructor{recordConstructor(0, fields)}
	for _, constructor := range definition.Constructors {
		params := make([]serde.Param, len(constructor.Params))
		for i, name := range constructor.Params {
			params[i] = byName[name]
		}
		constructors = append(constructors, recordConstructor(constructor.Version, params))
	}

	return &serde.CompositeType{
		Name:         definition.Name,
		Fields:       fields,
		Constructors: constructors,
		Get: func(instance any, field string) (any, error) {
			var record map[string]any
			switch typed := instance.(type) {
			case Record:
				record = typed
			case map[string]any:
				record = typed
			default:
				return nil, fmt.Errorf("%w: %s value must be an object, got %T", serde.ErrInvalidValue, definition.Name, instance)
			}
			return normalize(byName[field].Type, record[field])
		},
	}
}

// recordConstructor builds a Record holding every populated slot.
func recordConstructor(version int, params []serde.Param) serde.Constructor {
	return serde.Constructor{
		Version: version,
		Params:  params,
		New: func(args serde.Args) (any, error) {
			record := make(Record, len(params))
			for i, param := range params {
				if value, ok := args[i].Get(); ok {
					record[param.Name] = value
				}
			}
			return record, nil
		},
	}
}

// normalize converts JSON-shaped input to the Go shapes the encoder
// accepts: bytes arrive base64-encoded, including inside lists.
func normalize(ref wireschema.TypeRef, value any) (any, error) {
	if element, ok := ref.Elem(); ok {
		list, ok := value.([]any)
		if !ok {
			return value, nil
		}
		normalized := make([]any, len(list))
		for i, item := range list {
			converted, err := normalize(element, item)
			if err != nil {
				return nil, err
			}
			normalized[i] = converted
		}
		return normalized, nil
	}
	text, ok := value.(string)
	if !ok || ref != wireschema.Bytes {
		return value, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: bytes field is not base64: %v", serde.ErrInvalidValue, err)
	}
	return decoded, nil
}

func enumType(definition Definition) *serde.EnumType {
	constants := slices.Clone(definition.Constants)
	return &serde.EnumType{
		Name:           definition.Name,
		Representation: "string",
		Constants:      constants,
		Renames:        definition.Renames,
		Value: func(ordinal int) any {
			return Constant{Name: constants[ordinal], Ordinal: ordinal}
		},
		Ordinal: func(value any) (int, bool) {
			var name string
			switch typed := value.(type) {
			case Constant:
				name = typed.Name
			case string:
				name = typed
			default:
				return 0, false
			}
			ordinal := slices.Index(constants, name)
			return ordinal, ordinal >= 0
		},
	}
}
