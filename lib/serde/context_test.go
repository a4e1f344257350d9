// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

type sample struct {
	Flag   bool
	Count  int64
	Size   uint64
	Ratio  float64
	Label  string
	Blob   []byte
	Tags   []string
	Scores []int64
	Stops  []address
	Home   address
	Colour colour
	Note   string
}

func sampleType() *CompositeType {
	fields := []Param{
		{Name: "flag", Type: wireschema.Bool},
		{Name: "count", Type: wireschema.Int64},
		{Name: "size", Type: wireschema.Uint64},
		{Name: "ratio", Type: wireschema.Float64},
		{Name: "label", Type: wireschema.String},
		{Name: "blob", Type: wireschema.Bytes},
		{Name: "tags", Type: wireschema.ListOf(wireschema.String)},
		{Name: "scores", Type: wireschema.ListOf(wireschema.Int64)},
		{Name: "stops", Type: wireschema.ListOf("Address")},
		{Name: "home", Type: "Address"},
		{Name: "colour", Type: "Colour"},
		{Name: "note", Type: wireschema.String, Optional: true},
	}
	return &CompositeType{
		Name:   "Sample",
		Fields: fields,
		Constructors: []Constructor{{
			Params: fields,
			New: func(args Args) (any, error) {
				return sample{
					Flag:   Arg[bool](args, 0),
					Count:  Arg[int64](args, 1),
					Size:   Arg[uint64](args, 2),
					Ratio:  Arg[float64](args, 3),
					Label:  Arg[string](args, 4),
					Blob:   Arg[[]byte](args, 5),
					Tags:   ArgList[string](args, 6),
					Scores: ArgList[int64](args, 7),
					Stops:  ArgList[address](args, 8),
					Home:   Arg[address](args, 9),
					Colour: Arg[colour](args, 10),
					Note:   Arg[string](args, 11),
				}, nil
			},
		}},
		Get: Getters(map[string]func(sample) any{
			"flag":   func(s sample) any { return s.Flag },
			"count":  func(s sample) any { return s.Count },
			"size":   func(s sample) any { return s.Size },
			"ratio":  func(s sample) any { return s.Ratio },
			"label":  func(s sample) any { return s.Label },
			"blob":   func(s sample) any { return s.Blob },
			"tags":   func(s sample) any { return s.Tags },
			"scores": func(s sample) any { return s.Scores },
			"stops":  func(s sample) any { return s.Stops },
			"home":   func(s sample) any { return s.Home },
			"colour": func(s sample) any { return s.Colour },
			"note": func(s sample) any {
				if s.Note == "" {
					return nil
				}
				return s.Note
			},
		}),
	}
}

func TestRoundTripUnchangedTypes(t *testing.T) {
	var builds atomic.Int64
	ctx := newContext(t, FactoryOptions{OnBuild: func(BuildEvent) { builds.Add(1) }},
		sampleType(), addressType(nil), colourType())

	values := []sample{
		{
			Flag:   true,
			Count:  -42,
			Size:   1 << 63,
			Ratio:  0.25,
			Label:  "mixed",
			Blob:   []byte{0x00, 0xff},
			Tags:   []string{"a", "b"},
			Scores: []int64{3, -1, 0},
			Stops:  []address{{Street: "A", City: "B"}, {Street: "C", City: "D"}},
			Home:   address{Street: "1 Main St", City: "Springfield"},
			Colour: colour(2),
			Note:   "present",
		},
		{
			Label: "zero values",
		},
	}
	for _, value := range values {
		t.Run(value.Label, func(t *testing.T) {
			decoded, err := ctx.Decode(encode(t, ctx, "Sample", value))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(decoded, value) {
				t.Errorf("round trip mismatch:\n got  %#v\n want %#v", decoded, value)
			}
		})
	}
	if builds.Load() != 0 || ctx.Factory().Len() != 0 {
		t.Errorf("unchanged types built %d evolution serializers", builds.Load())
	}
}

func TestEncodeSchemaListsRootFirst(t *testing.T) {
	ctx := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	envelope, err := ctx.EncodeEnvelope("Person", alice)
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	var names []string
	for _, typeSchema := range envelope.Schema.Types() {
		names = append(names, typeSchema.TypeName())
	}
	if !reflect.DeepEqual(names, []string{"Person", "Address"}) {
		t.Errorf("schema types = %v, want [Person Address]", names)
	}
}

func TestEncodeNilRoot(t *testing.T) {
	ctx := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	decoded, err := ctx.Decode(encode(t, ctx, "Person", nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != nil {
		t.Errorf("decoded = %#v, want nil", decoded)
	}
}

func TestStreamAlignment(t *testing.T) {
	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	var addresses atomic.Int64
	reader := newContext(t, FactoryOptions{}, personV2Type(), addressType(&addresses))
	decoded, err := reader.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := personV2{Name: alice.Name, Email: alice.Email}
	if decoded != want {
		t.Errorf("decoded = %#v, want %#v", decoded, want)
	}
	// The dropped home field is a described value: it is still decoded
	// before being discarded.
	if addresses.Load() != 1 {
		t.Errorf("Address constructed %d times, want 1", addresses.Load())
	}
}

func TestDroppedFieldTypeMustResolve(t *testing.T) {
	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	reader := newContext(t, FactoryOptions{}, personV2Type())
	_, err := reader.Decode(data)
	if !errors.Is(err, ErrTypeNotFound) {
		t.Fatalf("Decode error = %v, want ErrTypeNotFound", err)
	}
	var serdeErr *Error
	if !errors.As(err, &serdeErr) || serdeErr.Op != "build" || serdeErr.Member != "field home" {
		t.Errorf("error context = %+v, want build failure on field home", serdeErr)
	}
}

func TestConstructorSelectionThroughDecode(t *testing.T) {
	viaVersion := func(version int) Constructor {
		params := []Param{{Name: "name", Type: wireschema.String}}
		if version >= 2 {
			params = append(params, Param{Name: "email", Type: wireschema.String})
		}
		if version == 3 {
			params = append(params, Param{Name: "phone", Type: wireschema.String})
		}
		return Constructor{
			Version: version,
			Params:  params,
			New: func(args Args) (any, error) {
				return personV2{Name: Arg[string](args, 0), Email: Arg[string](args, 1), Via: version}, nil
			},
		}
	}

	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	reader := newContext(t, FactoryOptions{},
		personV2Type(viaVersion(1), viaVersion(3), viaVersion(2)), addressType(nil))
	decoded, err := reader.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	person := decoded.(personV2)
	if person.Via != 2 {
		t.Errorf("constructor version = %d, want 2", person.Via)
	}
	if person.Name != alice.Name || person.Email != alice.Email {
		t.Errorf("decoded = %#v", person)
	}
}

func TestMandatoryNewParameter(t *testing.T) {
	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	live := personV2Type()
	live.Fields = append(live.Fields, Param{Name: "phone", Type: wireschema.String})
	live.Constructors[0].Params = append(personV2Params(), Param{Name: "phone", Type: wireschema.String})

	var events []BuildEvent
	reader := newContext(t, FactoryOptions{OnBuild: func(event BuildEvent) { events = append(events, event) }},
		live, addressType(nil))
	_, err := reader.Decode(data)
	if !errors.Is(err, ErrMandatoryParameter) {
		t.Fatalf("Decode error = %v, want ErrMandatoryParameter", err)
	}
	var serdeErr *Error
	if !errors.As(err, &serdeErr) || serdeErr.Op != "build" || serdeErr.Member != "parameter phone" {
		t.Errorf("error context = %+v, want build failure on parameter phone", serdeErr)
	}
	if len(events) != 1 || !errors.Is(events[0].Err, ErrMandatoryParameter) {
		t.Errorf("build events = %+v, want one failed build", events)
	}
}

func TestChangedFieldTypeIsTreatedAsAbsent(t *testing.T) {
	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	type agedPerson struct {
		Name   string
		Age    string
		AgeSet bool
	}
	params := []Param{
		{Name: "name", Type: wireschema.String},
		{Name: "age", Type: wireschema.String, Optional: true},
	}
	live := &CompositeType{
		Name:   "Person",
		Fields: params,
		Constructors: []Constructor{{
			Params: params,
			New: func(args Args) (any, error) {
				return agedPerson{Name: Arg[string](args, 0), Age: Arg[string](args, 1), AgeSet: args.Has(1)}, nil
			},
		}},
		Get: Getters(map[string]func(agedPerson) any{
			"name": func(p agedPerson) any { return p.Name },
			"age":  func(p agedPerson) any { return p.Age },
		}),
	}
	reader := newContext(t, FactoryOptions{}, live, addressType(nil))
	decoded, err := reader.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := (agedPerson{Name: alice.Name}); decoded != want {
		t.Errorf("decoded = %#v, want %#v", decoded, want)
	}

	// The same change on a mandatory parameter fails the build.
	params[1].Optional = false
	live.Fields[1].Optional = false
	strict := newContext(t, FactoryOptions{}, live, addressType(nil))
	if _, err := strict.Decode(data); !errors.Is(err, ErrMandatoryParameter) {
		t.Errorf("Decode error = %v, want ErrMandatoryParameter", err)
	}
}

func TestNoUsableConstructor(t *testing.T) {
	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	abstract := personV2Type()
	abstract.Constructors = nil
	reader := newContext(t, FactoryOptions{}, abstract, addressType(nil))
	if _, err := reader.Decode(data); !errors.Is(err, ErrNoUsableConstructor) {
		t.Errorf("Decode error = %v, want ErrNoUsableConstructor", err)
	}
}

func TestEvolutionDisabled(t *testing.T) {
	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	table := NewTypes()
	table.MustRegister(personV2Type(), addressType(nil))
	reader := NewContext(NewFactory(table, FactoryOptions{}), ContextOptions{DisableEvolution: true})
	if _, err := reader.Decode(data); !errors.Is(err, ErrEvolutionDisabled) {
		t.Errorf("Decode error = %v, want ErrEvolutionDisabled", err)
	}
	if reader.Factory().Len() != 0 {
		t.Errorf("factory has %d entries, want 0", reader.Factory().Len())
	}
}

func TestDecodeErrors(t *testing.T) {
	writer := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
	data := encode(t, writer, "Person", alice)

	t.Run("root type unknown", func(t *testing.T) {
		reader := newContext(t, FactoryOptions{}, addressType(nil))
		if _, err := reader.Decode(data); !errors.Is(err, ErrTypeNotFound) {
			t.Errorf("Decode error = %v, want ErrTypeNotFound", err)
		}
	})

	t.Run("kind mismatch", func(t *testing.T) {
		reader := newContext(t, FactoryOptions{}, NewEnum[colour]("Person", "A"), addressType(nil))
		if _, err := reader.Decode(data); !errors.Is(err, ErrKindMismatch) {
			t.Errorf("Decode error = %v, want ErrKindMismatch", err)
		}
	})

	t.Run("body not a sequence", func(t *testing.T) {
		live := personV1Type()
		reader := newContext(t, FactoryOptions{}, live, addressType(nil))
		body, err := codec.Marshal(int64(7))
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		schema := wireschema.NewSchema(live.Schema())
		_, err = reader.DecodeObject(live.Schema().Fingerprint(), schema, body)
		if !errors.Is(err, ErrUnexpectedBody) {
			t.Errorf("DecodeObject error = %v, want ErrUnexpectedBody", err)
		}
	})

	t.Run("body too short", func(t *testing.T) {
		live := personV1Type()
		reader := newContext(t, FactoryOptions{}, live, addressType(nil))
		body, err := codec.Marshal([]any{"alice"})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		schema := wireschema.NewSchema(live.Schema())
		_, err = reader.DecodeObject(live.Schema().Fingerprint(), schema, body)
		if !errors.Is(err, ErrUnexpectedBody) {
			t.Errorf("DecodeObject error = %v, want ErrUnexpectedBody", err)
		}
	})

	t.Run("descriptor not in schema", func(t *testing.T) {
		reader := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil))
		_, err := reader.DecodeObject(wireschema.Fingerprint{1}, wireschema.NewSchema(), codec.Null())
		if !errors.Is(err, ErrUnknownDescriptor) {
			t.Errorf("DecodeObject error = %v, want ErrUnknownDescriptor", err)
		}
	})
}

func TestEncodeErrors(t *testing.T) {
	ctx := newContext(t, FactoryOptions{}, personV1Type(), addressType(nil), sampleType(), colourType())

	t.Run("unknown type", func(t *testing.T) {
		if _, err := ctx.Encode("Missing", alice); !errors.Is(err, ErrTypeNotFound) {
			t.Errorf("Encode error = %v, want ErrTypeNotFound", err)
		}
	})

	t.Run("wrong Go type", func(t *testing.T) {
		if _, err := ctx.Encode("Person", "alice"); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Encode error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("enum value out of range", func(t *testing.T) {
		if _, err := ctx.Encode("Colour", colour(9)); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Encode error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("mandatory field nil", func(t *testing.T) {
		live := personV1Type()
		live.Get = func(any, string) (any, error) { return nil, nil }
		nilCtx := newContext(t, FactoryOptions{}, live, addressType(nil))
		_, err := nilCtx.Encode("Person", alice)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Encode error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestConvertPrimitive(t *testing.T) {
	type celsius float32
	type label string

	tests := []struct {
		ref   wireschema.TypeRef
		value any
		want  any
		ok    bool
	}{
		{wireschema.Int64, int32(-3), int64(-3), true},
		{wireschema.Int64, uint8(200), int64(200), true},
		{wireschema.Int64, float64(12), int64(12), true},
		{wireschema.Int64, float64(1.5), nil, false},
		{wireschema.Int64, uint64(1 << 63), nil, false},
		{wireschema.Uint64, int(-1), nil, false},
		{wireschema.Uint64, int(7), uint64(7), true},
		{wireschema.Float64, celsius(1.5), float64(1.5), true},
		{wireschema.Float64, int64(2), float64(2), true},
		{wireschema.String, label("x"), "x", true},
		{wireschema.String, 5, nil, false},
		{wireschema.Bytes, []byte("ab"), []byte("ab"), true},
		{wireschema.Bool, "true", nil, false},
	}
	for _, test := range tests {
		got, ok := convertPrimitive(test.ref, test.value)
		if ok != test.ok {
			t.Errorf("convertPrimitive(%s, %#v) ok = %v, want %v", test.ref, test.value, ok, test.ok)
			continue
		}
		if ok && !reflect.DeepEqual(got, test.want) {
			t.Errorf("convertPrimitive(%s, %#v) = %#v, want %#v", test.ref, test.value, got, test.want)
		}
	}
}
