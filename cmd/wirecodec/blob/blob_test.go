// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/config"
	"github.com/bureau-foundation/wirecodec/lib/serde"
)

const peopleV1 = `
types:
  - name: Person
    kind: composite
    fields:
      - {name: name, type: string}
      - {name: age, type: int64}
      - {name: tags, type: "list<string>"}
      - {name: colour, type: Colour}
  - name: Colour
    kind: enum
    constants: [RED, GREEN, BLUE]
`

const peopleV2 = `
types:
  - name: Person
    kind: composite
    fields:
      - {name: name, type: string}
      - {name: tags, type: "list<string>"}
      - {name: colour, type: Colour}
      - {name: email, type: string, optional: true}
  - name: Colour
    kind: enum
    constants: [BLUE, GREEN, RED]
`

const aliceJSON = `{"name": "alice", "age": 41, "tags": ["admin"], "colour": "GREEN"}`

var discard = slog.New(slog.DiscardHandler)

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// openSession loads definitions with the default configuration.
func openSession(t *testing.T, definitions string, noEvolution bool) *session {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	params := typesParams{
		Types:       []string{writeFile(t, t.TempDir(), "types.yaml", definitions)},
		NoEvolution: noEvolution,
	}
	session, err := params.open(discard)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return session
}

func encodeAlice(t *testing.T) []byte {
	t.Helper()
	var envelope bytes.Buffer
	if err := encodeJSON(openSession(t, peopleV1, false).context, "Person", []byte(aliceJSON), &envelope, false); err != nil {
		t.Fatalf("encodeJSON: %v", err)
	}
	return envelope.Bytes()
}

func requireCategory(t *testing.T, err error, want cli.ErrorCategory) {
	t.Helper()
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v (%T), want *cli.ToolError", err, err)
	}
	if toolErr.Category != want {
		t.Fatalf("category = %q, want %q (error: %v)", toolErr.Category, want, err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	session := openSession(t, peopleV1, false)

	var output bytes.Buffer
	if err := decodeEnvelope(session.context, encodeAlice(t), &output, cli.JSONOptions{Compact: true}); err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	want := `{"age":41,"colour":"GREEN","name":"alice","tags":["admin"]}` + "\n"
	if output.String() != want {
		t.Errorf("output = %s, want %s", output.String(), want)
	}
}

func TestDecodeEvolvesToLiveDefinitions(t *testing.T) {
	data := encodeAlice(t)
	session := openSession(t, peopleV2, false)

	var output bytes.Buffer
	if err := decodeEnvelope(session.context, data, &output, cli.JSONOptions{Compact: true}); err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	// age is dropped, email is absent, and GREEN resolves by name
	// against the reordered Colour.
	want := `{"colour":"GREEN","name":"alice","tags":["admin"]}` + "\n"
	if output.String() != want {
		t.Errorf("output = %s, want %s", output.String(), want)
	}
}

func TestDecodeWithEvolutionDisabled(t *testing.T) {
	data := encodeAlice(t)
	session := openSession(t, peopleV2, true)

	err := decodeEnvelope(session.context, data, &bytes.Buffer{}, cli.JSONOptions{})
	if !errors.Is(err, serde.ErrEvolutionDisabled) {
		t.Fatalf("error = %v, want ErrEvolutionDisabled", err)
	}
	requireCategory(t, err, cli.CategoryInternal)
}

func TestDecodeMissingType(t *testing.T) {
	data := encodeAlice(t)
	session := openSession(t, "types:\n  - {name: Address, kind: composite, fields: [{name: city, type: string}]}\n", false)

	err := decodeEnvelope(session.context, data, &bytes.Buffer{}, cli.JSONOptions{})
	if !errors.Is(err, serde.ErrTypeNotFound) {
		t.Fatalf("error = %v, want ErrTypeNotFound", err)
	}
	requireCategory(t, err, cli.CategoryNotFound)
}

func TestDecodeIncompatibleDefinitionsHint(t *testing.T) {
	tests := []struct {
		name        string
		definitions string
		sentinel    error
		hintParts   []string
	}{
		{
			name:        "new mandatory field",
			definitions: strings.Replace(peopleV2, "type: string, optional: true", "type: string", 1),
			sentinel:    serde.ErrMandatoryParameter,
			hintParts:   []string{"Stored Person [", "parameter email", "optional"},
		},
		{
			name:        "removed enum constant",
			definitions: strings.Replace(peopleV2, "[BLUE, GREEN, RED]", "[BLUE, RED]", 1),
			sentinel:    serde.ErrUnknownEnumConstant,
			hintParts:   []string{"Stored Colour [", "constant GREEN", "renames"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data := encodeAlice(t)
			session := openSession(t, test.definitions, false)

			err := decodeEnvelope(session.context, data, &bytes.Buffer{}, cli.JSONOptions{})
			if !errors.Is(err, test.sentinel) {
				t.Fatalf("error = %v, want %v", err, test.sentinel)
			}
			requireCategory(t, err, cli.CategoryInternal)
			var toolErr *cli.ToolError
			errors.As(err, &toolErr)
			for _, part := range test.hintParts {
				if !strings.Contains(toolErr.Hint, part) {
					t.Errorf("hint %q does not mention %q", toolErr.Hint, part)
				}
			}
		})
	}
}

func TestEncodeHexOutput(t *testing.T) {
	session := openSession(t, peopleV1, false)

	var output bytes.Buffer
	if err := encodeJSON(session.context, "Person", []byte(aliceJSON), &output, true); err != nil {
		t.Fatalf("encodeJSON: %v", err)
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(output.String()))
	if err != nil {
		t.Fatalf("output is not hex: %v", err)
	}
	if !bytes.Equal(decoded, encodeAlice(t)) {
		t.Error("hex output differs from binary output")
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	session := openSession(t, peopleV1, false)

	tests := []struct {
		name     string
		typeName string
		input    string
		category cli.ErrorCategory
	}{
		{"malformed JSON", "Person", `{"name":`, cli.CategoryValidation},
		{"trailing value", "Person", aliceJSON + ` {}`, cli.CategoryValidation},
		{"unknown type", "Robot", aliceJSON, cli.CategoryNotFound},
		{"missing mandatory field", "Person", `{"name": "alice"}`, cli.CategoryInternal},
		{"unknown constant", "Person", `{"name": "a", "age": 1, "tags": [], "colour": "PINK"}`, cli.CategoryInternal},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := encodeJSON(session.context, test.typeName, []byte(test.input), &bytes.Buffer{}, false)
			requireCategory(t, err, test.category)
		})
	}
}

func TestPrintSchema(t *testing.T) {
	data := encodeAlice(t)

	t.Run("text", func(t *testing.T) {
		var output bytes.Buffer
		if err := printSchema(data, &output, formatText, false, false); err != nil {
			t.Fatalf("printSchema: %v", err)
		}
		text := output.String()
		for _, want := range []string{"Person (root)", "composite", "name", "list<string>", "Colour", "restricted(string)", "GREEN"} {
			if !strings.Contains(text, want) {
				t.Errorf("text output missing %q:\n%s", want, text)
			}
		}
		if !strings.HasPrefix(text, "Person (root)") {
			t.Errorf("root type is not listed first:\n%s", text)
		}
	})

	t.Run("json", func(t *testing.T) {
		var output bytes.Buffer
		if err := printSchema(data, &output, formatJSON, false, false); err != nil {
			t.Fatalf("printSchema: %v", err)
		}
		var entries []descriptorInfo
		if err := json.Unmarshal(output.Bytes(), &entries); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, output.String())
		}
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[0].Name != "Person" || !entries[0].Root || len(entries[0].Fields) != 4 {
			t.Errorf("entries[0] = %+v", entries[0])
		}
		if entries[1].Kind != "restricted" || entries[1].Root || len(entries[1].Choices) != 3 {
			t.Errorf("entries[1] = %+v", entries[1])
		}
		if len(entries[0].Descriptor) != 64 {
			t.Errorf("descriptor %q is not a full fingerprint", entries[0].Descriptor)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var output bytes.Buffer
		if err := printSchema(data, &output, formatYAML, false, false); err != nil {
			t.Fatalf("printSchema: %v", err)
		}
		for _, want := range []string{"- name: Person", "root: true", "kind: restricted"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("YAML output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("not an envelope", func(t *testing.T) {
		err := printSchema([]byte{0x01}, &bytes.Buffer{}, formatText, false, false)
		requireCategory(t, err, cli.CategoryInternal)
	})
}

func TestFormatFlagsExclusive(t *testing.T) {
	params := formatParams{OutputYAML: true}
	params.OutputJSON = true
	if _, err := params.format(); err == nil {
		t.Error("format() accepted both --json and --yaml")
	}
}

func TestDiagnose(t *testing.T) {
	data := encodeAlice(t)
	sequence := append(append([]byte(nil), data...), data...)

	var output bytes.Buffer
	if err := diagnose(sequence, &output, true); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (comment and notation per envelope):\n%s", len(lines), output.String())
	}
	if !strings.HasPrefix(lines[0], "# envelope: root Person; 2 types: Person=") {
		t.Errorf("comment = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "51000(") {
		t.Errorf("notation = %q, want envelope tag", lines[1])
	}
	if !strings.Contains(lines[1], "51010(") || !strings.Contains(lines[1], "51001(") {
		t.Errorf("notation lacks described or descriptor tags: %q", lines[1])
	}

	output.Reset()
	if err := diagnose([]byte{0x01}, &output, true); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if strings.TrimSpace(output.String()) != "1" {
		t.Errorf("plain item output = %q, want no comment", output.String())
	}

	err := diagnose([]byte{0x82, 0x01}, &bytes.Buffer{}, false)
	requireCategory(t, err, cli.CategoryInternal)
}

func TestPrintFingerprints(t *testing.T) {
	session := openSession(t, peopleV1, false)

	var output bytes.Buffer
	if err := printFingerprints(session.types, []string{"Colour"}, &output, formatText, false); err != nil {
		t.Fatalf("printFingerprints: %v", err)
	}
	live, _ := session.types.Lookup("Colour")
	if !strings.Contains(output.String(), live.WireSchema().Fingerprint().String()) {
		t.Errorf("output lacks the full Colour descriptor:\n%s", output.String())
	}
	if strings.Contains(output.String(), "Person") {
		t.Errorf("output lists a type that was not asked for:\n%s", output.String())
	}

	// The live descriptor of a type matches the one an envelope carries.
	entries, err := envelopeDescriptors(encodeAlice(t))
	if err != nil {
		t.Fatalf("envelopeDescriptors: %v", err)
	}
	all, err := liveDescriptors(session.types, nil)
	if err != nil {
		t.Fatalf("liveDescriptors: %v", err)
	}
	for _, stored := range entries {
		found := false
		for _, entry := range all {
			if entry.Name == stored.Name && entry.Descriptor == stored.Descriptor {
				found = true
			}
		}
		if !found {
			t.Errorf("stored descriptor of %s not among live descriptors", stored.Name)
		}
	}

	err = printFingerprints(session.types, []string{"Robot"}, &bytes.Buffer{}, formatText, false)
	requireCategory(t, err, cli.CategoryNotFound)
}

func TestOpenRequiresTypes(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	_, err := (&typesParams{}).open(discard)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestOpenUsesConfiguredFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "people.yaml"), []byte(peopleV1), 0o644); err != nil {
		t.Fatal(err)
	}
	configPath := writeFile(t, dir, "wirecodec.yaml",
		"types:\n  files: [people.yaml]\nevolution:\n  enabled: false\noutput:\n  color: never\n")

	params := typesParams{}
	params.Path = configPath
	session, err := params.open(discard)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := session.types.Lookup("Person"); !ok {
		t.Error("Person not loaded from types.files")
	}
	if session.color {
		t.Error("color enabled despite output.color: never")
	}

	// evolution.enabled: false reaches the context.
	var encoded bytes.Buffer
	v2 := openSession(t, peopleV2, false)
	if err := encodeJSON(v2.context, "Person", []byte(`{"name":"a","tags":[],"colour":"RED"}`), &encoded, false); err != nil {
		t.Fatalf("encodeJSON: %v", err)
	}
	err = decodeEnvelope(session.context, encoded.Bytes(), &bytes.Buffer{}, cli.JSONOptions{})
	if !errors.Is(err, serde.ErrEvolutionDisabled) {
		t.Errorf("error = %v, want ErrEvolutionDisabled", err)
	}
}

func TestOpenRejectsInvalidDefinitions(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	params := typesParams{Types: []string{
		writeFile(t, t.TempDir(), "types.yaml", "types:\n  - {name: Person, kind: composite}\n  - {name: Person, kind: enum, constants: [A]}\n"),
	}}
	_, err := params.open(discard)
	requireCategory(t, err, cli.CategoryValidation)
}
