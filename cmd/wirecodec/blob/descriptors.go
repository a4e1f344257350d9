// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
	"gopkg.in/yaml.v3"
)

// descriptorInfo is the printable form of one type schema.
type descriptorInfo struct {
	Name           string              `json:"name"                     yaml:"name"`
	Kind           string              `json:"kind"                     yaml:"kind"`
	Descriptor     string              `json:"descriptor"               yaml:"descriptor"`
	Root           bool                `json:"root,omitempty"           yaml:"root,omitempty"`
	Representation string              `json:"representation,omitempty" yaml:"representation,omitempty"`
	Fields         []wireschema.Field  `json:"fields,omitempty"         yaml:"fields,omitempty"`
	Choices        []wireschema.Choice `json:"choices,omitempty"        yaml:"choices,omitempty"`
}

func describe(typeSchema wireschema.TypeSchema) descriptorInfo {
	info := descriptorInfo{
		Name:       typeSchema.TypeName(),
		Descriptor: typeSchema.Fingerprint().String(),
	}
	switch schema := typeSchema.(type) {
	case *wireschema.Composite:
		info.Kind = "composite"
		info.Fields = schema.Fields
	case *wireschema.Restricted:
		info.Kind = "restricted"
		info.Representation = schema.Representation
		info.Choices = schema.Choices
	}
	return info
}

// outputFormat selects how descriptors are printed.
type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
	formatYAML
)

// formatParams adds --json and --yaml.
type formatParams struct {
	cli.JSONOutput
	OutputYAML bool `json:"-" flag:"yaml" desc:"output as YAML"`
}

func (p *formatParams) format() (outputFormat, error) {
	switch {
	case p.OutputJSON && p.OutputYAML:
		return formatText, cli.Validation("--json and --yaml are mutually exclusive")
	case p.OutputJSON:
		return formatJSON, nil
	case p.OutputYAML:
		return formatYAML, nil
	default:
		return formatText, nil
	}
}

// writeDescriptors prints entries in the requested format. Text output
// lists each type on a header line followed by its members; full
// descriptors are shortened unless fullDescriptors is set.
func writeDescriptors(w io.Writer, entries []descriptorInfo, format outputFormat, color, fullDescriptors bool) error {
	if entries == nil {
		entries = []descriptorInfo{}
	}
	switch format {
	case formatJSON:
		return cli.WriteJSONTo(w, entries, cli.JSONOptions{Color: color})
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(entries); err != nil {
			return cli.Internal("encode YAML: %w", err)
		}
		return encoder.Close()
	}

	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	for _, entry := range entries {
		descriptor := entry.Descriptor
		if !fullDescriptors && len(descriptor) > 12 {
			descriptor = descriptor[:12]
		}
		name := entry.Name
		if entry.Root {
			name += " (root)"
		}
		kind := entry.Kind
		if entry.Representation != "" {
			kind += "(" + entry.Representation + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, kind, descriptor)
		for _, field := range entry.Fields {
			fmt.Fprintf(tw, "  %s\t%s\t\n", field.Name, field.Type)
		}
		for _, choice := range entry.Choices {
			fmt.Fprintf(tw, "  %d\t%s\t\n", choice.Ordinal, choice.Name)
		}
	}
	return tw.Flush()
}
