// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// Fixture types. Each constructor function returns a fresh definition
// because registration binds a definition to its table.

type address struct {
	Street string
	City   string
}

func addressType(constructed *atomic.Int64) *CompositeType {
	return &CompositeType{
		Name: "Address",
		Fields: []Param{
			{Name: "street", Type: wireschema.String},
			{Name: "city", Type: wireschema.String},
		},
		Constructors: []Constructor{{
			Params: []Param{
				{Name: "street", Type: wireschema.String},
				{Name: "city", Type: wireschema.String},
			},
			New: func(args Args) (any, error) {
				if constructed != nil {
					constructed.Add(1)
				}
				return address{Street: Arg[string](args, 0), City: Arg[string](args, 1)}, nil
			},
		}},
		Get: Getters(map[string]func(address) any{
			"street": func(a address) any { return a.Street },
			"city":   func(a address) any { return a.City },
		}),
	}
}

// personV1 is the shape written by older programs.
type personV1 struct {
	Name  string
	Age   int64
	Email string
	Home  address
}

func personV1Type() *CompositeType {
	params := []Param{
		{Name: "name", Type: wireschema.String},
		{Name: "age", Type: wireschema.Int64},
		{Name: "email", Type: wireschema.String},
		{Name: "home", Type: "Address"},
	}
	return &CompositeType{
		Name:   "Person",
		Fields: params,
		Constructors: []Constructor{{
			Params: params,
			New: func(args Args) (any, error) {
				home, _ := args.Value(3).(address)
				return personV1{
					Name:  Arg[string](args, 0),
					Age:   Arg[int64](args, 1),
					Email: Arg[string](args, 2),
					Home:  home,
				}, nil
			},
		}},
		Get: Getters(map[string]func(personV1) any{
			"name":  func(p personV1) any { return p.Name },
			"age":   func(p personV1) any { return p.Age },
			"email": func(p personV1) any { return p.Email },
			"home":  func(p personV1) any { return p.Home },
		}),
	}
}

// personV2 dropped age and home and added an optional nickname.
type personV2 struct {
	Name        string
	Email       string
	Nickname    string
	NicknameSet bool
	// Via records the version of the constructor that built the value.
	Via int
}

func personV2Params() []Param {
	return []Param{
		{Name: "name", Type: wireschema.String},
		{Name: "email", Type: wireschema.String},
		{Name: "nickname", Type: wireschema.String, Optional: true},
	}
}

func personV2Type(extra ...Constructor) *CompositeType {
	params := personV2Params()
	return &CompositeType{
		Name:   "Person",
		Fields: params,
		Constructors: append([]Constructor{{
			Params: params,
			New: func(args Args) (any, error) {
				return personV2{
					Name:        Arg[string](args, 0),
					Email:       Arg[string](args, 1),
					Nickname:    Arg[string](args, 2),
					NicknameSet: args.Has(2),
				}, nil
			},
		}}, extra...),
		Get: Getters(map[string]func(personV2) any{
			"name":  func(p personV2) any { return p.Name },
			"email": func(p personV2) any { return p.Email },
			"nickname": func(p personV2) any {
				if !p.NicknameSet {
					return nil
				}
				return p.Nickname
			},
		}),
	}
}

type colour int

func colourType(constants ...string) *EnumType {
	if len(constants) == 0 {
		constants = []string{"RED", "GREEN", "BLUE"}
	}
	return NewEnum[colour]("Colour", constants...)
}

// newContext registers types in a fresh table and returns a context
// with a fresh factory over it.
func newContext(t *testing.T, options FactoryOptions, types ...LiveType) *Context {
	t.Helper()
	table := NewTypes()
	if err := table.Register(types...); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return NewContext(NewFactory(table, options), ContextOptions{})
}

func encode(t *testing.T, ctx *Context, typeName string, value any) []byte {
	t.Helper()
	data, err := ctx.Encode(typeName, value)
	if err != nil {
		t.Fatalf("Encode(%s): %v", typeName, err)
	}
	return data
}

var alice = personV1{
	Name:  "alice",
	Age:   41,
	Email: "alice@example.org",
	Home:  address{Street: "1 Main St", City: "Springfield"},
}
