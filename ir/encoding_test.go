package ir

import (
	"reflect"
	"testing"
)

func TestModuleEncodeDecodeRoundTrip(t *testing.T) {
	m := &Module{
		Path:    MustParsePath("demo"),
		Version: "1.2.3",
		Types: map[Symbol]TypeDefinition{
			"Point": ProductDef(nil, []Field{
				{Name: "x", Type: Int(32, true)},
				{Name: "y", Type: Int(32, true)},
			}),
			"Shape": SumDef(nil, []Variant{
				{Name: "Dot", Def: NewTypeDef(Unit())},
				{Name: "Box", Def: ProductDef(nil, []Field{{Name: "side", Type: Int(64, false)}})},
			}),
		},
		Interfaces: map[Symbol]Interface{
			"Show": {
				Name: "Show",
				Functions: map[Symbol]FunctionSignature{
					"show": {Return: Int(32, true)},
				},
			},
		},
		Functions: map[Symbol]FunctionEntry{
			"start": {
				Signature: FunctionSignature{Return: Int(32, true)},
				Body: FnBody{
					MaxRegisters: 2,
					Blocks: []BasicBlock{
						{
							Instrs: []Instruction{
								{Kind: ILoadImm, Dest: 0, Imm: IntVal(32, true, 7)},
								{Kind: IReturn, HasRetVal: true, RetVal: RegVal(0)},
							},
						},
					},
				},
			},
		},
		Implementations: []Implementation{
			{
				Key: ImplKey{
					Type:          User(MustParsePath("demo::Point"), nil),
					InterfacePath: MustParsePath("demo::Show"),
				},
				Methods: map[Symbol]Symbol{"show": "pointShow"},
			},
		},
		Imports: []Import{
			{Path: MustParsePath("std"), VersionReq: "^1.0.0"},
		},
	}

	got, err := RoundTrip(m)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round-tripped module differs:\ngot  %+v\nwant %+v", got, m)
	}
}
