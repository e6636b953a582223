package python

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/fbstubs/stub"
)

func TestGeneratorMetadata(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, "python", g.Language())
	assert.Equal(t, "pyi", g.FileExtension())

	var _ stub.Generator = g
}

func TestGenerateFunctionSingle(t *testing.T) {
	fn := &stub.Function{Name: "Add", Overloads: []stub.Overload{{
		Params: []stub.Parameter{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}},
		Return: "int",
	}}}

	got := GenerateFunction(fn, "")
	assert.Equal(t, "def Add(a: int, b: int) -> int:\n    ...\n", got)
	assert.NotContains(t, got, "@overload")
}

func TestGenerateFunctionOverloaded(t *testing.T) {
	fn := &stub.Function{Name: "Make", Overloads: []stub.Overload{
		{Params: []stub.Parameter{
			{Name: "name", Type: "str"},
			{Name: "count", Type: "int", HasDefault: true, Default: "None"},
		}, Return: "object"},
		{Params: []stub.Parameter{
			{Name: "name", Type: "str"},
			{Name: "weight", Type: "float"},
		}, Return: "object"},
	}}

	want := `@overload
def Make(name: str, count: int = None) -> object:
    ...

@overload
def Make(name: str, weight: float) -> object:
    ...
`
	assert.Equal(t, want, GenerateFunction(fn, ""))
}

func TestGenerateFunctionDocstring(t *testing.T) {
	fn := &stub.Function{Name: "Add", Overloads: []stub.Overload{{
		Params: []stub.Parameter{{Name: "lhs", Type: "int"}, {Name: "rhs", Type: "int"}},
		Return: "int",
		Doc:    "Return the sum.",
	}}}

	assert.Equal(t, "def Add(lhs: int, rhs: int) -> int:\n    \"\"\"Return the sum.\"\"\"\n", GenerateFunction(fn, ""))
}

func TestGenerateStaticOverloadedMethod(t *testing.T) {
	fn := &stub.Function{Name: "Find", IsMethod: true, IsStatic: true, Overloads: []stub.Overload{
		{Params: []stub.Parameter{{Name: "pName", Type: "str"}}, Return: "FBModel"},
		{Params: []stub.Parameter{}, Return: "list[FBModel]", Deprecated: true},
	}}

	want := `    @overload
    @staticmethod
    def Find(name: str) -> FBModel:
        ...

    @overload
    @staticmethod
    def Find() -> list[FBModel]:
        """[Deprecated]"""
`
	assert.Equal(t, want, GenerateFunction(fn, indent))
}

func TestGenerateClass(t *testing.T) {
	c := &stub.Class{
		Name:  "FBModel",
		Bases: []string{"FBBox"},
		Doc:   "Model class.",
		Properties: []*stub.Property{
			{Name: "Translation", Type: "FBPropertyAnimatableVector3d", Doc: "Lcl Translation."},
			{Name: "Visible", Type: "bool", Deprecated: true},
		},
		Methods: []*stub.Function{
			{Name: "__init__", IsMethod: true, Overloads: []stub.Overload{{
				Params: []stub.Parameter{{Name: "arg1", Type: "object"}, {Name: "pName", Type: "str"}},
				Return: "None",
			}}},
			{Name: "SetVector", IsMethod: true, Overloads: []stub.Overload{{
				Params: []stub.Parameter{
					{Name: "arg1", Type: "FBModel"},
					{Name: "pVector", Type: "FBVector3d"},
					{Name: "pGlobal", Type: "bool", HasDefault: true, Default: "True"},
				},
				Return: "None",
				Doc:    "Set a vector.\n\nApplies to translation.",
			}}},
		},
	}

	want := `class FBModel(FBBox):
    """Model class."""
    Translation: FBPropertyAnimatableVector3d
    """Lcl Translation."""
    Visible: bool
    """[Deprecated]"""

    def __init__(self, name: str) -> None:
        ...

    def SetVector(self, vector: FBVector3d, global_: bool = True) -> None:
        """Set a vector.

        Applies to translation.
        """
`
	assert.Equal(t, want, GenerateClass(c))
}

func TestGenerateEmptyClass(t *testing.T) {
	assert.Equal(t, "class FBPlug:\n    ...\n", GenerateClass(&stub.Class{Name: "FBPlug"}))
}

func TestGenerateEnum(t *testing.T) {
	c := &stub.Class{Name: "Color", Kind: stub.KindEnum, Bases: []string{stub.EnumBase}, Properties: []*stub.Property{
		{Name: "RED", Type: "Color"},
		{Name: "GREEN", Type: "Color"},
		{Name: "BLUE", Type: "Color"},
	}}

	assert.Equal(t, "class Color(_Enum):\n    RED: Color\n    GREEN: Color\n    BLUE: Color\n", GenerateClass(c))
}

func TestGenerateFallbackSignature(t *testing.T) {
	fn := &stub.Function{Name: "Run", IsMethod: true, Overloads: []stub.Overload{{
		Params: []stub.Parameter{{Name: "self"}, {Name: "args", Star: 1}, {Name: "kwargs", Star: 2}},
		Return: "object",
	}}}
	assert.Equal(t, "def Run(self, *args, **kwargs) -> object:\n    ...\n", GenerateFunction(fn, ""))
}

func TestGenerateFile(t *testing.T) {
	model := &stub.Model{
		Module: "pyfbsdk",
		Enums: []*stub.Class{{Name: "Color", Kind: stub.KindEnum, Bases: []string{stub.EnumBase}, Properties: []*stub.Property{
			{Name: "RED", Type: "Color"},
		}}},
		Classes: []*stub.Class{{Name: "FBA"}, {Name: "FBC", Bases: []string{"FBA"}}},
		Functions: []*stub.Function{{Name: "Add", Overloads: []stub.Overload{{
			Params: []stub.Parameter{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}},
			Return: "int",
		}}}},
	}

	want := `from typing import overload


class Color(_Enum):
    RED: Color


class FBA:
    ...


class FBC(FBA):
    ...


def Add(a: int, b: int) -> int:
    ...
`
	g := NewGenerator()
	got := g.GenerateFile(model, "from typing import overload")
	assert.Equal(t, want, got)
	assert.Equal(t, got, g.GenerateFile(model, "from typing import overload"))
	assert.Equal(t, 1, strings.Count(got, "def Add("))
}

func TestGenerateFileDefaultPrelude(t *testing.T) {
	got := NewGenerator().GenerateFile(&stub.Model{}, DefaultPrelude)
	assert.Equal(t, DefaultPrelude, got)
	assert.Contains(t, DefaultPrelude, "class _Enum(")
	assert.Contains(t, DefaultPrelude, "import overload")
}

// An overload marker appears exactly once per declaration of an overloaded
// function and never for a single-overload function.
func TestOverloadMarkers(t *testing.T) {
	for n := 1; n <= 4; n++ {
		fn := &stub.Function{Name: "F"}
		for i := 0; i < n; i++ {
			fn.Overloads = append(fn.Overloads, stub.Overload{Return: "None"})
		}
		out := GenerateFunction(fn, "")

		require.Equal(t, n, strings.Count(out, "def F("))
		if n == 1 {
			assert.Zero(t, strings.Count(out, "@overload"))
		} else {
			assert.Equal(t, n, strings.Count(out, "@overload"))
		}
	}
}

func TestParams(t *testing.T) {
	fn := &stub.Function{Name: "F"}
	ov := &stub.Overload{Params: []stub.Parameter{
		{Name: "pName", Type: "str"},
		{Name: "", Type: "int"},
		{Name: "name", Type: "str"},
		{Name: "pMode", HasDefault: true, Default: "0"},
	}}
	assert.Equal(t, "name: str, arg1: int, name2: str, mode=0", Params(fn, ov))
}

func TestParamName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pVector", "vector"},
		{"pGlobal", "global_"},
		{"bGlobal", "bGlobal"},
		{"Name", "name"},
		{"name", "name"},
		{"pURL", "URL"},
		{"p", "p"},
		{"parent", "parent"},
		{"class", "class_"},
		{"pType", "type_"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParamName(tt.in))
		})
	}
}

func TestEscapeDocstring(t *testing.T) {
	assert.Equal(t, `a \\ b`, EscapeDocstring(`a \ b`))
	assert.Equal(t, `say \"\"\"hi\"\"\"`, EscapeDocstring(`say """hi"""`))
	assert.Equal(t, `ends with \"`, EscapeDocstring(`ends with "`))
	assert.Equal(t, "plain", EscapeDocstring("plain"))
	assert.Equal(t, `Path ends with C:\\\"`, EscapeDocstring(`Path ends with C:\"`))
	assert.Equal(t, `quoted \"\"\"`, EscapeDocstring(`quoted """`))
}

func TestWriteDocstringEndingInEscapedQuote(t *testing.T) {
	var sb strings.Builder
	writeDocstring(&sb, "", `Path ends with C:\"`)
	assert.Equal(t, `"""Path ends with C:\\\""""`+"\n", sb.String())
}
