package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/stub"
)

func class(name string, bases ...string) *stub.Class {
	return &stub.Class{Name: name, Bases: bases}
}

func names(classes []*stub.Class) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Name
	}
	return out
}

// assertDependencySafe fails the test unless every in-list dependency precedes its dependent.
func assertDependencySafe(t *testing.T, sorted []*stub.Class) {
	t.Helper()
	pos := make(map[string]int)
	for i, c := range sorted {
		pos[c.Name] = i
	}
	for i, c := range sorted {
		for _, b := range c.Bases {
			if j, ok := pos[b]; ok {
				assert.Less(t, j, i, "%s must precede %s", b, c.Name)
			}
		}
	}
}

func TestSortBaseFirst(t *testing.T) {
	sorted, err := Sort([]*stub.Class{
		class("FBCamera", "FBModel"),
		class("FBModel", "FBBox"),
		class("FBBox", "FBComponent"),
		class("FBComponent"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBComponent", "FBBox", "FBModel", "FBCamera"}, names(sorted))
}

func TestSortKeepsSourceOrder(t *testing.T) {
	sorted, err := Sort([]*stub.Class{
		class("FBTime"),
		class("FBColor"),
		class("FBVector3d"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBTime", "FBColor", "FBVector3d"}, names(sorted))
}

func TestSortIgnoresExternalBases(t *testing.T) {
	sorted, err := Sort([]*stub.Class{
		class("FBColor", stub.EnumBase),
		class("FBModel", "object", "FBColor"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBColor", "FBModel"}, names(sorted))
}

func TestSortDefaultValueDependency(t *testing.T) {
	model := class("FBModel")
	model.Methods = []*stub.Function{{Name: "SetVector", IsMethod: true, Overloads: []stub.Overload{{
		Params: []stub.Parameter{
			{Name: "self"},
			{Name: "vector", Type: "FBVector3d", HasDefault: true, Default: "FBVector3d(0, 0, 0)"},
		},
	}}}}

	sorted, err := Sort([]*stub.Class{model, class("FBVector3d")})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBVector3d", "FBModel"}, names(sorted))
}

func TestSortSelfReference(t *testing.T) {
	v := class("FBVector3d")
	v.Properties = []*stub.Property{{Name: "Zero", Type: "FBVector3d"}}
	v.Methods = []*stub.Function{{Name: "Scale", IsMethod: true, Overloads: []stub.Overload{{
		Params: []stub.Parameter{{Name: "self"}, {Name: "by", HasDefault: true, Default: "FBVector3d(1, 1, 1)"}},
	}}}}

	sorted, err := Sort([]*stub.Class{v})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBVector3d"}, names(sorted))
}

func TestSortHardCycle(t *testing.T) {
	_, err := Sort([]*stub.Class{
		class("FBA", "FBB"),
		class("FBB", "FBA"),
		class("FBC"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDependencyCycle))
	assert.Contains(t, err.Error(), "FBA -> FBB -> FBA")
}

func TestSortBreaksSoftCycle(t *testing.T) {
	// FBScene annotates FBModel properties while FBModel derives from FBScene.
	scene := class("FBScene")
	scene.Properties = []*stub.Property{{Name: "RootModel", Type: "FBModel"}, {Name: "Models", Type: "list[FBModel]"}}
	model := class("FBModel", "FBScene")

	sorted, err := Sort([]*stub.Class{scene, model})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBScene", "FBModel"}, names(sorted))
	assertDependencySafe(t, sorted)
}

func TestSortSoftEdgeOrdersWhenAcyclic(t *testing.T) {
	holder := class("FBHolder")
	holder.Properties = []*stub.Property{{Name: "Item", Type: "FBItem"}}

	sorted, err := Sort([]*stub.Class{holder, class("FBItem")})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBItem", "FBHolder"}, names(sorted))
}

func TestSortDependencySafety(t *testing.T) {
	classes := []*stub.Class{
		class("FBK", "FBJ"),
		class("FBJ", "FBI"),
		class("FBI"),
		class("FBH", "FBK", "FBI"),
		class("FBG", "FBH"),
		class("FBF"),
		class("FBE", "FBF", "FBG"),
	}
	sorted, err := Sort(classes)
	require.NoError(t, err)
	require.Len(t, sorted, len(classes))
	assertDependencySafe(t, sorted)
}

func TestSortEmpty(t *testing.T) {
	sorted, err := Sort(nil)
	require.NoError(t, err)
	assert.Empty(t, sorted)
}

func TestDefaultClass(t *testing.T) {
	assert.Equal(t, "FBVector3d", defaultClass("FBVector3d(0, 0, 0)"))
	assert.Equal(t, "FBAttachType", defaultClass("FBAttachType.kFBAttachNone"))
	assert.Equal(t, "", defaultClass("None"))
	assert.Equal(t, "", defaultClass("0.5"))
}
