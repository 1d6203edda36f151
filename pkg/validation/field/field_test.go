package field

import (
	"testing"

	"katydid-common-validation/pkg/validation/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("login"))
	assert.True(t, ValidName("user.name"))
	assert.True(t, ValidName("_private"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("9lives"))
	assert.False(t, ValidName("phone:0"))
	assert.False(t, ValidName("bad name"))
}

func TestCloneName(t *testing.T) {
	base, idx, ok := CloneName("phone:3")
	require.True(t, ok)
	assert.Equal(t, "phone", base)
	assert.Equal(t, 3, idx)

	_, _, ok = CloneName("phone")
	assert.False(t, ok)
	_, _, ok = CloneName("phone:x")
	assert.False(t, ok)
}

func TestNew_RejectsBadName(t *testing.T) {
	_, err := New("phone:0", nil)
	assert.ErrorIs(t, err, core.ErrMalformedFieldName)
}

// name指令在创建时自动盖章
func TestNew_StampsName(t *testing.T) {
	f, err := New("login", nil)
	require.NoError(t, err)
	v, ok := f.Directive("name")
	require.True(t, ok)
	assert.Equal(t, "login", v.Scalar())
}

func TestField_Label(t *testing.T) {
	bag := NewBag()
	bag.Set("label", core.Scalar("Login Name"))
	f, _ := New("login", bag)
	assert.Equal(t, "Login Name", f.Label())

	f, _ = New("card_exp.month", nil)
	assert.Equal(t, "Card exp month", f.Label())
}

func TestField_RequiredToggle(t *testing.T) {
	bag := NewBag()
	bag.Set("required", core.Scalar("1"))
	f, _ := New("login", bag)
	assert.True(t, f.Required())

	// 一次性覆盖优先于声明值
	f.SetToggle(false)
	assert.False(t, f.Required())

	f.ResetRuntime()
	assert.True(t, f.Required())
}

func TestField_Clone(t *testing.T) {
	bag := NewBag()
	bag.Set("required", core.Scalar("1"))
	bag.Set("alias", core.List("cell"))
	f, _ := New("phone", bag)

	c := f.Clone(1)
	assert.Equal(t, "phone:1", c.Name())
	assert.Equal(t, "Phone #2", c.Label())
	assert.True(t, c.IsClone())
	assert.Equal(t, "phone", c.Origin())
	assert.True(t, c.Required())

	// alias不随克隆传播
	_, ok := c.Directive("alias")
	assert.False(t, ok)

	// 克隆指令袋独立于模板
	c.Directives().Set("required", core.Scalar("0"))
	assert.True(t, f.Required())
}

func TestField_Snapshot(t *testing.T) {
	f, _ := New("login", nil)
	f.AddError("boom")
	f.SetValue(core.Scalar("x"))

	s := f.Snapshot()
	assert.Equal(t, "login", s.Name())
	assert.Empty(t, s.Errors())
	assert.True(t, s.Value().IsZero())
}

func TestErrorList_DedupeAndOrder(t *testing.T) {
	e := NewErrorList()
	assert.True(t, e.Add("first"))
	assert.True(t, e.Add("second"))
	assert.False(t, e.Add("first"))

	assert.Equal(t, []string{"first", "second"}, e.All())
	assert.Equal(t, 2, e.Count())
	assert.Equal(t, "first; second", e.Join("; "))

	e.Clear()
	assert.True(t, e.Empty())
	assert.True(t, e.Add("first"))
}

func TestBag_SetUnionCopy(t *testing.T) {
	b := NewBag()
	b.Set("min_length", core.Scalar("2"))
	b.Set("filters", core.List("trim"))
	b.Union("filters", core.List("strip", "trim"))

	v, _ := b.Get("filters")
	assert.Equal(t, []string{"trim", "strip"}, v.List())
	assert.Equal(t, []string{"min_length", "filters"}, b.Names())

	assert.False(t, b.SetIfAbsent("min_length", core.Scalar("9")))
	v, _ = b.Get("min_length")
	assert.Equal(t, "2", v.Scalar())

	cp := b.Copy()
	cp.Del("filters")
	assert.True(t, b.Has("filters"))
	assert.False(t, cp.Has("filters"))
}

func TestBagFrom_Deterministic(t *testing.T) {
	b, err := BagFrom(map[string]any{
		"required":   1,
		"max_length": 12,
		"filters":    []string{"trim"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"filters", "max_length", "required"}, b.Names())

	_, err = BagFrom(map[string]any{"bad": map[string]any{"no": "maps"}})
	assert.ErrorIs(t, err, core.ErrMalformedValue)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Card exp", Humanize("card_exp"))
	assert.Equal(t, "User name", Humanize("user.name"))
	assert.Equal(t, "", Humanize(""))
}
