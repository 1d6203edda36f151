package params

import (
	"testing"

	"katydid-common-validation/pkg/validation/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_AddScalarAndList(t *testing.T) {
	p := New()
	require.NoError(t, p.Add("login", "admin"))
	require.NoError(t, p.Add("age", 42))
	require.NoError(t, p.Add("phones", []string{"111", "222"}))

	v, ok := p.Get("login")
	require.True(t, ok)
	assert.Equal(t, "admin", v.Scalar())

	v, _ = p.Get("age")
	assert.Equal(t, 42, v.Int())

	v, _ = p.Get("phones")
	assert.Equal(t, []string{"111", "222"}, v.List())
}

// 一层键路径展开合法，更深的嵌套map被拒绝
func TestParams_AddOneLevelMap(t *testing.T) {
	p := New()
	require.NoError(t, p.Add("user", map[string]any{"name": "kat", "city": "sh"}))

	v, ok := p.Get("user.name")
	require.True(t, ok)
	assert.Equal(t, "kat", v.Scalar())

	err := p.Add("bad", map[string]any{
		"nested": map[string]any{"too": "deep"},
	})
	assert.ErrorIs(t, err, core.ErrMalformedParameter)
}

func TestParams_AddEmptyKey(t *testing.T) {
	err := New().Add("", "x")
	assert.ErrorIs(t, err, core.ErrMalformedParameter)
}

// 列表参数在扁平视图中拆为带下标的键
func TestParams_FlattenView(t *testing.T) {
	p := New()
	require.NoError(t, p.Add("phone", []string{"111", "222"}))
	require.NoError(t, p.Add("login", "admin"))

	flat := p.Flatten()
	assert.Equal(t, "111", flat["phone:0"])
	assert.Equal(t, "222", flat["phone:1"])
	assert.Equal(t, "admin", flat["login"])
	assert.NotContains(t, flat, "phone")
}

func TestParams_KeysSortedAndCopy(t *testing.T) {
	p := New()
	_ = p.Add("b", "2")
	_ = p.Add("a", "1")
	assert.Equal(t, []string{"a", "b"}, p.Keys())

	cp := p.Copy()
	cp.Del("a")
	assert.True(t, p.Has("a"))
	assert.False(t, cp.Has("a"))

	p.Clear()
	assert.Equal(t, 0, p.Len())
}
