package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	v, err := FromAny("hello")
	require.NoError(t, err)
	assert.Equal(t, KindScalar, v.Kind())

	v, err = FromAny(5)
	require.NoError(t, err)
	assert.Equal(t, "5", v.Scalar())

	v, err = FromAny(true)
	require.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = FromAny([]any{"a", 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "1"}, v.List())

	v, err = FromAny(func() string { return "lazy" })
	require.NoError(t, err)
	assert.Equal(t, KindCallback, v.Kind())
	assert.Equal(t, "lazy", v.Scalar())

	_, err = FromAny(map[string]any{"no": "maps"})
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestValue_IsZero(t *testing.T) {
	assert.True(t, None().IsZero())
	assert.True(t, Scalar("").IsZero())
	assert.True(t, List().IsZero())
	assert.False(t, Scalar("x").IsZero())
	assert.False(t, Callback(func() string { return "" }).IsZero())
}

// multi指令合并语义：去重并集，保持相对顺序
func TestValue_Union(t *testing.T) {
	merged := List("strip").Union(List("trim", "strip"))
	assert.Equal(t, []string{"strip", "trim"}, merged.List())

	merged = Scalar("a").Union(Scalar("b"))
	assert.Equal(t, []string{"a", "b"}, merged.List())

	// 幂等：再次并入同样的值不产生重复
	again := merged.Union(List("a", "b"))
	assert.Equal(t, []string{"a", "b"}, again.List())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Scalar("x").Equal(Scalar("x")))
	assert.False(t, Scalar("x").Equal(Scalar("y")))
	assert.True(t, List("a", "b").Equal(List("a", "b")))
	assert.False(t, List("a").Equal(Scalar("a")))
	assert.True(t, None().Equal(None()))
}

func TestFlattenMessage(t *testing.T) {
	assert.Equal(t, "a b c", FlattenMessage("a\n  b\t\tc"))
}
