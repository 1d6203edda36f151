package directive

import (
	"testing"

	"katydid-common-validation/pkg/validation/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(_, _ core.Value, _ core.Field, _ core.Scope) bool { return true }

func descriptor(name string, deps ...string) *core.Descriptor {
	d := &core.Descriptor{Name: name, Field: true, Validator: noop}
	if len(deps) > 0 {
		d.Dependencies = map[core.Event][]string{core.EventValidate: deps}
	}
	return d
}

func TestRegistry_FirstRegistrationWins(t *testing.T) {
	r := NewEmpty()
	first := descriptor("dup")
	second := &core.Descriptor{Name: "dup", Field: true, Message: "other"}

	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	got, ok := r.Get("dup")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RejectsBadDescriptor(t *testing.T) {
	r := NewEmpty()
	assert.ErrorIs(t, r.Register(nil), core.ErrBadDescriptor)
	assert.ErrorIs(t, r.Register(&core.Descriptor{}), core.ErrBadDescriptor)
	assert.ErrorIs(t, r.Register(&core.Descriptor{Name: "x"}), core.ErrBadDescriptor)
}

// 对每条边 a depends_on b，结果中 b 必须先于 a
func TestResolve_Ordering(t *testing.T) {
	r := NewEmpty()
	require.NoError(t, r.Register(descriptor("c", "b")))
	require.NoError(t, r.Register(descriptor("b", "a")))
	require.NoError(t, r.Register(descriptor("a")))
	require.NoError(t, r.Register(descriptor("z")))

	ordered, err := r.Resolve(core.EventValidate, []string{"c", "z", "b", "a"})
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, name := range ordered {
		pos[name] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["b"], pos["c"])
	assert.Len(t, ordered, 4)
}

// 同层节点按字典序输出，结果确定
func TestResolve_Deterministic(t *testing.T) {
	r := NewEmpty()
	require.NoError(t, r.Register(descriptor("m")))
	require.NoError(t, r.Register(descriptor("k")))
	require.NoError(t, r.Register(descriptor("z")))

	ordered, err := r.Resolve(core.EventValidate, []string{"z", "m", "k"})
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "m", "z"}, ordered)
}

func TestResolve_DirectCircular(t *testing.T) {
	r := NewEmpty()
	require.NoError(t, r.Register(descriptor("c", "c")))

	_, err := r.Resolve(core.EventValidate, []string{"c"})
	assert.ErrorIs(t, err, core.ErrDirectCircularDependency)
}

func TestResolve_IndirectCircular(t *testing.T) {
	r := NewEmpty()
	require.NoError(t, r.Register(descriptor("d", "e")))
	require.NoError(t, r.Register(descriptor("e", "d")))

	_, err := r.Resolve(core.EventValidate, []string{"d", "e"})
	assert.ErrorIs(t, err, core.ErrIndirectCircularDependency)
}

func TestResolve_InvalidDependency(t *testing.T) {
	r := NewEmpty()
	require.NoError(t, r.Register(descriptor("b", "a")))
	require.NoError(t, r.Register(descriptor("a")))

	// a已注册但不在活跃集内
	_, err := r.Resolve(core.EventValidate, []string{"b"})
	assert.ErrorIs(t, err, core.ErrInvalidDependency)
}

// 未订阅validate事件的纯元数据指令不进入排序
func TestResolve_SkipsMetaDirectives(t *testing.T) {
	r := NewEmpty()
	require.NoError(t, r.Register(descriptor("a")))
	require.NoError(t, r.Register(&core.Descriptor{Name: "label", Field: true}))

	ordered, err := r.Resolve(core.EventValidate, []string{"a", "label"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ordered)
}
