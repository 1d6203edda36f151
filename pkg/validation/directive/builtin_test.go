package directive

import (
	"testing"

	"katydid-common-validation/pkg/validation/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeField 最小字段实现，直接测试验证函数
type fakeField struct {
	name   string
	errors []string
}

func (f *fakeField) Name() string                            { return f.name }
func (f *fakeField) Label() string                           { return f.name }
func (f *fakeField) Directive(string) (core.Value, bool)     { return core.None(), false }
func (f *fakeField) Errors() []string                        { return f.errors }
func (f *fakeField) AddError(msg string) bool {
	f.errors = append(f.errors, msg)
	return true
}

// fakeScope 最小上下文实现
type fakeScope struct {
	params map[string]core.Value
}

func (s *fakeScope) Param(name string) (core.Value, bool) {
	v, ok := s.params[name]
	return v, ok
}
func (s *fakeScope) FieldByName(string) (core.Field, bool) { return nil, false }
func (s *fakeScope) Stash(string) any                      { return nil }
func (s *fakeScope) ReportError(string) bool               { return true }

func runDirective(t *testing.T, name string, dv any, param string) []string {
	t.Helper()
	r := New()
	d, ok := r.Get(name)
	require.True(t, ok, "directive %s must be built in", name)
	require.NotNil(t, d.Validator)

	value, err := core.FromAny(dv)
	require.NoError(t, err)

	f := &fakeField{name: name}
	d.Validator(value, core.Scalar(param), f, &fakeScope{params: map[string]core.Value{}})
	return f.errors
}

func TestBuiltin_Lengths(t *testing.T) {
	assert.Empty(t, runDirective(t, "min_length", 3, "abcd"))
	assert.NotEmpty(t, runDirective(t, "min_length", 5, "abcd"))
	assert.Empty(t, runDirective(t, "max_length", 4, "abcd"))
	assert.NotEmpty(t, runDirective(t, "max_length", 3, "abcd"))
	assert.Empty(t, runDirective(t, "length", 4, "abcd"))
	assert.NotEmpty(t, runDirective(t, "length", 2, "abcd"))
}

func TestBuiltin_Between(t *testing.T) {
	assert.Empty(t, runDirective(t, "between", "2-5", "3"))
	assert.NotEmpty(t, runDirective(t, "between", "2-5", "9"))
	assert.Empty(t, runDirective(t, "between", []string{"2", "5"}, "5"))
	assert.NotEmpty(t, runDirective(t, "between", "2-5", "abc"))
	assert.NotEmpty(t, runDirective(t, "between", "malformed", "3"))
}

func TestBuiltin_Options(t *testing.T) {
	assert.Empty(t, runDirective(t, "options", []string{"red", "blue"}, "red"))
	errs := runDirective(t, "options", []string{"red", "blue"}, "green")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "red, blue")
}

func TestBuiltin_Pattern(t *testing.T) {
	// 命名格式委托给底层验证器
	assert.Empty(t, runDirective(t, "pattern", "email", "kat@example.com"))
	assert.NotEmpty(t, runDirective(t, "pattern", "email", "not-an-email"))

	// 掩码模板：# 数字，X 字母
	assert.Empty(t, runDirective(t, "pattern", "###-XX", "123-ab"))
	assert.NotEmpty(t, runDirective(t, "pattern", "###-XX", "12x-ab"))

	// 正则
	assert.Empty(t, runDirective(t, "pattern", "^[a-z]+$", "abc"))
	assert.NotEmpty(t, runDirective(t, "pattern", "^[a-z]+$", "ABC"))
}

func TestBuiltin_Counts(t *testing.T) {
	assert.Empty(t, runDirective(t, "min_digits", 2, "a1b2"))
	assert.NotEmpty(t, runDirective(t, "min_digits", 3, "a1b2"))
	assert.NotEmpty(t, runDirective(t, "max_digits", 1, "a1b2"))
	assert.Empty(t, runDirective(t, "min_symbols", 1, "p@ss"))
	assert.NotEmpty(t, runDirective(t, "min_symbols", 1, "pass"))
	assert.NotEmpty(t, runDirective(t, "max_symbols", 0, "p@ss"))
	assert.Empty(t, runDirective(t, "min_alpha", 2, "ab1"))
	assert.NotEmpty(t, runDirective(t, "max_alpha", 1, "ab1"))
}

func TestBuiltin_Sums(t *testing.T) {
	assert.Empty(t, runDirective(t, "min_sum", 10, "15"))
	assert.NotEmpty(t, runDirective(t, "min_sum", 10, "5"))
	assert.Empty(t, runDirective(t, "max_sum", 10, "10"))
	assert.NotEmpty(t, runDirective(t, "max_sum", 10, "11"))
}

func TestBuiltin_Matches(t *testing.T) {
	r := New()
	d, _ := r.Get("matches")

	scope := &fakeScope{params: map[string]core.Value{
		"password": core.Scalar("secret"),
	}}

	f := &fakeField{name: "password_confirm"}
	d.Validator(core.Scalar("password"), core.Scalar("secret"), f, scope)
	assert.Empty(t, f.errors)

	f = &fakeField{name: "password_confirm"}
	d.Validator(core.Scalar("password"), core.Scalar("other"), f, scope)
	assert.Len(t, f.errors, 1)
}

func TestBuiltin_DependsOn(t *testing.T) {
	r := New()
	d, _ := r.Get("depends_on")

	scope := &fakeScope{params: map[string]core.Value{
		"card_number": core.Scalar("4111"),
	}}

	// 依赖满足
	f := &fakeField{name: "card_exp"}
	d.Validator(core.List("card_number"), core.Scalar("12/30"), f, scope)
	assert.Empty(t, f.errors)

	// 依赖缺失
	f = &fakeField{name: "card_exp"}
	d.Validator(core.List("card_cvc"), core.Scalar("12/30"), f, scope)
	assert.Len(t, f.errors, 1)

	// 本字段无值时不检查依赖
	f = &fakeField{name: "card_exp"}
	d.Validator(core.List("card_cvc"), core.None(), f, scope)
	assert.Empty(t, f.errors)
}

func TestBuiltin_Multiples(t *testing.T) {
	r := New()
	d, _ := r.Get("multiples")

	f := &fakeField{name: "color"}
	d.Validator(core.Scalar("0"), core.List("red", "blue"), f, &fakeScope{})
	assert.Len(t, f.errors, 1)

	f = &fakeField{name: "color"}
	d.Validator(core.Scalar("1"), core.List("red", "blue"), f, &fakeScope{})
	assert.Empty(t, f.errors)
}
