package directive

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"katydid-common-validation/pkg/validation/core"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// 内置指令目录
// 元数据指令（alias、mixin、label等）没有验证函数，只驱动normalize阶段的合并逻辑；
// 验证类指令通过追加错误表达失败，布尔返回值仅作参考

var (
	// vten 底层格式验证器，named pattern 委托给它而不重造格式库
	vten     *validator.Validate
	vtenOnce sync.Once
)

func underlying() *validator.Validate {
	vtenOnce.Do(func() {
		vten = validator.New()
	})
	return vten
}

// namedPatterns pattern指令的命名格式 -> go-playground/validator 标签
var namedPatterns = map[string]string{
	"email":        "email",
	"url":          "url",
	"uuid":         "uuid",
	"hostname":     "hostname",
	"ipv4":         "ipv4",
	"ipv6":         "ipv6",
	"alpha":        "alpha",
	"alphanumeric": "alphanum",
	"numeric":      "numeric",
	"lowercase":    "lowercase",
	"uppercase":    "uppercase",
}

// fail 追加一条压平后的错误消息
func fail(f core.Field, format string, args ...any) bool {
	f.AddError(core.FlattenMessage(fmt.Sprintf(format, args...)))
	return false
}

func registerBuiltins(r *Registry) {
	all := []*core.Descriptor{
		// ========== 元数据指令 ==========
		{Name: "alias", Field: true, Multi: true},
		{Name: "default", Mixin: true, Field: true},
		{Name: "error", Mixin: true, Field: true},
		{Name: "filtering", Mixin: true, Field: true},
		{Name: "filters", Mixin: true, Field: true, Multi: true},
		{Name: "label", Field: true},
		{Name: "mixin", Field: true, Multi: true},
		{Name: "mixin_field", Field: true},
		{Name: "name", Field: true},
		{Name: "readonly", Mixin: true, Field: true},
		{Name: "toggle", Field: true},
		{Name: "validation", Mixin: true, Field: true},
		{Name: "value", Mixin: true, Field: true},

		// ========== 验证指令 ==========
		{
			Name: "required", Mixin: true, Field: true,
			Message:   "%s is required",
			Validator: validateRequired,
		},
		{
			Name: "min_length", Mixin: true, Field: true,
			Message:   "%s is too short",
			Validator: validateMinLength,
		},
		{
			Name: "max_length", Mixin: true, Field: true,
			Message:   "%s is too long",
			Validator: validateMaxLength,
		},
		{
			Name: "length", Mixin: true, Field: true,
			Message:   "%s has the wrong length",
			Validator: validateLength,
		},
		{
			Name: "between", Mixin: true, Field: true,
			Message:   "%s is out of range",
			Validator: validateBetween,
		},
		{
			Name: "options", Mixin: true, Field: true, Multi: true,
			Message:   "%s is not a valid option",
			Validator: validateOptions,
		},
		{
			Name: "pattern", Mixin: true, Field: true,
			Message:   "%s does not match the expected format",
			Validator: validatePattern,
		},
		{
			Name: "matches", Mixin: true, Field: true, Multi: true,
			Message:   "%s does not match",
			Validator: validateMatches,
		},
		{
			Name: "depends_on", Mixin: true, Field: true, Multi: true,
			Message:   "%s is missing a dependent value",
			Validator: validateDependsOn,
		},
		{
			Name: "min_digits", Mixin: true, Field: true,
			Message:   "%s has too few digits",
			Validator: countValidator(isDigit, true, "%s must contain at least %d digits"),
		},
		{
			Name: "max_digits", Mixin: true, Field: true,
			Message:   "%s has too many digits",
			Validator: countValidator(isDigit, false, "%s must contain at most %d digits"),
		},
		{
			Name: "min_symbols", Mixin: true, Field: true,
			Message:   "%s has too few symbols",
			Validator: countValidator(isSymbol, true, "%s must contain at least %d symbols"),
		},
		{
			Name: "max_symbols", Mixin: true, Field: true,
			Message:   "%s has too many symbols",
			Validator: countValidator(isSymbol, false, "%s must contain at most %d symbols"),
		},
		{
			Name: "min_alpha", Mixin: true, Field: true,
			Message:   "%s has too few letters",
			Validator: countValidator(unicode.IsLetter, true, "%s must contain at least %d letters"),
		},
		{
			Name: "max_alpha", Mixin: true, Field: true,
			Message:   "%s has too many letters",
			Validator: countValidator(unicode.IsLetter, false, "%s must contain at most %d letters"),
		},
		{
			Name: "min_sum", Mixin: true, Field: true,
			Message:   "%s is too small",
			Validator: validateMinSum,
		},
		{
			Name: "max_sum", Mixin: true, Field: true,
			Message:   "%s is too large",
			Validator: validateMaxSum,
		},
		{
			Name: "multiples", Mixin: true, Field: true,
			Message:   "%s does not support multiple values",
			Validator: validateMultiples,
		},
	}

	for _, d := range all {
		// 内置目录自身永远合法，注册错误只可能来自重复（无操作）
		_ = r.Register(d)
	}
}

func validateRequired(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	if dv.Bool() && pv.IsZero() {
		return fail(f, "%s is required", f.Label())
	}
	return true
}

func validateMinLength(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	min := dv.Int()
	if len([]rune(pv.Scalar())) < min {
		return fail(f, "%s must contain at least %d characters", f.Label(), min)
	}
	return true
}

func validateMaxLength(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	max := dv.Int()
	if len([]rune(pv.Scalar())) > max {
		return fail(f, "%s must contain at most %d characters", f.Label(), max)
	}
	return true
}

func validateLength(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	want := dv.Int()
	if len([]rune(pv.Scalar())) != want {
		return fail(f, "%s must contain exactly %d characters", f.Label(), want)
	}
	return true
}

// validateBetween 数值区间："min-max" 标量或 [min, max] 列表
func validateBetween(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	var lo, hi string
	switch dv.Kind() {
	case core.KindList:
		bounds := dv.List()
		if len(bounds) != 2 {
			return fail(f, "%s has a malformed between range", f.Label())
		}
		lo, hi = bounds[0], bounds[1]
	default:
		var found bool
		lo, hi, found = strings.Cut(dv.Scalar(), "-")
		if !found {
			return fail(f, "%s has a malformed between range", f.Label())
		}
	}

	n, err := cast.ToFloat64E(pv.Scalar())
	if err != nil {
		return fail(f, "%s must be numeric", f.Label())
	}
	if n < cast.ToFloat64(lo) || n > cast.ToFloat64(hi) {
		return fail(f, "%s must be between %s and %s", f.Label(), lo, hi)
	}
	return true
}

func validateOptions(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	ok := true
	for _, got := range pv.List() {
		if !dv.Contains(got) {
			ok = fail(f, "%s must be one of: %s", f.Label(), strings.Join(dv.List(), ", "))
		}
	}
	return ok
}

// validatePattern 三种形态：命名格式（email/url/...）、掩码模板（# 数字，X 字母）、正则
func validatePattern(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	spec := dv.Scalar()
	got := pv.Scalar()

	if tag, ok := namedPatterns[spec]; ok {
		if err := underlying().Var(got, tag); err != nil {
			return fail(f, "%s is not a valid %s", f.Label(), spec)
		}
		return true
	}

	re, err := compilePattern(spec)
	if err != nil {
		return fail(f, "%s has an invalid pattern", f.Label())
	}
	if !re.MatchString(got) {
		return fail(f, "%s does not match the required pattern", f.Label())
	}
	return true
}

// compilePattern 掩码模板翻译为正则；不含掩码字符的按正则原样编译
func compilePattern(spec string) (*regexp.Regexp, error) {
	if !strings.ContainsAny(spec, "#X") {
		return regexp.Compile(spec)
	}
	var b strings.Builder
	b.WriteString("^")
	for _, r := range spec {
		switch r {
		case '#':
			b.WriteString(`\d`)
		case 'X':
			b.WriteString(`[a-zA-Z]`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// validateMatches 当前值必须与列出的其他字段的值一致
func validateMatches(dv, pv core.Value, f core.Field, s core.Scope) bool {
	ok := true
	for _, other := range dv.List() {
		otherVal, _ := s.Param(other)
		if otherField, found := s.FieldByName(other); found {
			if pv.Scalar() != otherVal.Scalar() {
				ok = fail(f, "%s does not match %s", f.Label(), otherField.Label())
			}
			continue
		}
		if pv.Scalar() != otherVal.Scalar() {
			ok = fail(f, "%s does not match %s", f.Label(), other)
		}
	}
	return ok
}

// validateDependsOn 本字段有值时，列出的字段也必须有值
func validateDependsOn(dv, pv core.Value, f core.Field, s core.Scope) bool {
	if pv.IsZero() {
		return true
	}
	ok := true
	for _, dep := range dv.List() {
		depVal, _ := s.Param(dep)
		if depVal.IsZero() {
			label := dep
			if depField, found := s.FieldByName(dep); found {
				label = depField.Label()
			}
			ok = fail(f, "%s requires %s to have a value", f.Label(), label)
		}
	}
	return ok
}

func validateMinSum(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	if cast.ToFloat64(pv.Scalar()) < cast.ToFloat64(dv.Scalar()) {
		return fail(f, "%s must be at least %s", f.Label(), dv.Scalar())
	}
	return true
}

func validateMaxSum(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	if cast.ToFloat64(pv.Scalar()) > cast.ToFloat64(dv.Scalar()) {
		return fail(f, "%s must be at most %s", f.Label(), dv.Scalar())
	}
	return true
}

// validateMultiples 禁用时参数不得是多值列表
func validateMultiples(dv, pv core.Value, f core.Field, _ core.Scope) bool {
	if !dv.Bool() && pv.Kind() == core.KindList && len(pv.List()) > 1 {
		return fail(f, "%s does not support multiple values", f.Label())
	}
	return true
}

func isDigit(r rune) bool { return unicode.IsDigit(r) }

func isSymbol(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}

// countValidator 生成按字符类别计数的上下界验证器
func countValidator(class func(rune) bool, lower bool, msg string) core.ValidateFunc {
	return func(dv, pv core.Value, f core.Field, _ core.Scope) bool {
		bound := dv.Int()
		count := 0
		for _, r := range pv.Scalar() {
			if class(r) {
				count++
			}
		}
		if lower && count < bound {
			return fail(f, msg, f.Label(), bound)
		}
		if !lower && count > bound {
			return fail(f, msg, f.Label(), bound)
		}
		return true
	}
}
