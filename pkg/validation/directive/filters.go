package directive

import (
	"strings"
	"unicode"

	"katydid-common-validation/pkg/validation/core"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FilterSet 过滤器注册表：名称 -> 单值进单值出的纯转换
// 与指令注册表同样的先注册者胜语义
type FilterSet struct {
	filters map[string]core.FilterFunc
}

// NewFilterSet 创建加载了内置过滤器的注册表
func NewFilterSet() *FilterSet {
	fs := &FilterSet{filters: make(map[string]core.FilterFunc)}
	for name, fn := range builtinFilters {
		fs.filters[name] = fn
	}
	return fs
}

// Register 注册过滤器；同名已存在时静默跳过
func (fs *FilterSet) Register(name string, fn core.FilterFunc) error {
	if name == "" || fn == nil {
		return core.Fatalf(core.ErrUnknownFilter, "filter registration requires a name and a function")
	}
	if _, exists := fs.filters[name]; exists {
		return nil
	}
	fs.filters[name] = fn
	return nil
}

// Get 查询过滤器
func (fs *FilterSet) Get(name string) (core.FilterFunc, bool) {
	fn, ok := fs.filters[name]
	return fn, ok
}

// Apply 依次应用一组命名过滤器；未注册的名称返回致命错误
func (fs *FilterSet) Apply(names []string, value string) (string, error) {
	for _, name := range names {
		fn, ok := fs.filters[name]
		if !ok {
			return value, core.Fatalf(core.ErrUnknownFilter, "filter %q is not registered", name)
		}
		value = fn(value)
	}
	return value, nil
}

// 内置过滤器目录
var builtinFilters = map[string]core.FilterFunc{
	"trim": strings.TrimSpace,
	"strip": func(s string) string {
		// 连续空白折叠为单个空格
		return strings.Join(strings.Fields(s), " ")
	},
	"lowercase": strings.ToLower,
	"uppercase": strings.ToUpper,
	"numeric":   keepClass(unicode.IsDigit),
	"alpha":     keepClass(unicode.IsLetter),
	"alphanumeric": keepClass(func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}),
	"decimal": keepClass(func(r rune) bool {
		return unicode.IsDigit(r) || r == '.' || r == '-'
	}),
	"capitalize": capitalize,
	"titlecase": func(s string) string {
		return cases.Title(language.Und).String(s)
	},
}

// keepClass 生成只保留指定字符类别的过滤器
func keepClass(class func(rune) bool) core.FilterFunc {
	return func(s string) string {
		var b strings.Builder
		for _, r := range s {
			if class(r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
}

// capitalize 句首字母大写：首字符及 ". " 之后的字符转大写
func capitalize(s string) string {
	runes := []rune(s)
	upperNext := true
	for i, r := range runes {
		if upperNext && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			upperNext = false
		}
		if r == '.' {
			upperNext = true
		}
	}
	return string(runes)
}
