package field

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"katydid-common-validation/pkg/validation/core"
)

// 字段命名规则
var (
	// nameRe 声明时的合法字段名
	nameRe = regexp.MustCompile(`^[A-Za-z_][\w.]*$`)
	// cloneRe 数组克隆字段名（name:N），仅引擎在运行时合成
	cloneRe = regexp.MustCompile(`^[A-Za-z_][\w.]*:\d+$`)
)

// ValidName 判断是否为合法的声明字段名
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// CloneName 解析克隆字段名，返回基名和下标
func CloneName(name string) (base string, index int, ok bool) {
	if !cloneRe.MatchString(name) {
		return "", 0, false
	}
	i := strings.LastIndex(name, ":")
	index, _ = strconv.Atoi(name[i+1:])
	return name[:i], index, true
}

// Field 验证目标字段：指令袋 + 每次验证调用的运行时状态
// 声明的指令袋在构建后不可变，运行时状态在每次 normalize 时清空重建
type Field struct {
	name       string
	directives *Bag

	// ========== 运行时状态（每次验证调用重置） ==========
	value  core.Value // 当前解析出的参数值
	errors *ErrorList // 字段级错误集合
	toggle *bool      // +/- 对required的一次性覆盖，nil表示无覆盖

	// ========== 克隆簿记 ==========
	cloned bool   // 是否为数组参数合成的临时克隆
	origin string // 克隆的来源字段名
}

// New 创建声明字段
// 字段名必须匹配 ^[A-Za-z_][\w.]*$，克隆形式（name:N）不允许手工声明
func New(name string, directives *Bag) (*Field, error) {
	if !ValidName(name) {
		return nil, core.Fatalf(core.ErrMalformedFieldName,
			"field name %q must match %s", name, nameRe.String())
	}
	if directives == nil {
		directives = NewBag()
	}
	f := &Field{name: name, directives: directives, errors: NewErrorList()}
	f.directives.Set("name", core.Scalar(name))
	return f, nil
}

// Name 字段名
func (f *Field) Name() string { return f.name }

// Label 人类可读标签：label指令值，缺省为规整后的字段名
// 规整规则：下划线和点替换为空格，首字母大写
func (f *Field) Label() string {
	if v, ok := f.directives.Get("label"); ok && !v.IsZero() {
		return v.Scalar()
	}
	return Humanize(f.name)
}

// Directive 查询指令值（实现 core.Field）
func (f *Field) Directive(name string) (core.Value, bool) {
	return f.directives.Get(name)
}

// Directives 返回底层指令袋
func (f *Field) Directives() *Bag { return f.directives }

// AddError 追加字段级错误（实现 core.Field）
func (f *Field) AddError(msg string) bool {
	return f.errors.Add(msg)
}

// Errors 字段级错误快照（实现 core.Field）
func (f *Field) Errors() []string {
	return f.errors.All()
}

// ErrorList 返回底层错误集合
func (f *Field) ErrorList() *ErrorList { return f.errors }

// Value 当前解析出的参数值
func (f *Field) Value() core.Value { return f.value }

// SetValue 写入当前值
func (f *Field) SetValue(v core.Value) { f.value = v }

// Toggle 返回required覆盖（nil表示无覆盖）
func (f *Field) Toggle() *bool { return f.toggle }

// SetToggle 设置required覆盖
func (f *Field) SetToggle(required bool) {
	f.toggle = &required
}

// Required 计算本次调用的有效required：toggle覆盖优先于声明值
func (f *Field) Required() bool {
	if f.toggle != nil {
		return *f.toggle
	}
	if v, ok := f.directives.Get("required"); ok {
		return v.Bool()
	}
	return false
}

// IsClone 是否为数组参数合成的临时克隆
func (f *Field) IsClone() bool { return f.cloned }

// Origin 克隆来源字段名（非克隆返回自身名）
func (f *Field) Origin() string {
	if f.cloned {
		return f.origin
	}
	return f.name
}

// ResetRuntime 清空运行时状态并重置name指令
// normalize 的幂等性依赖这里只动运行时部分、不动声明指令
func (f *Field) ResetRuntime() {
	f.value = core.None()
	f.toggle = nil
	f.errors.Clear()
	f.directives.Set("name", core.Scalar(f.name))
}

// Clone 为数组参数的一个下标合成临时字段
// 克隆拷贝全部声明指令，标签追加 " #<N+1>" 后缀，alias不随克隆传播
func (f *Field) Clone(index int) *Field {
	bag := f.directives.Copy()
	bag.Del("alias")
	name := f.name + ":" + strconv.Itoa(index)
	bag.Set("name", core.Scalar(name))
	bag.Set("label", core.Scalar(fmt.Sprintf("%s #%d", f.Label(), index+1)))
	return &Field{
		name:       name,
		directives: bag,
		errors:     NewErrorList(),
		cloned:     true,
		origin:     f.name,
	}
}

// Snapshot 按声明指令复制一个全新字段（运行时状态归零）
// Schema 模板到验证上下文的实例化走这里
func (f *Field) Snapshot() *Field {
	return &Field{
		name:       f.name,
		directives: f.directives.Copy(),
		errors:     NewErrorList(),
	}
}

// Humanize 字段名转人类可读形式
func Humanize(name string) string {
	s := strings.NewReplacer("_", " ", ".", " ").Replace(name)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
