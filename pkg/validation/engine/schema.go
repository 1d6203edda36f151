package engine

import (
	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/directive"
	"katydid-common-validation/pkg/validation/field"
)

// ProfileFunc 验证档案：字段指令表达不了的任意业务验证过程
// 通过上下文访问参数、字段和stash，直接登记错误，返回是否通过
type ProfileFunc func(ctx *Context, args ...any) bool

// CustomValidation 命名的自定义验证函数（validation指令的执行体）
// 字段通过 validation: "名称" 引用，构建时注册
type CustomValidation func(f core.Field, value core.Value, ctx *Context) bool

// Routine 方法的执行体：输入验证通过后才会运行
type Routine func(ctx *Context, args ...any) error

// Method 自动验证方法的规格
// Input/InputProfile 二选一作为前置验证；Output/OutputProfile 可选，
// 失败是致命错误（程序缺陷），不是可恢复的输入错误
type Method struct {
	Input         []string
	InputProfile  string
	Using         Routine
	Output        []string
	OutputProfile string
}

// reservedNames 引擎保留的访问器名称
// 字段名与这些名称冲突是构建期错误（不是验证期错误）
var reservedNames = map[string]struct{}{
	"params": {}, "errors": {}, "fields": {}, "mixins": {},
	"profiles": {}, "methods": {}, "queue": {}, "stash": {},
	"validate": {}, "reset": {},
}

// Schema 不可变的类配置：指令表、mixin、字段模板、档案、方法、消息覆盖
// 构建一次后在多个验证上下文间以共享只读引用传递
type Schema struct {
	registry    *directive.Registry
	filters     *directive.FilterSet
	mixins      map[string]*field.Mixin
	fields      map[string]*field.Field
	fieldOrder  []string
	profiles    map[string]ProfileFunc
	methods     map[string]Method
	validations map[string]CustomValidation
	messages    map[string]string
}

// Builder 配置构建器
// 声明方法可链式调用，错误累积到 Build 统一返回（第一个错误）
type Builder struct {
	schema *Schema
	err    error
}

// NewBuilder 创建构建器（指令表与过滤器表预装内置目录）
func NewBuilder() *Builder {
	return &Builder{
		schema: &Schema{
			registry:    directive.New(),
			filters:     directive.NewFilterSet(),
			mixins:      make(map[string]*field.Mixin),
			fields:      make(map[string]*field.Field),
			profiles:    make(map[string]ProfileFunc),
			methods:     make(map[string]Method),
			validations: make(map[string]CustomValidation),
			messages:    make(map[string]string),
		},
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil && err != nil {
		b.err = err
	}
	return b
}

// Directive 注册自定义指令（先注册者胜，内置指令不可覆盖）
func (b *Builder) Directive(d *core.Descriptor) *Builder {
	return b.fail(b.schema.registry.Register(d))
}

// Filter 注册自定义过滤器
func (b *Builder) Filter(name string, fn core.FilterFunc) *Builder {
	return b.fail(b.schema.filters.Register(name, fn))
}

// Mixin 声明指令模板
func (b *Builder) Mixin(name string, directives map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	if _, exists := b.schema.mixins[name]; exists {
		return b.fail(core.Fatalf(core.ErrNameCollision, "mixin %q is declared twice", name))
	}
	bag, err := field.BagFrom(directives)
	if err != nil {
		return b.fail(err)
	}
	m, err := field.NewMixin(name, bag)
	if err != nil {
		return b.fail(err)
	}
	b.schema.mixins[name] = m
	return b
}

// Field 声明验证字段
// 构建期检查：命名规则、重复声明、与保留访问器的名称冲突
func (b *Builder) Field(name string, directives map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	if _, reserved := reservedNames[name]; reserved {
		return b.fail(core.Fatalf(core.ErrNameCollision,
			"field %q collides with a reserved accessor name", name))
	}
	if _, exists := b.schema.fields[name]; exists {
		return b.fail(core.Fatalf(core.ErrNameCollision, "field %q is declared twice", name))
	}
	bag, err := field.BagFrom(directives)
	if err != nil {
		return b.fail(err)
	}
	f, err := field.New(name, bag)
	if err != nil {
		return b.fail(err)
	}
	b.schema.fields[name] = f
	b.schema.fieldOrder = append(b.schema.fieldOrder, name)
	return b
}

// Profile 注册验证档案
func (b *Builder) Profile(name string, fn ProfileFunc) *Builder {
	if b.err != nil {
		return b
	}
	if fn == nil {
		return b.fail(core.Fatalf(core.ErrUnknownProfile, "profile %q requires a function", name))
	}
	b.schema.profiles[name] = fn
	return b
}

// Method 注册自动验证方法
func (b *Builder) Method(name string, m Method) *Builder {
	if b.err != nil {
		return b
	}
	if m.Using == nil {
		return b.fail(core.Fatalf(core.ErrUnknownMethod, "method %q requires a routine", name))
	}
	if len(m.Input) == 0 && m.InputProfile == "" {
		return b.fail(core.Fatalf(core.ErrUnknownMethod, "method %q requires an input specification", name))
	}
	b.schema.methods[name] = m
	return b
}

// Validation 注册命名自定义验证函数（validation指令引用）
func (b *Builder) Validation(name string, fn CustomValidation) *Builder {
	if b.err != nil {
		return b
	}
	if fn == nil {
		return b.fail(core.Fatalf(core.ErrUnknownValidation, "validation %q requires a function", name))
	}
	b.schema.validations[name] = fn
	return b
}

// Message 注册字段级错误消息覆盖
// 验证后该字段的所有生成消息被替换为这一条
func (b *Builder) Message(fieldName string, message string) *Builder {
	if b.err != nil {
		return b
	}
	b.schema.messages[fieldName] = message
	return b
}

// Err 返回目前累积的第一个声明错误（不触发Build的整体检查）
func (b *Builder) Err() error { return b.err }

// Build 完成构建并做整体一致性检查
// 指令的注册与适用性检查留给normalize阶段（受pitch降级策略管辖），
// 这里只做无法降级的结构性检查：mixin与mixin_field引用必须存在
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := b.schema

	// 字段引用的mixin必须存在
	for _, fname := range s.fieldOrder {
		f := s.fields[fname]
		if mixins, ok := f.Directives().Get("mixin"); ok {
			for _, mname := range mixins.List() {
				if _, exists := s.mixins[mname]; !exists {
					return nil, core.Fatalf(core.ErrUnknownMixin,
						"field %q uses undeclared mixin %q", fname, mname)
				}
			}
		}
		if src, ok := f.Directives().Get("mixin_field"); ok {
			if _, exists := s.fields[src.Scalar()]; !exists {
				return nil, core.Fatalf(core.ErrUnknownField,
					"field %q merges undeclared field %q", fname, src.Scalar())
			}
		}
	}

	return s, nil
}

// Registry 返回指令注册表
func (s *Schema) Registry() *directive.Registry { return s.registry }

// Filters 返回过滤器注册表
func (s *Schema) Filters() *directive.FilterSet { return s.filters }

// FieldNames 返回字段名（声明顺序）
func (s *Schema) FieldNames() []string {
	cp := make([]string, len(s.fieldOrder))
	copy(cp, s.fieldOrder)
	return cp
}

// HasField 判断字段是否声明
func (s *Schema) HasField(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// HasProfile 判断档案是否注册
func (s *Schema) HasProfile(name string) bool {
	_, ok := s.profiles[name]
	return ok
}
