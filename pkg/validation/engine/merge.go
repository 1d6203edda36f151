package engine

import (
	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/field"
)

// mixin/字段合并引擎
// 优先级规则（两种合并共用）：
//   - 目标字段未声明的指令：从来源拷贝
//   - 目标已声明且指令为multi：做去重并集（来源元素排在后面）
//   - 目标已声明且指令非multi：目标自身的值获胜，mixin永远不覆盖显式声明

// mergeMixinIntoField 将mixin模板并入字段
func (c *Context) mergeMixinIntoField(f *field.Field, mixinName string) error {
	m, ok := c.schema.mixins[mixinName]
	if !ok {
		return core.Fatalf(core.ErrUnknownMixin, "field %q uses undeclared mixin %q", f.Name(), mixinName)
	}
	c.mergeBags(f.Directives(), m.Directives(), nil)
	return nil
}

// mergeFieldIntoField 字段间合并（mixin_field操作）
// 仅拷贝可作为模板值的指令（描述符Mixin标志），且永远不拷贝name和label：
// 目标字段保持自己的身份
func (c *Context) mergeFieldIntoField(target *field.Field, sourceName string) error {
	src, ok := c.fields[sourceName]
	if !ok {
		return core.Fatalf(core.ErrUnknownField,
			"field %q merges undeclared field %q", target.Name(), sourceName)
	}

	skip := map[string]struct{}{"name": {}, "label": {}}
	templateOnly := func(name string) bool {
		d, ok := c.schema.registry.Get(name)
		return ok && d.Mixin
	}
	c.mergeBagsFiltered(target.Directives(), src.Directives(), skip, templateOnly)
	return nil
}

// mergeBags 按优先级规则合并两个指令袋
func (c *Context) mergeBags(dst, src *field.Bag, skip map[string]struct{}) {
	c.mergeBagsFiltered(dst, src, skip, nil)
}

func (c *Context) mergeBagsFiltered(dst, src *field.Bag, skip map[string]struct{}, accept func(string) bool) {
	for _, name := range src.Names() {
		if _, skipped := skip[name]; skipped {
			continue
		}
		if accept != nil && !accept(name) {
			continue
		}
		value, _ := src.Get(name)

		if !dst.Has(name) {
			dst.Set(name, value)
			continue
		}
		if d, ok := c.schema.registry.Get(name); ok && d.Multi {
			dst.Union(name, value)
		}
		// 非multi且目标已有：目标值获胜，不做任何事
	}
}

// checkAliases 构建 别名 -> 字段 反向索引并检查冲突
// 冲突情形：两个字段声明同一别名、别名与某字段的真实名称相同
func (c *Context) checkAliases() (map[string]string, error) {
	index := make(map[string]string)
	for _, name := range c.fieldOrder {
		f, ok := c.fields[name]
		if !ok {
			continue
		}
		aliases, declared := f.Directives().Get("alias")
		if !declared {
			continue
		}
		for _, alias := range aliases.List() {
			if c.schema.HasField(alias) {
				return nil, core.Fatalf(core.ErrAliasShadowsField,
					"field %q declares alias %q which is already a field name", name, alias)
			}
			if owner, dup := index[alias]; dup && owner != name {
				return nil, core.Fatalf(core.ErrDuplicateAlias,
					"alias %q is claimed by both %q and %q", alias, owner, name)
			}
			index[alias] = name
		}
	}
	return index, nil
}

// checkDirectives 校验字段与mixin使用的每个指令都已注册且适用
// 未注册指令走pitch降级策略，适用性错误一律致命
func (c *Context) checkDirectives() error {
	for _, m := range c.schema.mixins {
		for _, name := range m.Directives().Names() {
			d, registered := c.schema.registry.Get(name)
			if !registered {
				if err := c.pitch(core.Fatalf(core.ErrUnknownDirective,
					"mixin %q uses unknown directive %q", m.Name(), name)); err != nil {
					return err
				}
				continue
			}
			if !d.Mixin {
				return core.Fatalf(core.ErrBadDescriptor,
					"directive %q cannot be used on mixin %q", name, m.Name())
			}
		}
	}

	for _, fname := range c.fieldOrder {
		f, ok := c.fields[fname]
		if !ok {
			continue
		}
		for _, name := range f.Directives().Names() {
			d, registered := c.schema.registry.Get(name)
			if !registered {
				if err := c.pitch(core.Fatalf(core.ErrUnknownDirective,
					"field %q uses unknown directive %q", fname, name)); err != nil {
					return err
				}
				continue
			}
			if !d.Field {
				return core.Fatalf(core.ErrBadDescriptor,
					"directive %q cannot be used on field %q", name, fname)
			}
		}
	}
	return nil
}
