package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/field"

	"go.uber.org/zap"
)

// 验证引擎：normalize -> 目标选择 -> 克隆展开 -> 前置过滤 ->
// 逐字段验证 -> 后置过滤 -> 克隆回收
//
// 一次Validate调用内上下文被原地修改；嵌套调用（档案内再验证）
// 只追加错误，不重复清空

// Validate 执行一次验证
// 目标参数的形式：
//   - 字段名："login"
//   - 带toggle前缀的字段名："+login" 本次强制required，"-login" 本次取消required
//   - 正则模式："/^user\./" 展开为所有匹配的已声明字段（字典序）
//
// 不传目标时的回退顺序：排队的字段名 -> 有对应参数的字段 -> 全部已声明字段
//
// 返回：验证是否通过；error 仅承载致命配置错误（验证失败不走error通道）
func (c *Context) Validate(targets ...string) (bool, error) {
	return c.validate(nil, targets)
}

// ValidateMapped 旧式"先改名再验证"路径（已不建议使用）
// aliases 为 参数名 -> 字段名 的映射：参数按映射改名，映射到的字段成为显式目标
func (c *Context) ValidateMapped(aliases map[string]string, targets ...string) (bool, error) {
	return c.validate(aliases, targets)
}

func (c *Context) validate(aliasMap map[string]string, targets []string) (ok bool, err error) {
	c.depth++
	defer func() { c.depth-- }()

	// ========== 规整 ==========
	aliasIndex, err := c.normalize()
	if err != nil {
		return false, err
	}

	// 别名参数映射：别名键改写为字段真实名
	for alias, owner := range aliasIndex {
		if v, has := c.parameters.Get(alias); has && !c.parameters.Has(owner) {
			c.parameters.Del(alias)
			c.parameters.Set(owner, v)
		}
	}

	// 旧式改名路径优先于其他一切目标来源
	if len(aliasMap) > 0 {
		mapped := make([]string, 0, len(aliasMap))
		for from, to := range aliasMap {
			if v, has := c.parameters.Get(from); has {
				c.parameters.Del(from)
				c.parameters.Set(to, v)
			}
			mapped = append(mapped, to)
		}
		sort.Strings(mapped)
		targets = append(mapped, targets...)
	}

	// ========== 目标选择与toggle ==========
	work, err := c.selectTargets(targets)
	if err != nil {
		return false, err
	}

	// ========== 数组参数克隆展开 ==========
	work, reap, splitBases := c.expandClones(work)
	defer c.reapClones(reap, splitBases)

	c.logger.Debug("validation pass started",
		zap.Strings("targets", work),
		zap.Int("params", c.parameters.Len()))

	// ========== 前置过滤 ==========
	if err := c.runFilters(work, core.PhasePre); err != nil {
		return false, err
	}

	// ========== 逐字段验证 ==========
	for _, name := range work {
		f, exists := c.fields[name]
		if !exists {
			continue
		}
		if err := c.validateField(f); err != nil {
			return false, err
		}
	}

	// ========== 后置过滤（仅零错误时） ==========
	if !c.HasErrors() {
		if err := c.runFilters(work, core.PhasePost); err != nil {
			return false, err
		}
	}

	passed := !c.HasErrors()
	c.logger.Debug("validation pass finished",
		zap.Bool("passed", passed),
		zap.Int("errors", c.ErrorCount()))
	return passed, nil
}

// normalize 规整阶段
// 幂等：参数不变时连续调用两次，第二次得到完全相同的字段/mixin状态
func (c *Context) normalize() (map[string]string, error) {
	// 顶层调用清空全部错误与运行时状态；嵌套调用只追加
	if c.depth == 1 {
		c.ResetErrors()
		c.ResetFields()
	}

	// 重新执行mixin与mixin_field合并（合并操作幂等）
	for _, name := range c.fieldOrder {
		f, ok := c.fields[name]
		if !ok {
			continue
		}
		if mixins, has := f.Directives().Get("mixin"); has {
			for _, mname := range mixins.List() {
				if err := c.mergeMixinIntoField(f, mname); err != nil {
					return nil, err
				}
			}
		}
		if src, has := f.Directives().Get("mixin_field"); has {
			if err := c.mergeFieldIntoField(f, src.Scalar()); err != nil {
				return nil, err
			}
		}
	}

	// 指令存在性与适用性检查
	if err := c.checkDirectives(); err != nil {
		return nil, err
	}

	// 别名冲突检查
	return c.checkAliases()
}

// selectTargets 构建本次调用的工作字段列表
// 优先级：显式目标 > 排队名单 > 有参数的字段子集 > 全部已声明字段
// 返回的列表按字段声明顺序排列，保证确定性
func (c *Context) selectTargets(targets []string) ([]string, error) {
	var raw []string
	switch {
	case len(targets) > 0:
		raw = targets
	case len(c.queued) > 0:
		raw = c.queued
	case c.parameters.Len() > 0:
		return c.discoverTargets()
	default:
		return c.schema.FieldNames(), nil
	}

	wanted := make(map[string]struct{})
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}

		// toggle前缀：+ 强制required，- 取消required（仅本次调用）
		var forced *bool
		if strings.HasPrefix(t, "+") || strings.HasPrefix(t, "-") {
			v := t[0] == '+'
			forced = &v
			t = t[1:]
		}

		// 正则目标展开为所有匹配的已声明字段
		if strings.HasPrefix(t, "/") && strings.HasSuffix(t, "/") && len(t) > 1 {
			re, err := regexp.Compile(t[1 : len(t)-1])
			if err != nil {
				return nil, core.Fatalf(core.ErrUnknownField, "invalid field pattern %s: %v", t, err)
			}
			for _, name := range c.schema.FieldNames() {
				if re.MatchString(name) {
					wanted[name] = struct{}{}
				}
			}
			continue
		}

		if !c.schema.HasField(t) {
			if err := c.pitch(core.Fatalf(core.ErrUnknownField,
				"cannot validate undeclared field %q", t)); err != nil {
				return nil, err
			}
			continue
		}
		wanted[t] = struct{}{}
		if forced != nil {
			c.fields[t].SetToggle(*forced)
		}
	}

	ordered := make([]string, 0, len(wanted))
	for _, name := range c.schema.FieldNames() {
		if _, ok := wanted[name]; ok {
			ordered = append(ordered, name)
		}
	}
	return ordered, nil
}

// discoverTargets 发现模式：验证有对应参数（按名称、别名或数组下标）的字段
// 指向未声明字段的参数走pitch降级策略
func (c *Context) discoverTargets() ([]string, error) {
	flat := c.parameters.Flatten()

	matched := make(map[string]struct{})
	for key := range flat {
		name := key
		if base, _, isClone := field.CloneName(key); isClone {
			name = base
		} else if i := strings.Index(key, "."); i > 0 {
			// 嵌套路径参数归属其根字段（声明了全路径字段名的除外）
			if !c.schema.HasField(key) {
				name = key[:i]
			}
		}

		if !c.schema.HasField(name) {
			if err := c.pitch(core.Fatalf(core.ErrUnknownField,
				"parameter %q does not correspond to a declared field", key)); err != nil {
				return nil, err
			}
			continue
		}
		matched[name] = struct{}{}
	}

	ordered := make([]string, 0, len(matched))
	for _, name := range c.schema.FieldNames() {
		if _, ok := matched[name]; ok {
			ordered = append(ordered, name)
		}
	}
	return ordered, nil
}

// expandClones 数组参数的克隆展开
// 扁平键 base:N 且 base 为目标字段时：为每个下标合成临时克隆字段，
// 列表参数被破坏式拆分为带下标的标量参数（回收阶段重新组装）
func (c *Context) expandClones(work []string) (newWork []string, reap []string, splitBases []string) {
	flat := c.parameters.Flatten()

	indices := make(map[string][]int)
	for key := range flat {
		if base, idx, ok := field.CloneName(key); ok && c.schema.HasField(base) {
			indices[base] = append(indices[base], idx)
		}
	}

	for _, name := range work {
		idxs, isArray := indices[name]
		if !isArray {
			newWork = append(newWork, name)
			continue
		}
		sort.Ints(idxs)

		// 列表参数拆分为带下标的标量
		if v, has := c.parameters.Get(name); has && v.Kind() == core.KindList {
			c.parameters.Del(name)
			for i, item := range v.List() {
				c.parameters.Set(name+":"+strconv.Itoa(i), core.Scalar(item))
			}
		}
		splitBases = append(splitBases, name)

		for _, idx := range idxs {
			clone := c.fields[name].Clone(idx)
			c.fields[clone.Name()] = clone
			newWork = append(newWork, clone.Name())
			reap = append(reap, clone.Name())
		}
	}
	return newWork, reap, splitBases
}

// reapClones 克隆回收：错误折叠回来源字段，克隆从字段表移除，
// 拆分过的参数重新组装为列表
func (c *Context) reapClones(reap []string, splitBases []string) {
	for _, name := range reap {
		clone, ok := c.fields[name]
		if !ok {
			continue
		}
		if origin, ok := c.fields[clone.Origin()]; ok {
			origin.ErrorList().AddAll(clone.Errors())
		}
		delete(c.fields, name)
	}

	for _, base := range splitBases {
		var keys []string
		for _, key := range c.parameters.Keys() {
			if b, _, ok := field.CloneName(key); ok && b == base {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			continue
		}
		sort.Slice(keys, func(i, j int) bool {
			_, a, _ := field.CloneName(keys[i])
			_, b, _ := field.CloneName(keys[j])
			return a < b
		})
		items := make([]string, 0, len(keys))
		for _, key := range keys {
			v, _ := c.parameters.Get(key)
			items = append(items, v.Scalar())
			c.parameters.Del(key)
		}
		c.parameters.Set(base, core.List(items...))
	}
}

// runFilters 对工作列表中处于指定过滤阶段的字段应用过滤器
// filtering指令决定阶段，缺省为pre；过滤结果写回参数仓库
func (c *Context) runFilters(work []string, phase core.FilterPhase) error {
	for _, name := range work {
		f, ok := c.fields[name]
		if !ok {
			continue
		}
		filters, has := f.Directives().Get("filters")
		if !has {
			continue
		}

		fieldPhase := core.PhasePre
		if v, declared := f.Directives().Get("filtering"); declared && v.Scalar() == string(core.PhasePost) {
			fieldPhase = core.PhasePost
		}
		if fieldPhase != phase {
			continue
		}

		pv, present := c.parameters.Get(f.Name())
		if !present {
			continue
		}

		switch pv.Kind() {
		case core.KindList:
			items := pv.List()
			for i, item := range items {
				filtered, err := c.schema.filters.Apply(filters.List(), item)
				if err != nil {
					return err
				}
				items[i] = filtered
			}
			c.parameters.Set(f.Name(), core.List(items...))
		default:
			filtered, err := c.schema.filters.Apply(filters.List(), pv.Scalar())
			if err != nil {
				return err
			}
			c.parameters.Set(f.Name(), core.Scalar(filtered))
		}
	}
	return nil
}

// validateField 单字段验证
// 值解析顺序：参数值 -> default指令（字面量或回调） -> value指令 -> 空
// required且值为空时短路：只记录一条required消息，其余指令一概不执行
func (c *Context) validateField(f *field.Field) error {
	pv := c.resolveValue(f)
	f.SetValue(pv)

	if f.Required() && pv.IsZero() {
		f.AddError(c.fieldMessage(f, fmt.Sprintf("%s is required", f.Label())))
		return nil
	}

	// 空的可选字段不执行验证指令
	if pv.IsZero() {
		return nil
	}

	// 指令按validate事件的依赖图拓扑排序执行
	ordered, err := c.schema.registry.Resolve(core.EventValidate, f.Directives().Names())
	if err != nil {
		return err
	}

	for _, dname := range ordered {
		d, ok := c.schema.registry.Get(dname)
		if !ok || d.Validator == nil {
			continue
		}
		dv, declared := f.Directives().Get(dname)
		if !declared {
			continue
		}
		// 失败以实际追加的错误为准，布尔返回值仅作参考
		_ = d.Validator(dv, pv, f, c)
	}

	// 命名自定义验证（validation指令）在内置指令之后执行
	if vname, declared := f.Directives().Get("validation"); declared {
		fn, registered := c.schema.validations[vname.Scalar()]
		if !registered {
			return core.Fatalf(core.ErrUnknownValidation,
				"field %q references unregistered validation %q", f.Name(), vname.Scalar())
		}
		_ = fn(f, pv, c)
	}

	// 自定义消息优先：error指令或字段级消息覆盖替换全部生成消息
	c.applyMessageOverride(f)
	return nil
}

// resolveValue 解析字段的有效值
// readonly字段忽略传入参数，始终采用声明的value/default
func (c *Context) resolveValue(f *field.Field) core.Value {
	readonly := false
	if v, ok := f.Directives().Get("readonly"); ok {
		readonly = v.Bool()
	}

	if !readonly {
		if pv, has := c.parameters.Get(f.Name()); has {
			return pv
		}
	}
	if dv, has := f.Directives().Get("default"); has && !dv.IsZero() {
		if dv.Kind() == core.KindCallback {
			return core.Scalar(dv.Scalar()) // 回调求值
		}
		return dv
	}
	if vv, has := f.Directives().Get("value"); has {
		return vv
	}
	return core.None()
}

// fieldMessage 计算required等引擎生成消息的最终文本
// 优先级：字段error指令 > Schema字段级消息覆盖 > 生成的默认消息
func (c *Context) fieldMessage(f *field.Field, generated string) string {
	if ev, ok := f.Directives().Get("error"); ok && !ev.IsZero() {
		return ev.Scalar()
	}
	if msg, ok := c.schema.messages[f.Origin()]; ok {
		return msg
	}
	return generated
}

// applyMessageOverride 有错误且存在自定义消息时，替换字段的全部错误
func (c *Context) applyMessageOverride(f *field.Field) {
	if f.ErrorList().Count() == 0 {
		return
	}
	custom := ""
	if ev, ok := f.Directives().Get("error"); ok && !ev.IsZero() {
		custom = ev.Scalar()
	} else if msg, ok := c.schema.messages[f.Origin()]; ok {
		custom = msg
	}
	if custom == "" {
		return
	}
	f.ErrorList().Clear()
	f.AddError(custom)
}
