package engine

import (
	"sort"
	"strings"

	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/field"
	"katydid-common-validation/pkg/validation/params"

	"go.uber.org/zap"
)

// Context 一次性/可复用的验证上下文：每次验证调用的可变运行时状态
// 设计目标：
//   - Schema（不可变）与运行时状态（可变）两层分离
//   - 上下文由调用线程独占持有，不做并发防护
//   - 类级错误集合在一次调用内只追加，normalize 开始时统一清空
type Context struct {
	schema *Schema

	// ========== 字段快照 ==========
	fields     map[string]*field.Field
	fieldOrder []string

	// ========== 调用方输入 ==========
	parameters *params.Params
	queued     []string
	stash      map[string]any

	// ========== 错误状态 ==========
	classErrors *field.ErrorList

	// ========== 引擎开关 ==========
	ignoreUnknown bool
	reportUnknown bool
	logger        *zap.Logger

	// depth 嵌套验证深度：档案内再调用Validate时不清空已累积的错误
	depth int
}

// ContextOption 上下文配置选项
type ContextOption func(*Context)

// WithLogger 注入zap日志器（默认Nop）
func WithLogger(logger *zap.Logger) ContextOption {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIgnoreUnknown 开启后，未知指令/未知字段降级为跳过而非致命错误
func WithIgnoreUnknown(ignore bool) ContextOption {
	return func(c *Context) { c.ignoreUnknown = ignore }
}

// WithReportUnknown 配合 WithIgnoreUnknown：跳过时记录一条类级错误
func WithReportUnknown(report bool) ContextOption {
	return func(c *Context) { c.reportUnknown = report }
}

// WithParams 使用已有的参数仓库
func WithParams(p *params.Params) ContextOption {
	return func(c *Context) {
		if p != nil {
			c.parameters = p
		}
	}
}

// NewContext 从Schema实例化验证上下文
// 字段模板被快照为独立实例，上下文之间互不影响
func (s *Schema) NewContext(opts ...ContextOption) *Context {
	c := &Context{
		schema:      s,
		fields:      make(map[string]*field.Field, len(s.fields)),
		fieldOrder:  s.FieldNames(),
		parameters:  params.New(),
		stash:       make(map[string]any),
		classErrors: field.NewErrorList(),
		logger:      zap.NewNop(),
	}
	for name, tpl := range s.fields {
		c.fields[name] = tpl.Snapshot()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schema 返回共享的只读配置
func (c *Context) Schema() *Schema { return c.schema }

// Params 返回参数仓库
func (c *Context) Params() *params.Params { return c.parameters }

// AddParam 添加参数的便捷入口
func (c *Context) AddParam(key string, value any) error {
	return c.parameters.Add(key, value)
}

// Queue 追加待验证字段名（下次不带显式目标的Validate时使用）
func (c *Context) Queue(names ...string) {
	c.queued = append(c.queued, names...)
}

// Queued 返回排队中的字段名
func (c *Context) Queued() []string {
	cp := make([]string, len(c.queued))
	copy(cp, c.queued)
	return cp
}

// Stash 读取上下文携带的自由数据（实现 core.Scope）
func (c *Context) Stash(key string) any {
	return c.stash[key]
}

// SetStash 写入自由数据（如数据库句柄），供自定义验证器使用
func (c *Context) SetStash(key string, value any) {
	c.stash[key] = value
}

// Param 按名称查询参数（实现 core.Scope）
func (c *Context) Param(name string) (core.Value, bool) {
	return c.parameters.Get(name)
}

// FieldByName 按名称查询字段快照（实现 core.Scope）
func (c *Context) FieldByName(name string) (core.Field, bool) {
	f, ok := c.fields[name]
	if !ok {
		return nil, false
	}
	return f, true
}

// ReportError 追加类级错误（实现 core.Scope）
func (c *Context) ReportError(msg string) bool {
	return c.classErrors.Add(core.FlattenMessage(msg))
}

// Errors 聚合错误快照：类级错误在前，随后按字段声明顺序、插入顺序
// 一次调用进行中可能存在克隆字段，它们的错误排在所有声明字段之后
func (c *Context) Errors() []string {
	out := c.classErrors.All()
	for _, name := range c.fieldOrder {
		if f, ok := c.fields[name]; ok {
			out = append(out, f.Errors()...)
		}
	}
	var cloneNames []string
	for name, f := range c.fields {
		if f.IsClone() {
			cloneNames = append(cloneNames, name)
		}
	}
	sort.Strings(cloneNames)
	for _, name := range cloneNames {
		out = append(out, c.fields[name].Errors()...)
	}
	return out
}

// ErrorCount 返回聚合错误条数
func (c *Context) ErrorCount() int {
	return len(c.Errors())
}

// HasErrors 判断是否存在任何错误（含进行中的克隆字段）
func (c *Context) HasErrors() bool {
	if !c.classErrors.Empty() {
		return true
	}
	for _, f := range c.fields {
		if f.ErrorList().Count() > 0 {
			return true
		}
	}
	return false
}

// ErrorsToString 用分隔符拼接聚合错误（常用分隔符 ", "）
func (c *Context) ErrorsToString(delimiter string) string {
	if delimiter == "" {
		delimiter = ", "
	}
	return strings.Join(c.Errors(), delimiter)
}

// ResetErrors 清空类级与所有字段级错误
func (c *Context) ResetErrors() {
	c.classErrors.Clear()
	for _, f := range c.fields {
		f.ErrorList().Clear()
	}
}

// ResetFields 重置字段运行时状态并丢弃残留克隆
func (c *Context) ResetFields() {
	for name, f := range c.fields {
		if f.IsClone() {
			delete(c.fields, name)
			continue
		}
		f.ResetRuntime()
	}
	c.fieldOrder = c.schema.FieldNames()
}

// Reset 整体复位：错误、字段状态、排队列表（参数与stash保留）
func (c *Context) Reset() {
	c.ResetErrors()
	c.ResetFields()
	c.queued = nil
}

// pitch 未知字段/未知指令的集中降级策略
// IgnoreUnknown 关闭：原样返回致命错误
// IgnoreUnknown 开启：ReportUnknown 决定是记录类级错误还是静默跳过
func (c *Context) pitch(err error) error {
	if !c.ignoreUnknown {
		return err
	}
	if c.reportUnknown {
		c.classErrors.Add(core.FlattenMessage(err.Error()))
	}
	return nil
}
