package validation

import (
	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/engine"
	"katydid-common-validation/pkg/validation/params"

	"go.uber.org/zap"
)

// 门面包：常用类型与入口的汇聚点
// 深度定制（自定义指令、过滤器、档案）直接使用子包即可

type (
	// Schema 不可变类配置
	Schema = engine.Schema
	// Builder 配置构建器
	Builder = engine.Builder
	// Context 每次验证调用的可变上下文
	Context = engine.Context
	// Method 自动验证方法规格
	Method = engine.Method
	// ProfileFunc 验证档案
	ProfileFunc = engine.ProfileFunc
	// CustomValidation 命名自定义验证函数
	CustomValidation = engine.CustomValidation
	// Descriptor 指令描述符
	Descriptor = core.Descriptor
	// Value 指令/参数值的带标签变体
	Value = core.Value
	// Params 参数仓库
	Params = params.Params
)

// NewBuilder 创建配置构建器
func NewBuilder() *Builder { return engine.NewBuilder() }

// NewParams 创建参数仓库
func NewParams() *Params { return params.New() }

// Scalar 构造标量值
func Scalar(s string) Value { return core.Scalar(s) }

// List 构造列表值
func List(items ...string) Value { return core.List(items...) }

// Callback 构造延迟求值的回调值
func Callback(fn func() string) Value { return core.Callback(fn) }

// WithLogger 上下文选项：注入zap日志器
func WithLogger(logger *zap.Logger) engine.ContextOption { return engine.WithLogger(logger) }

// WithIgnoreUnknown 上下文选项：未知指令/字段降级为跳过
func WithIgnoreUnknown(ignore bool) engine.ContextOption { return engine.WithIgnoreUnknown(ignore) }

// WithReportUnknown 上下文选项：跳过未知项时记录类级错误
func WithReportUnknown(report bool) engine.ContextOption { return engine.WithReportUnknown(report) }

// WithParams 上下文选项：使用已有参数仓库
func WithParams(p *Params) engine.ContextOption { return engine.WithParams(p) }
