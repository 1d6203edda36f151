package core

// Event 生命周期事件标识符
// 设计目标：
//   - 指令(Directive)可以按事件声明依赖关系，引擎在触发事件前按依赖排序
//   - 事件集合固定，不支持运行时扩展，保证排序结果可预测
//
// 执行顺序（一次完整验证调用）：
//
//	normalize -> before_validation -> (pre过滤) -> validate -> (post过滤) -> after_validation
type Event string

// 预定义的生命周期事件常量
const (
	// EventNormalize 规整阶段：重置运行时状态、合并mixin、检查别名冲突
	EventNormalize Event = "normalize"
	// EventBeforeValidation 验证前钩子阶段
	EventBeforeValidation Event = "before_validation"
	// EventValidate 验证阶段：按依赖顺序执行各指令的验证函数
	EventValidate Event = "validate"
	// EventAfterValidation 验证后钩子阶段
	EventAfterValidation Event = "after_validation"
)

// FilterPhase 过滤阶段标识符
// 过滤器不属于事件依赖图，固定在 validate 之前(pre)或之后(post)执行
// post 阶段只在整次验证零错误时执行
type FilterPhase string

const (
	// PhasePre 前置过滤：在验证器检查值之前执行
	PhasePre FilterPhase = "pre"
	// PhasePost 后置过滤：仅在整次验证通过后执行
	PhasePost FilterPhase = "post"
)

// Events 返回所有生命周期事件（按执行顺序）
func Events() []Event {
	return []Event{
		EventNormalize,
		EventBeforeValidation,
		EventValidate,
		EventAfterValidation,
	}
}
