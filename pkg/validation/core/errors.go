package core

import (
	"errors"
	"fmt"
	"strings"
)

// 配置错误哨兵值
// 设计目标：
//   - 两条错误通道分离：验证失败只记录为错误字符串，不走 error 通道
//   - 配置错误（程序员错误）走 error 通道，调用方用 errors.Is 区分种类
//
// 除 ErrUnknownDirective / ErrUnknownField 可被引擎开关降级外，
// 其余配置错误一律致命
var (
	// ErrUnknownDirective 字段或mixin引用了未注册的指令
	ErrUnknownDirective = errors.New("unknown directive")

	// ErrUnknownField 调用方指定了未声明的字段
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownMixin 字段引用了未声明的mixin
	ErrUnknownMixin = errors.New("unknown mixin")

	// ErrUnknownProfile 未注册的验证档案
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrUnknownMethod 未注册的验证方法
	ErrUnknownMethod = errors.New("unknown method")

	// ErrUnknownFilter 未注册的过滤器
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrUnknownValidation validation指令引用了未注册的自定义验证函数
	ErrUnknownValidation = errors.New("unknown validation")

	// ErrDuplicateAlias 两个字段声明了相同的别名
	ErrDuplicateAlias = errors.New("duplicate alias")

	// ErrAliasShadowsField 别名与已声明字段的真实名称冲突
	ErrAliasShadowsField = errors.New("alias shadows field")

	// ErrNameCollision 字段名与引擎保留的访问器名称冲突
	ErrNameCollision = errors.New("name collision")

	// ErrMalformedFieldName 字段名不符合命名规则
	ErrMalformedFieldName = errors.New("malformed field name")

	// ErrMalformedParameter 参数值形状非法（超过一层的嵌套map）
	ErrMalformedParameter = errors.New("malformed parameter")

	// ErrMalformedValue 指令值无法解码为标量/列表/回调
	ErrMalformedValue = errors.New("malformed directive value")

	// ErrBadDescriptor 指令描述符缺少必要字段
	ErrBadDescriptor = errors.New("bad directive descriptor")

	// ErrDirectCircularDependency 指令直接依赖自身
	ErrDirectCircularDependency = errors.New("direct circular dependency")

	// ErrIndirectCircularDependency 指令间存在间接循环依赖
	ErrIndirectCircularDependency = errors.New("indirect circular dependency")

	// ErrInvalidDependency 依赖目标不在当前字段的活跃指令集内
	ErrInvalidDependency = errors.New("invalid dependency")

	// ErrOutputValidation 方法的输出校验失败（程序缺陷，永远致命）
	ErrOutputValidation = errors.New("output validation failed")
)

// Fatalf 构造带哨兵的致命配置错误
// 消息被压平为单行：内部换行和连续空白折叠为单个空格
func Fatalf(sentinel error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s", sentinel, FlattenMessage(msg))
}

// FlattenMessage 将多行消息压平为单行
func FlattenMessage(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
