package engine

import (
	"katydid-common-validation/pkg/validation/core"
)

// 档案与方法执行器
// 档案是可恢复的业务验证；方法的输出校验失败是程序缺陷，走致命通道

// ValidateProfile 执行命名验证档案
// 档案通过上下文登记错误并返回布尔结果；未注册的档案名是致命错误
// 档案内允许再次调用 Validate/ValidateProfile（嵌套调用只追加错误）
func (c *Context) ValidateProfile(name string, args ...any) (bool, error) {
	p, registered := c.schema.profiles[name]
	if !registered {
		return false, core.Fatalf(core.ErrUnknownProfile, "profile %q is not registered", name)
	}

	c.depth++
	if c.depth == 1 {
		c.ResetErrors()
	}
	defer func() { c.depth-- }()

	passed := p(c, args...)
	return passed && !c.HasErrors(), nil
}

// ValidateMethod 执行自动验证方法
// 流程：输入验证（字段列表或档案）-> 通过才运行例程 -> 可选的输出验证
//
// 不对称性（刻意保留）：
//   - 输入验证失败是用户输入问题，返回 (false, nil)，错误留在上下文里
//   - 输出验证失败是程序缺陷，返回致命的 ErrOutputValidation，永不降级
func (c *Context) ValidateMethod(name string, args ...any) (bool, error) {
	m, registered := c.schema.methods[name]
	if !registered {
		return false, core.Fatalf(core.ErrUnknownMethod, "method %q is not registered", name)
	}

	// ========== 输入验证 ==========
	var passed bool
	var err error
	if m.InputProfile != "" {
		passed, err = c.ValidateProfile(m.InputProfile, args...)
	} else {
		passed, err = c.Validate(m.Input...)
	}
	if err != nil {
		return false, err
	}
	if !passed {
		return false, nil
	}

	// ========== 例程执行 ==========
	if err := m.Using(c, args...); err != nil {
		return false, err
	}

	// ========== 输出验证（致命） ==========
	if len(m.Output) == 0 && m.OutputProfile == "" {
		return true, nil
	}
	if m.OutputProfile != "" {
		passed, err = c.ValidateProfile(m.OutputProfile, args...)
	} else {
		passed, err = c.Validate(m.Output...)
	}
	if err != nil {
		return false, err
	}
	if !passed {
		return false, core.Fatalf(core.ErrOutputValidation,
			"method %q postcondition failed: %s", name, c.ErrorsToString(", "))
	}
	return true, nil
}
