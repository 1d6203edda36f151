package field

import (
	"katydid-common-validation/pkg/validation/core"
)

// Mixin 可复用的指令模板
// 纯模板：永远不直接对参数验证，只在 normalize 时并入字段
type Mixin struct {
	name       string
	directives *Bag
}

// NewMixin 创建mixin模板（名称规则与字段一致）
func NewMixin(name string, directives *Bag) (*Mixin, error) {
	if !ValidName(name) {
		return nil, core.Fatalf(core.ErrMalformedFieldName, "mixin name %q is not valid", name)
	}
	if directives == nil {
		directives = NewBag()
	}
	return &Mixin{name: name, directives: directives}, nil
}

// Name mixin名称
func (m *Mixin) Name() string { return m.name }

// Directives 返回指令模板袋
func (m *Mixin) Directives() *Bag { return m.directives }
