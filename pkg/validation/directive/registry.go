package directive

import (
	"sync"

	"katydid-common-validation/pkg/validation/core"
)

// Registry 指令注册表
// 设计目标：
//   - 先注册者胜：重复注册同名指令是无操作，多来源注册时行为确定
//   - 注册后描述符不可变，读路径只加读锁
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*core.Descriptor
	order       []string
}

// New 创建加载了内置指令目录的注册表
func New() *Registry {
	r := NewEmpty()
	registerBuiltins(r)
	return r
}

// NewEmpty 创建空注册表（测试和特殊定制场景）
func NewEmpty() *Registry {
	return &Registry{descriptors: make(map[string]*core.Descriptor)}
}

// Register 注册指令描述符
// 同名指令已存在时静默跳过（先注册者胜），描述符不完整时返回致命错误
func (r *Registry) Register(d *core.Descriptor) error {
	if d == nil {
		return core.Fatalf(core.ErrBadDescriptor, "nil descriptor")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Name]; exists {
		return nil // 先注册者胜
	}
	r.descriptors[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get 查询指令描述符
func (r *Registry) Get(name string) (*core.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	return d, ok
}

// Has 判断指令是否已注册
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names 返回所有指令名（注册顺序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]string, len(r.order))
	copy(cp, r.order)
	return cp
}

// Len 返回已注册指令数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}
