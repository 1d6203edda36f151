package field

import (
	"sort"

	"katydid-common-validation/pkg/validation/core"
)

// Bag 指令袋：保持声明顺序的 指令名 -> 指令值 映射
// 字段与mixin的指令存储共用此结构，合并操作是两个Bag上的纯函数
type Bag struct {
	values map[string]core.Value
	order  []string
}

// NewBag 创建空指令袋
func NewBag() *Bag {
	return &Bag{values: make(map[string]core.Value)}
}

// BagFrom 从普通map解码指令袋（遍历顺序字典序，保证确定性）
func BagFrom(directives map[string]any) (*Bag, error) {
	b := NewBag()
	for _, name := range sortedKeys(directives) {
		v, err := core.FromAny(directives[name])
		if err != nil {
			return nil, core.Fatalf(core.ErrMalformedValue, "directive %q: %v", name, err)
		}
		b.Set(name, v)
	}
	return b, nil
}

// Set 写入指令值（覆盖语义，首次写入记录顺序）
func (b *Bag) Set(name string, v core.Value) {
	if _, ok := b.values[name]; !ok {
		b.order = append(b.order, name)
	}
	b.values[name] = v
}

// SetIfAbsent 仅当指令不存在时写入，返回是否写入
func (b *Bag) SetIfAbsent(name string, v core.Value) bool {
	if _, ok := b.values[name]; ok {
		return false
	}
	b.Set(name, v)
	return true
}

// Union 将值并入已有指令（multi指令的合并语义，去重保序）
func (b *Bag) Union(name string, v core.Value) {
	if existing, ok := b.values[name]; ok {
		b.values[name] = existing.Union(v)
		return
	}
	b.Set(name, v)
}

// Get 查询指令值
func (b *Bag) Get(name string) (core.Value, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Has 判断指令是否声明
func (b *Bag) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Del 删除指令
func (b *Bag) Del(name string) {
	if _, ok := b.values[name]; !ok {
		return
	}
	delete(b.values, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Names 返回指令名（声明顺序）
func (b *Bag) Names() []string {
	cp := make([]string, len(b.order))
	copy(cp, b.order)
	return cp
}

// Len 返回指令个数
func (b *Bag) Len() int {
	return len(b.values)
}

// Copy 返回指令袋的拷贝
func (b *Bag) Copy() *Bag {
	cp := NewBag()
	for _, name := range b.order {
		cp.Set(name, b.values[name])
	}
	return cp
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
