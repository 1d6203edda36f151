package params

import (
	"sort"
	"strconv"

	"katydid-common-validation/pkg/validation/core"

	"github.com/spf13/cast"
)

// Params 参数仓库：扁平的 键 -> 标量/字符串列表 映射
// 设计目标：
//   - 参数值永远不是嵌套map，嵌套结构必须先扁平化为带分隔符的键
//   - 分隔符约定：map路径用 "."（a.b），数组下标用 ":"（a:0）
//   - 非并发安全：一次验证调用期间由调用方独占持有
type Params struct {
	values map[string]core.Value
}

// New 创建空的参数仓库
func New() *Params {
	return &Params{values: make(map[string]core.Value)}
}

// Add 添加一个参数
// 接受：字符串、数字、布尔（转为标量）、字符串切片、
// 以及仅一层深的 map[string]any（键路径展开为 key.sub）
// map 中再嵌套 map 视为非法形状，返回 ErrMalformedParameter
func (p *Params) Add(key string, value any) error {
	if key == "" {
		return core.Fatalf(core.ErrMalformedParameter, "parameter key cannot be empty")
	}

	switch tv := value.(type) {
	case map[string]any:
		// 一层键路径展开是合法的，更深的嵌套必须先走 FlattenTree
		for sub, sv := range tv {
			switch sv.(type) {
			case map[string]any, map[string]string:
				return core.Fatalf(core.ErrMalformedParameter,
					"parameter %q contains a nested map under %q; flatten it first", key, sub)
			}
			v, err := core.FromAny(sv)
			if err != nil {
				return core.Fatalf(core.ErrMalformedParameter, "parameter %s.%s: %v", key, sub, err)
			}
			p.values[key+"."+sub] = v
		}
		return nil
	default:
		v, err := core.FromAny(value)
		if err != nil {
			return core.Fatalf(core.ErrMalformedParameter, "parameter %s: %v", key, err)
		}
		if v.Kind() == core.KindCallback {
			return core.Fatalf(core.ErrMalformedParameter, "parameter %s: callbacks are not parameter values", key)
		}
		p.values[key] = v
		return nil
	}
}

// Set 直接写入已解码的参数值
func (p *Params) Set(key string, value core.Value) {
	p.values[key] = value
}

// Get 按键查询参数值
func (p *Params) Get(key string) (core.Value, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has 判断键是否存在
func (p *Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Del 删除一个参数
func (p *Params) Del(key string) {
	delete(p.values, key)
}

// Clear 清空所有参数
func (p *Params) Clear() {
	p.values = make(map[string]core.Value)
}

// Len 返回参数个数
func (p *Params) Len() int {
	return len(p.values)
}

// Keys 返回所有参数键（字典序，保证遍历确定性）
func (p *Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Copy 返回参数仓库的浅拷贝（Value 本身不可变，浅拷贝即安全）
func (p *Params) Copy() *Params {
	cp := New()
	for k, v := range p.values {
		cp.values[k] = v
	}
	return cp
}

// Flatten 返回完全扁平的 键 -> 标量 视图
// 列表值被拆为带下标的键：{"phone": [a, b]} -> {"phone:0": a, "phone:1": b}
// 验证引擎的数组克隆检测基于这个视图
func (p *Params) Flatten() map[string]string {
	flat := make(map[string]string, len(p.values))
	for k, v := range p.values {
		switch v.Kind() {
		case core.KindList:
			for i, item := range v.List() {
				flat[k+":"+strconv.Itoa(i)] = item
			}
		default:
			flat[k] = v.Scalar()
		}
	}
	return flat
}

// FromTree 从嵌套树加载参数（先扁平化再逐键写入）
func (p *Params) FromTree(tree map[string]any) error {
	flat, err := FlattenTree(tree)
	if err != nil {
		return err
	}
	for k, v := range flat {
		p.values[k] = core.Scalar(cast.ToString(v))
	}
	return nil
}

// Tree 重建嵌套树表示（Flatten 的逆操作）
func (p *Params) Tree() map[string]any {
	return UnflattenTree(p.Flatten())
}
