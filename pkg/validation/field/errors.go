package field

import "strings"

// ErrorList 有序去重的错误字符串集合
// 设计目标：
//   - 插入保持顺序，按字符串精确相等静默去重
//   - 字段级和类级错误集合共用同一实现
type ErrorList struct {
	items []string
	seen  map[string]struct{}
}

// NewErrorList 创建空错误集合
func NewErrorList() *ErrorList {
	return &ErrorList{seen: make(map[string]struct{})}
}

// Add 追加一条错误；重复字符串被丢弃，返回是否真正插入
func (e *ErrorList) Add(msg string) bool {
	if e.seen == nil {
		e.seen = make(map[string]struct{})
	}
	if _, dup := e.seen[msg]; dup {
		return false
	}
	e.seen[msg] = struct{}{}
	e.items = append(e.items, msg)
	return true
}

// AddAll 批量追加
func (e *ErrorList) AddAll(msgs []string) {
	for _, m := range msgs {
		e.Add(m)
	}
}

// Has 判断错误是否已存在
func (e *ErrorList) Has(msg string) bool {
	_, ok := e.seen[msg]
	return ok
}

// All 返回错误快照（按插入顺序）
func (e *ErrorList) All() []string {
	cp := make([]string, len(e.items))
	copy(cp, e.items)
	return cp
}

// Count 返回错误条数
func (e *ErrorList) Count() int {
	return len(e.items)
}

// Empty 判断集合是否为空
func (e *ErrorList) Empty() bool {
	return len(e.items) == 0
}

// Clear 清空集合
func (e *ErrorList) Clear() {
	e.items = nil
	e.seen = make(map[string]struct{})
}

// Join 用分隔符拼接所有错误
func (e *ErrorList) Join(delimiter string) string {
	return strings.Join(e.items, delimiter)
}
