package core

// Field 指令验证函数所见的字段视图
// 设计目标：
//   - 验证函数通过追加错误字符串表达失败，布尔返回值仅作参考
//   - 验证函数不直接持有字段结构体，便于字段实现独立演进
type Field interface {
	// Name 字段名（克隆字段形如 "phone:0"）
	Name() string
	// Label 人类可读标签（label指令值，缺省为规整后的字段名）
	Label() string
	// Directive 查询字段上的指令值
	Directive(name string) (Value, bool)
	// AddError 追加一条字段级错误（按字符串精确去重）
	AddError(msg string) bool
	// Errors 字段级错误快照（按插入顺序）
	Errors() []string
}

// Scope 指令验证函数所见的验证上下文视图
// 跨字段指令（matches、depends_on等）通过它访问其他参数
type Scope interface {
	// Param 按名称查询参数值
	Param(name string) (Value, bool)
	// FieldByName 按名称查询其他字段
	FieldByName(name string) (Field, bool)
	// Stash 读取上下文携带的自由数据（如数据库句柄）
	Stash(key string) any
	// ReportError 追加一条类级错误
	ReportError(msg string) bool
}

// ValidateFunc 指令验证函数
// 参数：
//
//	directive: 字段上声明的指令值（如 min_length 的 "5"）
//	param: 字段当前解析出的参数值
//	field: 字段视图，失败时向其追加错误
//	scope: 上下文视图
//
// 返回：是否通过（仅作参考，以实际追加的错误为准）
type ValidateFunc func(directive Value, param Value, field Field, scope Scope) bool

// FilterFunc 过滤函数：单值进单值出的纯转换
type FilterFunc func(string) string

// Descriptor 指令描述符
// 注册进指令注册表的唯一条目结构，注册后不可变
type Descriptor struct {
	// Name 指令名，注册表内唯一
	Name string

	// Mixin 指令是否可出现在mixin模板上
	Mixin bool

	// Field 指令是否可出现在字段上
	Field bool

	// Multi 重复声明时是否合并为去重列表而非覆盖
	// mixin合并语义依赖此标志：multi指令做并集，非multi指令字段值优先
	Multi bool

	// Validator 验证函数，nil表示该指令不参与validate事件（纯元数据指令）
	Validator ValidateFunc

	// Message 默认错误消息模板，含一个 %s 占位符（字段标签）
	Message string

	// Dependencies 生命周期事件 -> 必须先执行的指令名列表
	Dependencies map[Event][]string
}

// DependsOn 返回指令在指定事件下的依赖列表
func (d *Descriptor) DependsOn(event Event) []string {
	if d == nil || d.Dependencies == nil {
		return nil
	}
	return d.Dependencies[event]
}

// SubscribesTo 判断指令是否参与指定事件
// validate 事件由 Validator 函数决定，其余事件由依赖声明决定
func (d *Descriptor) SubscribesTo(event Event) bool {
	if d == nil {
		return false
	}
	if event == EventValidate {
		return d.Validator != nil
	}
	_, ok := d.Dependencies[event]
	return ok
}

// Validate 检查描述符自身的完整性
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return Fatalf(ErrBadDescriptor, "descriptor requires a name")
	}
	if !d.Mixin && !d.Field {
		return Fatalf(ErrBadDescriptor, "directive %q applies to neither mixins nor fields", d.Name)
	}
	return nil
}
