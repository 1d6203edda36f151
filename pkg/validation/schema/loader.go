package schema

import (
	"sort"

	"katydid-common-validation/pkg/validation/engine"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// 声明文件加载器：字段/mixin/消息覆盖的第二种构建入口
// 支持 viper 能读的全部格式（YAML/JSON/TOML）
//
// 文档结构示例（YAML）：
//
//	settings:
//	  ignore_unknown: true
//	  report_unknown: true
//	mixins:
//	  basic:
//	    required: true
//	    filters: [trim, strip]
//	fields:
//	  login:
//	    mixin: basic
//	    min_length: 5
//	    max_length: 255
//	messages:
//	  login: "登录名不符合要求"
//
// 档案、方法和自定义验证函数无法声明在文件里，
// 加载器返回Builder由调用方继续注册后Build

// Document 加载结果：可继续补充注册的Builder + 文件声明的上下文选项
type Document struct {
	Builder *engine.Builder
	Options []engine.ContextOption
}

// LoadFile 从声明文件构建Document
func LoadFile(path string) (*Document, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return Load(v)
}

// Load 从已就绪的viper实例构建Document
// 文件里的map无序，字段与mixin按名称字典序声明，保证错误输出顺序可复现
func Load(v *viper.Viper) (*Document, error) {
	b := engine.NewBuilder()

	for _, name := range sortedMapKeys(v.GetStringMap("mixins")) {
		directives := cast.ToStringMap(v.Get("mixins." + name))
		b.Mixin(name, directives)
	}

	for _, name := range sortedMapKeys(v.GetStringMap("fields")) {
		directives := cast.ToStringMap(v.Get("fields." + name))
		b.Field(name, directives)
	}

	for fieldName, msg := range v.GetStringMapString("messages") {
		b.Message(fieldName, msg)
	}

	var opts []engine.ContextOption
	if v.IsSet("settings.ignore_unknown") {
		opts = append(opts, engine.WithIgnoreUnknown(v.GetBool("settings.ignore_unknown")))
	}
	if v.IsSet("settings.report_unknown") {
		opts = append(opts, engine.WithReportUnknown(v.GetBool("settings.report_unknown")))
	}

	// Builder错误通常推迟到Build统一暴露，这里先行暴露声明级问题
	if err := b.Err(); err != nil {
		return nil, err
	}

	return &Document{Builder: b, Options: opts}, nil
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
