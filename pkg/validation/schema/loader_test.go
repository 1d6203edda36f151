package schema

import (
	"os"
	"path/filepath"
	"testing"

	"katydid-common-validation/pkg/validation/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const declYAML = `
settings:
  ignore_unknown: true
  report_unknown: true
mixins:
  basic:
    required: true
    filters: [trim]
fields:
  login:
    mixin: basic
    min_length: 2
  password:
    mixin: basic
    min_length: 5
    min_symbols: 1
messages:
  password: "password does not meet policy"
`

func writeDecl(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	doc, err := LoadFile(writeDecl(t, declYAML))
	require.NoError(t, err)
	require.NotNil(t, doc.Builder)
	assert.Len(t, doc.Options, 2)

	s, err := doc.Builder.Build()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"login", "password"}, s.FieldNames())

	ctx := s.NewContext(doc.Options...)
	require.NoError(t, ctx.AddParam("login", "  admin  "))
	require.NoError(t, ctx.AddParam("password", "s3cret!"))

	ok, err := ctx.Validate()
	require.NoError(t, err)
	assert.True(t, ok)

	// mixin的trim过滤器生效
	v, _ := ctx.Param("login")
	assert.Equal(t, "admin", v.Scalar())
}

// 文件声明的消息覆盖走与代码声明相同的替换路径
func TestLoadFile_MessageOverride(t *testing.T) {
	doc, err := LoadFile(writeDecl(t, declYAML))
	require.NoError(t, err)

	s, err := doc.Builder.Build()
	require.NoError(t, err)

	ctx := s.NewContext(doc.Options...)
	require.NoError(t, ctx.AddParam("login", "admin"))
	require.NoError(t, ctx.AddParam("password", "bad"))

	ok, err := ctx.Validate()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"password does not meet policy"}, ctx.Errors())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// 加载器在返回前暴露声明级错误（如非法字段名）
func TestLoad_DeclarationError(t *testing.T) {
	_, err := LoadFile(writeDecl(t, `
fields:
  "9bad":
    required: true
`))
	assert.Error(t, err)
}

// 文件无法声明的部分（档案等）由调用方在Builder上继续注册
func TestLoad_BuilderExtension(t *testing.T) {
	doc, err := LoadFile(writeDecl(t, declYAML))
	require.NoError(t, err)

	s, err := doc.Builder.
		Profile("always", func(ctx *engine.Context, args ...any) bool { return true }).
		Build()
	require.NoError(t, err)
	assert.True(t, s.HasProfile("always"))
}
