package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/arrange/condition"
	"github.com/dhamidi/arrange/config"
)

// tree creates files under a fresh directory and returns its path.
func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func paths(root string, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(root, filepath.FromSlash(n))
	}
	return out
}

func handlers() []config.Handler {
	return config.Default().Handlers
}

func TestDiscoverDirectory(t *testing.T) {
	root := tree(t, map[string]string{
		".gitignore":        "generated/\n*.g.cs\n",
		"A.cs":              "",
		"sub/B.cs":          "",
		"bin/Debug/C.cs":    "",
		"generated/D.cs":    "",
		"E.g.cs":            "",
		"Form.Designer.cs":  "",
		"notes.txt":         "",
		".git/hooks/pre.cs": "",
	})

	files, err := Discover(root, handlers(), Options{})
	require.NoError(t, err)
	assert.Equal(t, paths(root, "A.cs", "sub/B.cs"), files)
}

func TestDiscoverExclusions(t *testing.T) {
	root := tree(t, map[string]string{
		"A.cs":          "",
		"sub/B.cs":      "",
		"sub/deep/C.cs": "",
	})

	files, err := Discover(root, handlers(), Options{Exclude: []string{"sub/**"}})
	require.NoError(t, err)
	assert.Equal(t, paths(root, "A.cs"), files)

	_, err = Discover(root, handlers(), Options{Exclude: []string{"[a-"}})
	assert.ErrorIs(t, err, condition.ErrInvalidArgument)
}

func TestDiscoverSingleFile(t *testing.T) {
	root := tree(t, map[string]string{
		"A.cs":             "",
		"README.md":        "",
		"Form.Designer.cs": "",
	})

	files, err := Discover(filepath.Join(root, "A.cs"), handlers(), Options{})
	require.NoError(t, err)
	assert.Equal(t, paths(root, "A.cs"), files)

	_, err = Discover(filepath.Join(root, "README.md"), handlers(), Options{})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Discover(filepath.Join(root, "Form.Designer.cs"), handlers(), Options{})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Discover(filepath.Join(root, "missing.cs"), handlers(), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscoverProjectWithCompileItems(t *testing.T) {
	root := tree(t, map[string]string{
		"App.csproj": `<Project ToolsVersion="4.0">
  <ItemGroup>
    <Compile Include="src\Program.cs" />
    <Compile Include="lib\*.cs;Extra.cs" />
  </ItemGroup>
</Project>`,
		"src/Program.cs": "",
		"src/Unused.cs":  "",
		"lib/One.cs":     "",
		"lib/Two.cs":     "",
		"lib/deep/No.cs": "",
		"Extra.cs":       "",
	})

	files, err := Discover(filepath.Join(root, "App.csproj"), handlers(), Options{})
	require.NoError(t, err)
	assert.Equal(t, paths(root, "Extra.cs", "lib/One.cs", "lib/Two.cs", "src/Program.cs"), files)
}

func TestDiscoverSDKProject(t *testing.T) {
	root := tree(t, map[string]string{
		"App.csproj": `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <Compile Remove="Old\**" />
  </ItemGroup>
</Project>`,
		"Program.cs":     "",
		"Models/User.cs": "",
		"Old/Legacy.cs":  "",
		"obj/Gen.cs":     "",
		"bin/Out.cs":     "",
	})

	files, err := Discover(filepath.Join(root, "App.csproj"), handlers(), Options{})
	require.NoError(t, err)
	assert.Equal(t, paths(root, "Models/User.cs", "Program.cs"), files)
}

func TestDiscoverSolution(t *testing.T) {
	root := tree(t, map[string]string{
		"All.sln": `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "App\App.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "Docs", "Docs", "{22222222-2222-2222-2222-222222222222}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Lib", "Lib\Lib.csproj", "{33333333-3333-3333-3333-333333333333}"
EndProject
`,
		"App/App.csproj": `<Project Sdk="Microsoft.NET.Sdk"></Project>`,
		"App/Program.cs": "",
		"Lib/Lib.csproj": `<Project Sdk="Microsoft.NET.Sdk"></Project>`,
		"Lib/Util.cs":    "",
	})

	files, err := Discover(filepath.Join(root, "All.sln"), handlers(), Options{})
	require.NoError(t, err)
	assert.Equal(t, paths(root, "App/Program.cs", "Lib/Util.cs"), files)
}
