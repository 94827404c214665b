package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestIndex_ResolveDefinitions(t *testing.T) {
	root := writeTree(t, map[string]string{
		"module/kernel_mod.f90": `
module kernel_mod
contains
  subroutine kernelA(a)
    real :: a(:)
  end subroutine kernelA
end module kernel_mod
`,
		"source/compute_l1.F90": `
subroutine compute_l1(a)
  real :: a(:)
  call compute_l2(a)
end subroutine compute_l1
`,
	})

	ix, err := NewIndex(context.Background(), []string{root}, ScanConfig{})
	require.NoError(t, err)

	// Module, contained subroutine, and free subroutine all resolve, and
	// lookups are case-insensitive.
	for _, name := range []string{"kernel_mod", "kernelA", "KERNELA", "compute_l1"} {
		path, err := ix.Resolve(name)
		require.NoError(t, err, "resolve %s", name)
		assert.NotEmpty(t, path)
	}

	_, err = ix.Resolve("missing_routine")
	require.Error(t, err)
	var unres *UnresolvedError
	require.ErrorAs(t, err, &unres)
	assert.Equal(t, "missing_routine", unres.Name)
}

func TestIndex_FirstRegistrationWins(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/dup.f90": "subroutine dup(x)\nend subroutine dup\n",
		"b/dup.f90": "subroutine dup(y)\nend subroutine dup\n",
	})

	ix, err := NewIndex(context.Background(), []string{root}, ScanConfig{})
	require.NoError(t, err)

	path, err := ix.Resolve("dup")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "dup.f90"), path)
}

func TestIndex_HonoursGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":        "generated/\n",
		"generated/gen.f90": "subroutine generated_sub(x)\nend subroutine generated_sub\n",
		"real.f90":          "subroutine real_sub(x)\nend subroutine real_sub\n",
	})

	ix, err := NewIndex(context.Background(), []string{root}, ScanConfig{})
	require.NoError(t, err)

	_, err = ix.Resolve("real_sub")
	require.NoError(t, err)
	_, err = ix.Resolve("generated_sub")
	require.Error(t, err)
}

func TestIndex_ExtensionVariants(t *testing.T) {
	root := writeTree(t, map[string]string{
		"lower.f90": "subroutine lower_sub(x)\nend subroutine lower_sub\n",
		"upper.F90": "subroutine upper_sub(x)\nend subroutine upper_sub\n",
		"skip.c":    "int main(void) { return 0; }\n",
	})

	ix, err := NewIndex(context.Background(), []string{root}, ScanConfig{})
	require.NoError(t, err)

	assert.Len(t, ix.Files(), 2)
	_, err = ix.Resolve("lower_sub")
	require.NoError(t, err)
	_, err = ix.Resolve("upper_sub")
	require.NoError(t, err)
}

func TestFile_ReferencedSymbols(t *testing.T) {
	root := writeTree(t, map[string]string{
		"driver.f90": `
subroutine driver(a)
  use header_mod, only: header_type
  use parkind1
#include "kernel.intfb.h"
  real :: a(:)
end subroutine driver
`,
	})

	ix, err := NewIndex(context.Background(), []string{root}, ScanConfig{})
	require.NoError(t, err)

	file, ok := ix.Lookup("driver")
	require.True(t, ok)

	uses, err := file.Uses()
	require.NoError(t, err)
	assert.Equal(t, []string{"header_mod", "parkind1"}, uses)

	includes, err := file.Includes()
	require.NoError(t, err)
	assert.Equal(t, []string{"kernel.intfb.h"}, includes)
}

func TestFile_SourceToleratesArbitraryBytes(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "latin.f90")
	// 0xE9 is not valid UTF-8 on its own; the scan must carry it through.
	content := append([]byte("! caf"), 0xE9, '\n')
	content = append(content, []byte("subroutine latin_sub(x)\nend subroutine latin_sub\n")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	ix, err := NewIndex(context.Background(), []string{root}, ScanConfig{})
	require.NoError(t, err)

	_, err = ix.Resolve("latin_sub")
	require.NoError(t, err)
}
