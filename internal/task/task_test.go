package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/frontend"
)

const driverSource = `
module driver_mod
contains
  subroutine driverA(n, field)
    integer, intent(in) :: n
    real :: field(n)
    call kernelA(n, field)
    call dr_hook('driverA', 0)
    call KERNELA(n, field)
    call local_fill(field)
  contains
    subroutine local_fill(f)
      real :: f(:)
      f = 0.0
    end subroutine local_fill
  end subroutine driverA
end module driver_mod
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew_ParsesRoutine(t *testing.T) {
	path := writeSource(t, "driver_mod.f90", driverSource)

	tsk, err := New(context.Background(), "DriverA", path, config.Options{}, frontend.Options{})
	require.NoError(t, err)

	assert.Equal(t, "DriverA", tsk.Name())
	assert.Equal(t, "drivera", tsk.Key())
	assert.Equal(t, OutcomeParsed, tsk.Outcome)
	assert.False(t, tsk.Failed())
	require.NotNil(t, tsk.Routine)
	assert.Equal(t, "driverA", tsk.Routine.Name)
}

func TestChildren_DedupedAndMembersExcluded(t *testing.T) {
	path := writeSource(t, "driver_mod.f90", driverSource)

	tsk, err := New(context.Background(), "driverA", path, config.Options{}, frontend.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"kernela", "dr_hook"}, tsk.Children())
}

func TestNew_MissingSource(t *testing.T) {
	for name, path := range map[string]string{
		"unresolved": "",
		"vanished":   filepath.Join(t.TempDir(), "gone.f90"),
	} {
		t.Run(name, func(t *testing.T) {
			tsk, err := New(context.Background(), "phantom", path, config.Options{}, frontend.Options{})
			require.NoError(t, err)
			assert.Equal(t, OutcomeMissing, tsk.Outcome)
			assert.True(t, tsk.Failed())
			assert.Nil(t, tsk.Routine)
		})
	}
}

func TestNew_ParseFailureRecorded(t *testing.T) {
	path := writeSource(t, "broken.f90", "subroutine broken(x)\n  integer :: x\n")

	tsk, err := New(context.Background(), "broken", path, config.Options{}, frontend.Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeParseFailed, tsk.Outcome)
	assert.True(t, tsk.Failed())
	assert.Error(t, tsk.Err)
}

func TestNew_ParseFailureStrict(t *testing.T) {
	path := writeSource(t, "broken.f90", "subroutine broken(x)\n  integer :: x\n")

	_, err := New(context.Background(), "broken", path, config.Options{Strict: true}, frontend.Options{})
	assert.Error(t, err)
}

func TestBlacklistedAndIgnored(t *testing.T) {
	path := writeSource(t, "driver_mod.f90", driverSource)

	opts := config.Options{
		Blacklist: []string{"ABOR1"},
		Ignore:    []string{"ext_kernel"},
	}
	tsk, err := New(context.Background(), "driverA", path, opts, frontend.Options{})
	require.NoError(t, err)

	assert.True(t, tsk.Blacklisted("abor1"))
	assert.True(t, tsk.Blacklisted("Abor1"))
	assert.False(t, tsk.Blacklisted("kernela"))
	assert.True(t, tsk.Ignored("EXT_KERNEL"))
	assert.False(t, tsk.Ignored("dr_hook"))
}

func TestEnrich_AttachesSignatures(t *testing.T) {
	path := writeSource(t, "driver_mod.f90", driverSource)

	tsk, err := New(context.Background(), "driverA", path, config.Options{}, frontend.Options{})
	require.NoError(t, err)

	kernel := &frontend.Routine{
		Name: "kernelA",
		Arguments: []*frontend.Variable{
			{Name: "n", TypeName: "integer"},
			{Name: "field", TypeName: "real"},
		},
	}
	tsk.Enrich([]*frontend.Routine{kernel})

	calls := frontend.FindCalls(tsk.Routine.Body)
	require.NotEmpty(t, calls)
	var enriched, unknown int
	for _, call := range calls {
		switch call.Name {
		case "kernelA", "KERNELA":
			require.NotNil(t, call.Signature)
			assert.Len(t, call.Signature.Parameters, 2)
			enriched++
		case "dr_hook":
			assert.Nil(t, call.Signature)
			unknown++
		}
	}
	assert.Equal(t, 2, enriched)
	assert.Equal(t, 1, unknown)
}
