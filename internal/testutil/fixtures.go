// Package testutil provides the shared Fortran fixture trees the scheduler
// and app tests run against.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree materializes files (relative path -> content) under a fresh
// temp directory and returns its root.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// ProjA is a small but complete call tree:
//
//	driverA -> kernelA -> compute_l1 -> compute_l2
//	                   -> another_l1 -> another_l2
//
// kernelA additionally calls dr_hook, which belongs to the built-in dead
// list. compute_l2 carries a contained member routine, and header_mod
// defines a derived type used across the tree.
func ProjA() map[string]string {
	return map[string]string{
		"module/header_mod.f90": `
module header_mod
  implicit none
  type header_type
    integer :: rows
    integer :: cols
    real, allocatable :: data(:, :)
  end type header_type
end module header_mod
`,
		"module/driverA_mod.f90": `
module driverA_mod
  use header_mod
  implicit none
contains
  subroutine driverA(n, field)
    integer, intent(in) :: n
    real, intent(inout) :: field(n)
    type(header_type) :: hdr
    hdr%rows = n
    call kernelA(n, field, hdr)
  end subroutine driverA
end module driverA_mod
`,
		"module/kernelA_mod.F90": `
module kernelA_mod
  use header_mod
  implicit none
contains
  subroutine kernelA(n, field, hdr)
    integer, intent(in) :: n
    real, intent(inout) :: field(n)
    type(header_type), intent(in) :: hdr
    call dr_hook('kernelA', 0)
    call compute_l1(n, field)
    call another_l1(n, field)
    call dr_hook('kernelA', 1)
  end subroutine kernelA
end module kernelA_mod
`,
		"kernels/compute_l1_mod.f90": `
module compute_l1_mod
  implicit none
contains
  subroutine compute_l1(n, field)
    integer, intent(in) :: n
    real, intent(inout) :: field(n)
    integer :: i
    do i = 1, n
      call compute_l2(field(i))
    end do
  end subroutine compute_l1
end module compute_l1_mod
`,
		"kernels/compute_l2.f90": `
subroutine compute_l2(v)
  real, intent(inout) :: v
  ! zero before accumulating
  call local_fill(v)
contains
  subroutine local_fill(x)
    real, intent(inout) :: x
    x = 0.0
  end subroutine local_fill
end subroutine compute_l2
`,
		"kernels/another_l1_mod.f90": `
module another_l1_mod
  implicit none
contains
  subroutine another_l1(n, field)
    integer, intent(in) :: n
    real, intent(inout) :: field(n)
    call another_l2(field(1))
  end subroutine another_l1
end module another_l1_mod
`,
		"kernels/another_l2.f90": `
subroutine another_l2(v)
  real, intent(inout) :: v
  v = v + 1.0
end subroutine another_l2
`,
	}
}

// ProjB holds a second driver that reuses compute_l1 from projA and calls
// into the external ext_driver tree, which tests typically mark as ignored.
func ProjB() map[string]string {
	return map[string]string{
		"module/driverB_mod.f90": `
module driverB_mod
  implicit none
contains
  subroutine driverB(n, field)
    integer, intent(in) :: n
    real, intent(inout) :: field(n)
    call kernelB(n, field)
  end subroutine driverB
end module driverB_mod
`,
		"module/kernelB_mod.f90": `
module kernelB_mod
  implicit none
contains
  subroutine kernelB(n, field)
    integer, intent(in) :: n
    real, intent(inout) :: field(n)
    call compute_l1(n, field)
    call ext_driver(n, field)
  end subroutine kernelB
end module kernelB_mod
`,
		"external/ext_driver_mod.f90": `
module ext_driver_mod
  implicit none
contains
  subroutine ext_driver(n, field)
    integer, intent(in) :: n
    real, intent(inout) :: field(n)
    call ext_kernel(n, field)
  end subroutine ext_driver
end module ext_driver_mod
`,
		"external/ext_kernel.f90": `
subroutine ext_kernel(n, field)
  integer, intent(in) :: n
  real, intent(inout) :: field(n)
  field = field * 2.0
end subroutine ext_kernel
`,
	}
}
