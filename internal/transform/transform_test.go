package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/frontend"
	"github.com/vk/fortloom/internal/task"
)

func TestForMode(t *testing.T) {
	for mode, want := range map[string]Transformation{
		"idem":           Identity{},
		"roles":          AppendRole{},
		"strip-comments": StripComments{},
	} {
		tr, err := ForMode(mode)
		require.NoError(t, err)
		assert.Equal(t, want, tr)
	}

	_, err := ForMode("bogus")
	assert.ErrorContains(t, err, "bogus")
}

func TestAppendRole(t *testing.T) {
	routine := &frontend.Routine{Name: "compute_l1"}
	tsk := taskWithOptions(t, config.Options{Role: "driver"})

	require.NoError(t, AppendRole{}.Apply(context.Background(), routine, tsk, nil))
	assert.Equal(t, "compute_l1_driver", routine.Name)
}

func TestAppendRole_EmptyRoleLeavesName(t *testing.T) {
	routine := &frontend.Routine{Name: "compute_l1"}
	tsk := taskWithOptions(t, config.Options{})

	require.NoError(t, AppendRole{}.Apply(context.Background(), routine, tsk, nil))
	assert.Equal(t, "compute_l1", routine.Name)
}

func TestStripComments(t *testing.T) {
	routine := &frontend.Routine{
		Name: "kernel",
		Body: []frontend.Node{
			&frontend.Comment{Text: "top"},
			&frontend.Loop{
				Control: "do i = 1, n",
				Body: []frontend.Node{
					&frontend.Comment{Text: "inner"},
					&frontend.Assignment{Target: "x(i)", Expr: "0.0"},
				},
			},
		},
		Members: []*frontend.Routine{
			{Name: "helper", Body: []frontend.Node{&frontend.Comment{Text: "member"}}},
		},
	}

	require.NoError(t, StripComments{}.Apply(context.Background(), routine, nil, nil))

	assert.Empty(t, frontend.FindNodes(frontend.TagComment, routine.Body))
	assert.Len(t, frontend.FindNodes(frontend.TagAssignment, routine.Body), 1)
	assert.Empty(t, routine.Members[0].Body)
}

// taskWithOptions builds a minimal missing-source task carrying the given
// options, enough for transformations that only read Options and Key.
func taskWithOptions(t *testing.T, opts config.Options) *task.Task {
	t.Helper()
	tsk, err := task.New(context.Background(), "compute_l1", "", opts, frontend.Options{})
	require.NoError(t, err)
	return tsk
}
