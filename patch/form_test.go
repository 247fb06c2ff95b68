package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/voiceagent/types"
)

func TestFormPathsCoverClassifierFields(t *testing.T) {
	t.Parallel()
	assert.ElementsMatch(t, []string{"/name", "/email", "/message", "/isConfirmed"}, FormPaths)
}

func TestMergeFormDataKeepsAbsentFields(t *testing.T) {
	t.Parallel()

	current := types.ContactForm{Name: "Alex", Email: "alex@example.com"}
	merged, err := MergeFormData(current, &types.FormData{Message: types.Ptr("Let's build something")})
	require.NoError(t, err)

	assert.Equal(t, "Alex", merged.Name)
	assert.Equal(t, "alex@example.com", merged.Email)
	assert.Equal(t, "Let's build something", merged.Message)
}

func TestMergeFormDataIgnoresEmptyValues(t *testing.T) {
	t.Parallel()

	current := types.ContactForm{Name: "Alex"}
	merged, err := MergeFormData(current, &types.FormData{Name: types.Ptr(""), Email: types.Ptr("a@b.co")})
	require.NoError(t, err)

	assert.Equal(t, "Alex", merged.Name)
	assert.Equal(t, "a@b.co", merged.Email)
}

func TestMergeFormDataOverwritesProvidedFields(t *testing.T) {
	t.Parallel()

	current := types.ContactForm{Name: "Alex"}
	merged, err := MergeFormData(current, &types.FormData{Name: types.Ptr("Alexandra"), IsConfirmed: types.Ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, "Alexandra", merged.Name)
	assert.True(t, merged.IsConfirmed)
	assert.False(t, merged.IsSubmitted)
}

func TestMergeFormDataRevokesConfirmation(t *testing.T) {
	t.Parallel()

	current := types.ContactForm{Name: "Alex", Email: "a@b.co", Message: "hi", IsConfirmed: true}
	merged, err := MergeFormData(current, &types.FormData{IsConfirmed: types.Ptr(false)})
	require.NoError(t, err)

	assert.False(t, merged.IsConfirmed)
	assert.Equal(t, "Alex", merged.Name)
	assert.Equal(t, "a@b.co", merged.Email)
	assert.Equal(t, "hi", merged.Message)
}

func TestMergeFormDataNil(t *testing.T) {
	t.Parallel()

	current := types.ContactForm{Name: "Alex"}
	merged, err := MergeFormData(current, nil)
	require.NoError(t, err)
	assert.Equal(t, current, merged)
}

func TestFilterAllowedDropsSubmissionFlags(t *testing.T) {
	t.Parallel()

	ops := []Operation{
		{Op: OperationReplace, Path: "/name", Value: "Alex"},
		{Op: OperationReplace, Path: "/isSubmitted", Value: true},
	}
	kept, dropped := FilterAllowed(ops, AllowedSet(FormPaths))
	require.Len(t, kept, 1)
	require.Len(t, dropped, 1)
	assert.Equal(t, "/isSubmitted", dropped[0].Path)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	ops := Normalize([]byte(`{"name":"a","tags":["x"]}`), []Operation{
		{Op: OperationReplace, Path: "/email", Value: "x"},
		{Op: OperationReplace, Path: "/name", Value: "b"},
		{Op: OperationRemove, Path: "/missing"},
		{Op: OperationRemove, Path: "/tags/0"},
	})
	require.Len(t, ops, 3)
	assert.Equal(t, OperationAdd, ops[0].Op)
	assert.Equal(t, OperationReplace, ops[1].Op)
	assert.Equal(t, "/tags/0", ops[2].Path)
}

func TestApply(t *testing.T) {
	t.Parallel()

	form := types.ContactForm{Name: "Alex"}
	out, err := Apply(form, []Operation{
		{Op: OperationReplace, Path: "/email", Value: "alex@example.com"},
		{Op: OperationReplace, Path: "/name", Value: "Alexandra"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", out.Name)
	assert.Equal(t, "alex@example.com", out.Email)

	_, err = Apply(form, []Operation{{Op: OperationAdd, Path: "/name", Value: 42}})
	assert.Error(t, err)
}
