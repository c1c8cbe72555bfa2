package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilderMetadata(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("backend returned 503")
	err := New(base).
		Component("api").
		Category(CategoryNetwork).
		Context("endpoint", "/api/notifications").
		Build()

	assert.Equal(t, "backend returned 503", err.Error())
	assert.Equal(t, "api", err.GetComponent())
	assert.Equal(t, string(CategoryNetwork), err.GetCategory())
	assert.Equal(t, "/api/notifications", err.GetContext()["endpoint"])
	require.ErrorIs(t, err, base)
}

func TestErrorBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := Newf("something broke").Build()

	assert.Equal(t, ComponentUnknown, err.GetComponent())
	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
	assert.Nil(t, err.GetContext())
	assert.False(t, err.Timestamp.IsZero())
}

func TestEnhancedErrorIsMatchesCategory(t *testing.T) {
	t.Parallel()

	a := Newf("fetch failed").Category(CategoryNetwork).Build()
	b := Newf("different message").Category(CategoryNetwork).Build()
	c := Newf("bad input").Category(CategoryValidation).Build()

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestEnhancedErrorAs(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("outer: %w", Newf("inner").Category(CategoryHTTP).Build())

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, string(CategoryHTTP), ee.GetCategory())
}
