package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoice_Set(t *testing.T) {
	actual := choice{max: 3}
	assert.True(t, actual.IsZero())

	require.NoError(t, actual.Set(" 2 "))
	assert.Equal(t, 2, actual.value)
	assert.False(t, actual.IsZero())

	assert.EqualError(t, actual.Set("0"), "illegal-choice: 0")
	assert.EqualError(t, actual.Set("4"), "illegal-choice: 4")
	assert.EqualError(t, actual.Set("two"), "illegal-choice: two")
	assert.Equal(t, 2, actual.value)
}

func TestRequestChoiceFromTerminal_noOptions(t *testing.T) {
	_, err := RequestChoiceFromTerminal(nil, "port")
	assert.Error(t, err)
}

type someError struct {
	code int
}

func (this *someError) Error() string {
	return fmt.Sprintf("some error %d", this.code)
}

func TestAsError(t *testing.T) {
	given := fmt.Errorf("wrapped: %w", &someError{101})

	actual, ok := AsError[*someError](given)
	require.True(t, ok)
	assert.Equal(t, 101, actual.code)

	_, ok = AsError[*someError](errors.New("other"))
	assert.False(t, ok)
}
