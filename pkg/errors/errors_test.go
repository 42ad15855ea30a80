package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CapturesCaller(t *testing.T) {
	err := New(ErrorTypeSchema, "bad row")
	require.NotEmpty(t, err.Stack)
	assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestNew_CapturesCaller"), err.Stack[0].Function)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeFile, "open"))

	inner := New(ErrorTypeNotFound, "column CBSA09")
	outer := Wrap(inner, ErrorTypeData, "aggregate")
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Same(t, inner, outer.Unwrap())

	plain := Wrap(fmt.Errorf("disk"), ErrorTypeFile, "read")
	require.NotEmpty(t, plain.Stack)
	assert.True(t, strings.HasSuffix(plain.Stack[0].Function, "TestWrap"))
}

func TestIsType(t *testing.T) {
	err := Wrap(Newf(ErrorTypeEmptyGroup, "group %d", 1), ErrorTypeData, "aggregate")
	assert.True(t, IsType(err, ErrorTypeData))
	assert.True(t, IsEmptyGroup(err))
	assert.False(t, IsSchema(err))
	assert.False(t, IsType(nil, ErrorTypeData))
}
