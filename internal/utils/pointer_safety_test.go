package utils_test

import (
	"testing"

	"github.com/jrsteele09/imvestor-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestPointerHelpers(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 3, utils.Value(utils.Ptr(3)))
	require.Nil(t, utils.NonZero(""))
	require.Equal(t, "x", *utils.NonZero("x"))
}
