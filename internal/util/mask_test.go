package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	require.Equal(t, "a…@g….com", MaskEmail(" Ana@Gmail.com "))
	require.Equal(t, "", MaskEmail(""))
	require.Equal(t, "***", MaskEmail("abc"))
	require.Equal(t, "x@y.z", MaskEmail("x@y.z"))
}

func TestMaskDSN(t *testing.T) {
	require.Equal(t, "", MaskDSN(""))
	require.NotContains(t, MaskDSN("postgres://app:s3cret@db:5432/mail"), "s3cret")
	require.Contains(t, MaskDSN("postgres://app:s3cret@db:5432/mail"), "app:")
	require.Equal(t, "****", MaskDSN("host=db password=s3cret"))
}
