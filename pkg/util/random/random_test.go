package random

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetNowAndLenRandomString(t *testing.T) {
	s := GetNowAndLenRandomString(11)
	require.Len(t, s, 17)
	require.Equal(t, time.Now().Format("060102"), s[:6])
	require.NotEqual(t, s, GetNowAndLenRandomString(11))
}
