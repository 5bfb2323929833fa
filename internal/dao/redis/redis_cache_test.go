package redis

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubmitTaskRunsOnWorker(t *testing.T) {
	rc := NewRedisCache(nil, 2, 8)
	var n atomic.Int32
	for i := 0; i < 8; i++ {
		rc.SubmitTask(func() { n.Add(1) })
	}
	rc.Close()
	require.EqualValues(t, 8, n.Load())
}

func TestSubmitTaskFallsBackWhenFull(t *testing.T) {
	rc := NewRedisCache(nil, 0, 0)
	ran := false
	rc.SubmitTask(func() { ran = true })
	require.True(t, ran)
	rc.Close()
}

func TestSubmitTaskSurvivesPanic(t *testing.T) {
	rc := NewRedisCache(nil, 1, 4)
	var n atomic.Int32
	rc.SubmitTask(func() { panic("boom") })
	rc.SubmitTask(func() { n.Add(1) })
	rc.Close()
	require.EqualValues(t, 1, n.Load())
}
