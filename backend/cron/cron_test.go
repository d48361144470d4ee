package cron

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCronString(t *testing.T) {
	spec, err := CronTask{Name: StatsTask, Interval: 10 * time.Minute}.getCronString()
	require.NoError(t, err)
	assert.Equal(t, "@every 10m0s", spec)

	_, err = CronTask{Name: StatsTask, Interval: time.Millisecond}.getCronString()
	assert.Error(t, err)
}

func TestAddSkipsDisabledTasks(t *testing.T) {
	s := New(false)
	err := s.Add(
		CronTask{Name: StatsTask, Interval: time.Minute, Enabled: true, TaskFn: func() {}},
		CronTask{Name: MonitorTask, Interval: time.Minute, Enabled: false, TaskFn: func() {}},
	)
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	next, ok := s.Next(StatsTask)
	assert.True(t, ok)
	assert.True(t, next.After(time.Now()))

	_, ok = s.Next(MonitorTask)
	assert.False(t, ok)
}

func TestAddRejectsBadInterval(t *testing.T) {
	s := New(false)
	err := s.Add(CronTask{Name: StatsTask, Interval: 0, Enabled: true, TaskFn: func() {}})
	assert.Error(t, err)
}

func TestRunCronTaskSkipsOverlappingRuns(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	task := CronTask{
		Name:    StatsTask,
		running: &sync.Mutex{},
		TaskFn: func() {
			calls.Add(1)
			close(started)
			<-release
		},
	}

	done := make(chan struct{})
	go func() {
		task.runCronTask(false)
		close(done)
	}()

	<-started
	task.runCronTask(true)
	close(release)
	<-done

	assert.Equal(t, int32(1), calls.Load())
}
