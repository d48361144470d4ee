package cron

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	StatsTask   = "stats"
	MonitorTask = "monitor"
)

type CronTask struct {
	Name     string
	Interval time.Duration
	Enabled  bool
	TaskFn   func()

	running *sync.Mutex
}

// Scheduler owns the cron runner and the tasks registered with it.
type Scheduler struct {
	cron  *cron.Cron
	ids   map[string]cron.EntryID
	debug bool
}

func New(debug bool) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		ids:   make(map[string]cron.EntryID),
		debug: debug,
	}
}

func (task CronTask) getCronString() (string, error) {
	if task.Interval < time.Second {
		return "", fmt.Errorf("interval for '%s' must be at least 1s", task.Name)
	}

	return fmt.Sprintf("@every %s", task.Interval), nil
}

// runCronTask skips a run while the previous run of the same task is still
// in progress.
func (task CronTask) runCronTask(debug bool) {
	if !task.running.TryLock() {
		if debug {
			log.Printf("'%s' task still running, skipping", task.Name)
		}
		return
	}
	defer task.running.Unlock()

	if debug {
		log.Printf("CRON: Running '%s' task...\n", task.Name)
	}

	task.TaskFn()

	if debug {
		log.Printf("'%s' task completed at %v\n", task.Name, time.Now().Format(time.RFC1123))
	}
}

// Add registers each enabled task. Disabled tasks are ignored.
func (s *Scheduler) Add(tasks ...CronTask) error {
	for _, task := range tasks {
		if !task.Enabled {
			continue
		}

		spec, err := task.getCronString()
		if err != nil {
			return err
		}

		task.running = &sync.Mutex{}
		debug := s.debug
		id, err := s.cron.AddFunc(spec, func() { task.runCronTask(debug) })
		if err != nil {
			return fmt.Errorf("adding cron task '%s': %w", task.Name, err)
		}

		s.ids[task.Name] = id
		log.Printf("Added cron task '%s'\n", task.Name)
	}

	return nil
}

// Next returns the next scheduled run of a task, or false if it was never
// added.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.ids[name]
	if !ok {
		return time.Time{}, false
	}

	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return time.Time{}, false
	}

	return entry.Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
