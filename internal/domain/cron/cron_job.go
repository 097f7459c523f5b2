package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/raffle/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	mutex   sync.Mutex
	running sync.WaitGroup
	jobs    map[CronJob]*time.Timer
	stopped bool

	cancelOnce sync.Once
	cancel     chan struct{}
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{
		jobs:   make(map[CronJob]*time.Timer),
		cancel: make(chan struct{}),
	}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jobs[job] = nil
}

// Start runs the registered jobs and blocks until ctx is done or Cancel is
// called. It returns after the running jobs finished.
func (m *CronJobManager) Start(ctx context.Context, jobs ...CronJob) {
	for _, job := range jobs {
		m.Register(job)
	}

	xcontext.Logger(ctx).Infof("Cron job manager started")

	m.mutex.Lock()
	for job := range m.jobs {
		if job.RunNow() {
			m.running.Add(1)
			go m.run(ctx, job)
		} else {
			m.scheduleLocked(ctx, job)
		}
	}
	m.mutex.Unlock()

	select {
	case <-ctx.Done():
	case <-m.cancel:
	}

	m.mutex.Lock()
	m.stopped = true
	for _, timer := range m.jobs {
		if timer != nil {
			timer.Stop()
		}
	}
	m.mutex.Unlock()

	m.running.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel() {
	m.cancelOnce.Do(func() { close(m.cancel) })
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	defer m.running.Done()

	xcontext.Logger(ctx).Debugf("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Debugf("%T ok", job)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.scheduleLocked(ctx, job)
}

func (m *CronJobManager) scheduleLocked(ctx context.Context, job CronJob) {
	if m.stopped {
		return
	}

	m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() {
		m.mutex.Lock()
		if m.stopped {
			m.mutex.Unlock()
			return
		}
		m.running.Add(1)
		m.mutex.Unlock()

		m.run(ctx, job)
	})
}
