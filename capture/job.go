package capture

import (
	"image"
	"sync"
	"time"

	"github.com/flanksource/hypecycle/geometry"
)

// Status of a capture job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is the outcome of a capture job. Exactly one of PNG and Err is set.
type Result struct {
	JobID    string
	Region   geometry.Rect
	Size     image.Point
	PNG      []byte
	Path     string
	Duration time.Duration
	Err      error
}

// Job is one in-flight capture. It cannot be cancelled.
type Job struct {
	ID string

	done   chan struct{}
	mu     sync.Mutex
	status Status
	result Result
}

func newJob(id string) *Job {
	return &Job{ID: id, status: StatusPending, done: make(chan struct{})}
}

// Status returns the current status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Done is closed once the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its result.
func (j *Job) Wait() Result {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

func (j *Job) setStatus(s Status) {
	j.mu.Lock()
	j.status = s
	j.mu.Unlock()
}

func (j *Job) finish(r Result) {
	j.mu.Lock()
	j.result = r
	if r.Err != nil {
		j.status = StatusFailed
	} else {
		j.status = StatusSucceeded
	}
	j.mu.Unlock()
	close(j.done)
}
