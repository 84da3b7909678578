package main

import (
	"sync"
	"time"

	"github.com/ocupoint/linksim/pkg/pipeline"
)

// runState holds the server's mutable view of "the next run's configuration"
// and "the last run's result", guarded by a single RWMutex.
type runState struct {
	mu sync.RWMutex

	Config  pipeline.Config
	Running bool

	Result    *pipeline.Result
	LastError string
	LastRunAt time.Time

	DeviceAddr string // dfe.RemoteClient address; empty means dfe.Null
}

var serverState = &runState{
	Config: pipeline.DefaultConfig(),
}

func (s *runState) snapshotConfig() pipeline.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Config
}

func (s *runState) snapshotResult() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Result
}
