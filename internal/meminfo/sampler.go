package meminfo

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args and returns stdout. A non-zero exit status is
// reported as an error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Sampler queries dumpsys meminfo for one package.
type Sampler struct {
	adb     string
	pkg     string
	runner  CommandRunner
	logger  *zap.Logger
	nowFunc func() time.Time
}

// NewSampler creates a sampler. A nil runner uses ExecRunner.
func NewSampler(adbPath, pkg string, runner CommandRunner, logger *zap.Logger) *Sampler {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		adb:     adbPath,
		pkg:     pkg,
		runner:  runner,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Package returns the monitored package name.
func (s *Sampler) Package() string {
	return s.pkg
}

// Sample runs dumpsys and parses the report. The unreachable memory query is
// best effort: when it fails the snapshot reports zero unreachable memory.
func (s *Sampler) Sample(ctx context.Context) (Snapshot, error) {
	out, err := s.runner.Run(ctx, s.adb, "shell", "dumpsys", "meminfo", s.pkg)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dumpsys meminfo %s: %w", s.pkg, err)
	}

	snap := ParseMeminfo(string(out))
	snap.Taken = s.nowFunc()

	unreachable, err := s.runner.Run(ctx, s.adb, "shell", "dumpsys", "meminfo", s.pkg, "--unreachable")
	if err != nil {
		s.logger.Debug("Unreachable memory query failed",
			zap.String("package", s.pkg),
			zap.Error(err),
		)
		return snap, nil
	}
	snap.UnreachableMB = ParseUnreachable(string(unreachable))

	return snap, nil
}
