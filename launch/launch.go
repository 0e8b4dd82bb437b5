// Package launch runs the simulator on a workload with a given system
// configuration and reports how the run ended.
package launch

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sarchlab/m5sweep/loader"
	"github.com/sarchlab/m5sweep/simout"
	"github.com/sarchlab/m5sweep/sysconfig"
)

// ConfigFileName is the name of the system configuration written into each
// output directory.
const ConfigFileName = "config.json"

// ScriptFileName is the name the built-in configuration script is written
// under when the Launcher has no Script of its own.
const ScriptFileName = "se_sweep.py"

//go:embed configs/se_sweep.py
var builtinScript []byte

// BuiltinScript returns the configuration script that reads config.json.
func BuiltinScript() []byte {
	return append([]byte(nil), builtinScript...)
}

// Runner starts an external program and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args []string, dir string) error
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r ExecRunner) Run(
	ctx context.Context,
	name string,
	args []string,
	dir string,
) error {
	if strings.ContainsRune(name, filepath.Separator) {
		abs, err := filepath.Abs(name)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		name = abs
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(name), err)
	}

	return nil
}

// Job is one simulation of one workload.
type Job struct {
	// Cmd is the workload binary.
	Cmd string
	// Options are passed to the workload.
	Options []string
	// OutDir receives config.json, stats.txt and simout.
	OutDir string
	// WorkDir is the directory the workload runs in. Launch defaults it to
	// the caller's working directory.
	WorkDir string
}

// Result describes a finished run.
type Result struct {
	Job        Job
	ConfigPath string
	Binary     *loader.Binary
	ExitCause  string
	Complete   bool
}

// Launcher starts the simulator binary with a configuration script.
type Launcher struct {
	// Binary is the simulator executable, e.g. build/RISCV/gem5.opt.
	Binary string
	// Script is the configuration script that reads config.json. When empty
	// the built-in script is written into each output directory.
	Script string
	Runner Runner
}

// Args builds the simulator command line. Workload options come last
// because the script consumes the remainder of the line.
func (l *Launcher) Args(job Job, configPath string) []string {
	args := []string{
		"--outdir=" + job.OutDir,
		"--redirect-stdout",
		"--redirect-stderr",
		l.Script,
		"--config", configPath,
		"--cmd", job.Cmd,
	}

	if job.WorkDir != "" {
		args = append(args, "--workdir", job.WorkDir)
	}

	if len(job.Options) > 0 {
		args = append(args, "--options")
		args = append(args, job.Options...)
	}

	return args
}

// Launch validates the system and the workload, writes the configuration
// into the output directory, runs the simulator and reads the exit cause
// it printed. The simulator runs inside the output directory, so every
// path handed to it is made absolute first. If the simulator fails after
// starting, the Result read so far is returned together with the error.
func (l *Launcher) Launch(
	ctx context.Context,
	sys *sysconfig.System,
	job Job,
) (*Result, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}

	job, err := resolveJob(job)
	if err != nil {
		return nil, err
	}

	bin, err := loader.Inspect(job.Cmd)
	if err != nil {
		return nil, fmt.Errorf("workload %s: %w", job.Cmd, err)
	}

	if err := os.MkdirAll(job.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	run, err := l.resolve(job.OutDir)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(job.OutDir, ConfigFileName)
	if err := sys.Save(configPath); err != nil {
		return nil, err
	}

	res := &Result{
		Job:        job,
		ConfigPath: configPath,
		Binary:     bin,
	}

	runErr := l.Runner.Run(ctx, run.Binary, run.Args(job, configPath), job.OutDir)
	if runErr != nil {
		runErr = fmt.Errorf("simulation in %s failed: %w", job.OutDir, runErr)
	}

	cause, err := simout.ReadExitCause(filepath.Join(job.OutDir, simout.FileName))
	if err != nil {
		return res, errors.Join(runErr, err)
	}
	res.ExitCause = cause
	res.Complete = simout.IsComplete(cause)

	return res, runErr
}

func resolveJob(job Job) (Job, error) {
	var err error

	if job.Cmd, err = filepath.Abs(job.Cmd); err != nil {
		return job, fmt.Errorf("failed to resolve workload: %w", err)
	}

	if job.OutDir, err = filepath.Abs(job.OutDir); err != nil {
		return job, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	if job.WorkDir == "" {
		if job.WorkDir, err = os.Getwd(); err != nil {
			return job, fmt.Errorf("failed to get working directory: %w", err)
		}
	} else if job.WorkDir, err = filepath.Abs(job.WorkDir); err != nil {
		return job, fmt.Errorf("failed to resolve workload directory: %w", err)
	}

	return job, nil
}

// resolve returns a copy of the launcher with absolute binary and script
// paths. A binary without a directory is left to the PATH lookup. Without
// a Script the built-in one is written into outDir.
func (l *Launcher) resolve(outDir string) (*Launcher, error) {
	run := *l

	if strings.ContainsRune(run.Binary, filepath.Separator) {
		abs, err := filepath.Abs(run.Binary)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve simulator binary: %w", err)
		}
		run.Binary = abs
	}

	if run.Script == "" {
		run.Script = filepath.Join(outDir, ScriptFileName)
		if err := os.WriteFile(run.Script, builtinScript, 0644); err != nil {
			return nil, fmt.Errorf("failed to write configuration script: %w", err)
		}
		return &run, nil
	}

	abs, err := filepath.Abs(run.Script)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration script: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("configuration script: %w", err)
	}
	run.Script = abs

	return &run, nil
}
