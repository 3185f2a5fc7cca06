// Package orchestrator wires the site build: it registers every task of the
// build graph against a resolved config and runs targets through the
// sequencer.
package orchestrator

import (
	"fmt"
	"io"
	"os"

	"github.com/maxkimambo/sitebuild/internal/config"
	"github.com/maxkimambo/sitebuild/internal/logger"
	tm "github.com/maxkimambo/sitebuild/internal/taskmanager"
)

// Options tune an Orchestrator.
type Options struct {
	// Out receives reports such as lint output. Defaults to stdout.
	Out io.Writer
	// Concurrency bounds per-step file workers. Zero uses the config value.
	Concurrency int
}

// Orchestrator owns the task registry of one build.
type Orchestrator struct {
	config    *config.Config
	registry  *tm.Registry
	sequencer *tm.Sequencer
	out       io.Writer
}

// New creates an orchestrator with the full site task graph registered.
func New(cfg *config.Config, opts Options) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	registry := tm.NewRegistry()
	factory := NewTaskFactory(cfg, out, opts.Concurrency)
	for _, task := range factory.CreateAll() {
		if err := registry.RegisterStrict(task); err != nil {
			return nil, err
		}
	}

	logger.Op.WithFields(map[string]interface{}{
		"tasks":   registry.Len(),
		"project": cfg.Name,
	}).Debug("Registered build tasks")

	return &Orchestrator{
		config:    cfg,
		registry:  registry,
		sequencer: tm.NewSequencer(registry),
		out:       out,
	}, nil
}

// Registry returns the task registry. Callers may register extra tasks
// before running.
func (o *Orchestrator) Registry() *tm.Registry {
	return o.registry
}

// Config returns the resolved build config.
func (o *Orchestrator) Config() *config.Config {
	return o.config
}

// Plan returns the tasks reachable from target in dependency order.
func (o *Orchestrator) Plan(target string) ([]string, error) {
	return o.sequencer.Validate(target)
}

// Visualize renders the expanded plan of target as text, json or dot.
func (o *Orchestrator) Visualize(target, format string) (string, error) {
	v := tm.NewPlanVisualization(o.registry)
	switch format {
	case "", "text":
		return v.ExportText(target)
	case "json":
		data, err := v.ExportJSON(target)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "dot":
		return v.ExportDOT(target)
	default:
		return "", fmt.Errorf("unsupported graph format %q (want text, json or dot)", format)
	}
}
