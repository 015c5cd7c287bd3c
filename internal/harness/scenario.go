package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is one YAML-defined test case: a program to run against the
// task vocabulary, plus expectations over the outcome.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Grammar overrides the default call-chain grammar with raw grammar
	// text. Empty means the default grammar.
	Grammar string `yaml:"grammar,omitempty"`

	// Mode is "execute" (default) or "collect".
	Mode string `yaml:"mode,omitempty"`

	Program string `yaml:"program"`
	Expect  Expect `yaml:"expect,omitempty"`
}

// Expect declares the outcome a scenario requires.
type Expect struct {
	// Error, when set, is a substring the run error must contain. The
	// scenario fails if the run succeeds.
	Error string `yaml:"error,omitempty"`

	Invocations []ExpectedInvocation `yaml:"invocations,omitempty"`
	Tasks       []ExpectedTask       `yaml:"tasks,omitempty"`
}

// ExpectedInvocation matches one invocation by verb and, optionally,
// by the kind of action it produced. An empty Action means the verb
// must not have produced an action.
type ExpectedInvocation struct {
	Verb   string `yaml:"verb"`
	Action string `yaml:"action,omitempty"`
}

// ExpectedTask matches one task on the board after the run.
type ExpectedTask struct {
	Name     string `yaml:"name"`
	Priority string `yaml:"priority"`
	Done     bool   `yaml:"done,omitempty"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// LoadScenarios loads every *.yaml scenario under dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func (sc *Scenario) validate() error {
	if sc.Name == "" {
		return fmt.Errorf("missing name")
	}
	if sc.Program == "" {
		return fmt.Errorf("missing program")
	}
	switch sc.Mode {
	case "", "execute", "collect":
	default:
		return fmt.Errorf("invalid mode %q", sc.Mode)
	}
	return nil
}

// mode returns the effective run mode.
func (sc *Scenario) mode() string {
	if sc.Mode == "" {
		return "execute"
	}
	return sc.Mode
}
