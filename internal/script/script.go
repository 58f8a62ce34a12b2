// Package script defines the fixed, ordered dialogue script: a list of
// operator prompts plus an optional per-step steering instruction. The
// script is immutable once loaded; stepping through it is pure.
package script

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultScript []byte

// Step is one scripted unit: the fixed prompt sent on behalf of the
// operator and, optionally, a steering instruction for the model's reply.
type Step struct {
	Index       int
	Prompt      string
	Instruction string
}

// Script is the ordered set of prompts for one dialogue run.
type Script struct {
	Name         string         `yaml:"name"`
	Prompts      []string       `yaml:"prompts"`
	Instructions map[int]string `yaml:"instructions,omitempty"`
}

// Load reads a script from a YAML file and validates it.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates script YAML.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the built-in seven-step script.
func Default() *Script {
	s, err := Parse(defaultScript)
	if err != nil {
		// The embedded script is validated by tests; a failure here is a
		// packaging bug, not a runtime condition.
		panic(fmt.Sprintf("embedded default script invalid: %v", err))
	}
	return s
}

// Validate checks the script shape at startup: at least one prompt, no
// blank prompts, and every instruction keyed to an existing step.
func (s *Script) Validate() error {
	if len(s.Prompts) == 0 {
		return fmt.Errorf("script %q has no prompts", s.Name)
	}
	for i, p := range s.Prompts {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("script %q: prompt %d is empty", s.Name, i)
		}
	}
	for idx := range s.Instructions {
		if idx < 0 || idx >= len(s.Prompts) {
			return fmt.Errorf("script %q: instruction index %d out of range (have %d prompts)", s.Name, idx, len(s.Prompts))
		}
	}
	return nil
}

// Len returns the number of steps.
func (s *Script) Len() int {
	return len(s.Prompts)
}

// StepAt returns the step at cursor, or ok=false when the script is
// exhausted. Exhaustion is the normal terminal condition, not an error.
func (s *Script) StepAt(cursor int) (Step, bool) {
	if cursor < 0 || cursor >= len(s.Prompts) {
		return Step{}, false
	}
	return Step{
		Index:       cursor,
		Prompt:      s.Prompts[cursor],
		Instruction: s.Instructions[cursor],
	}, true
}
