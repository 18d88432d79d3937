package crew

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

//go:embed crew.yaml
var defaultCrewYAML []byte

// ToolWebSearch is the hosted web search tool name accepted in agent definitions.
const ToolWebSearch = "web_search"

// AgentSpec describes one crew member. String fields are templates.
type AgentSpec struct {
	Role      string   `mapstructure:"role"`
	Goal      string   `mapstructure:"goal"`
	Backstory string   `mapstructure:"backstory"`
	LLM       string   `mapstructure:"llm"` // overrides the crew's default model
	Tools     []string `mapstructure:"tools"`
	MaxTurns  int      `mapstructure:"max_turns"`
}

// TaskSpec describes one unit of work. Description and ExpectedOutput are templates.
type TaskSpec struct {
	Name           string   `mapstructure:"name"`
	Description    string   `mapstructure:"description"`
	ExpectedOutput string   `mapstructure:"expected_output"`
	Agent          string   `mapstructure:"agent"`
	Context        []string `mapstructure:"context"`
	OutputFile     string   `mapstructure:"output_file"`
}

// Definition is a crew file: named agents and the ordered task list.
// Agent names are case-insensitive and stored lower-case.
type Definition struct {
	Agents map[string]AgentSpec `mapstructure:"agents"`
	Tasks  []TaskSpec           `mapstructure:"tasks"`
}

// DefaultDefinition returns the embedded financial researcher crew.
func DefaultDefinition() (*Definition, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultCrewYAML)); err != nil {
		return nil, fmt.Errorf("failed to parse embedded crew: %w", err)
	}
	return unmarshalDefinition(v)
}

// LoadDefinition reads a crew file. An empty path returns the embedded default.
func LoadDefinition(path string) (*Definition, error) {
	if path == "" {
		return DefaultDefinition()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read crew file %s: %w", path, err)
	}
	return unmarshalDefinition(v)
}

func unmarshalDefinition(v *viper.Viper) (*Definition, error) {
	var def Definition
	if err := v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("failed to decode crew: %w", err)
	}
	// viper lower-cases map keys, so references must match
	for i := range def.Tasks {
		def.Tasks[i].Agent = strings.ToLower(def.Tasks[i].Agent)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks that tasks reference known agents and only earlier tasks.
func (d *Definition) Validate() error {
	if len(d.Tasks) == 0 {
		return fmt.Errorf("crew has no tasks")
	}

	for name, a := range d.Agents {
		if a.Role == "" {
			return fmt.Errorf("agent %q: role is required", name)
		}
		if a.MaxTurns < 0 {
			return fmt.Errorf("agent %q: max_turns must not be negative", name)
		}
		for _, tool := range a.Tools {
			if tool != ToolWebSearch {
				return fmt.Errorf("agent %q: unknown tool %q", name, tool)
			}
		}
	}

	seen := make(map[string]bool, len(d.Tasks))
	for i, t := range d.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task #%d: name is required", i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate task name %q", t.Name)
		}
		if t.Description == "" {
			return fmt.Errorf("task %q: description is required", t.Name)
		}
		if _, ok := d.Agents[t.Agent]; !ok {
			return fmt.Errorf("task %q: unknown agent %q (known: %v)", t.Name, t.Agent, d.agentNames())
		}
		for _, dep := range t.Context {
			if !seen[dep] {
				return fmt.Errorf("task %q: context %q must name an earlier task", t.Name, dep)
			}
		}
		seen[t.Name] = true
	}
	return nil
}

func (d *Definition) agentNames() []string {
	names := make([]string, 0, len(d.Agents))
	for name := range d.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
