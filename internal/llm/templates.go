package llm

import (
	_ "embed"
	"fmt"

	"github.com/ethanbaker/ytchat/pkg/utils"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts holds the prompt template and context budget for the model
type Prompts struct {
	System          string `yaml:"system"`
	MaxContextChars int    `yaml:"max_context_chars"`
}

// LoadPrompts parses the embedded prompt templates and applies configuration
// overrides: SYSTEM_PROMPT_FILE replaces the system prompt wholesale, and
// MAX_CONTEXT_CHARS overrides the transcript budget.
func LoadPrompts(cfg *utils.Config) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(promptsYAML, &p); err != nil {
		return nil, fmt.Errorf("failed to parse embedded prompts: %w", err)
	}

	if path := cfg.Get("SYSTEM_PROMPT_FILE"); path != "" {
		p.System = utils.LoadPromptWithFallback(path, p.System)
	}

	if n := cfg.GetInt("MAX_CONTEXT_CHARS"); n > 0 {
		p.MaxContextChars = n
	}

	return &p, nil
}
