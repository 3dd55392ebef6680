// Package definitions loads workflow process graphs from YAML definition
// files into the graph store. Files are applied through the workflow Service
// so every load re-reconciles the affected workflow's status.
package definitions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/flowstate/internal/log"
	"github.com/zjrosen/flowstate/internal/workflow/domain"
	"github.com/zjrosen/flowstate/internal/workflow/service"
)

// Definition is one YAML workflow definition document.
type Definition struct {
	Workflow struct {
		ID          string `yaml:"id"`
		Category    string `yaml:"category"`
		SubCategory string `yaml:"sub_category"`
	} `yaml:"workflow"`

	Steps []struct {
		ID   string `yaml:"id"`
		Role string `yaml:"role"`
	} `yaml:"steps"`

	Transitions []struct {
		ID     string `yaml:"id"`
		From   string `yaml:"from"`
		To     string `yaml:"to"`
		Action string `yaml:"action"`
	} `yaml:"transitions"`
}

// Validate checks the definition for structural errors.
func (d *Definition) Validate() error {
	if d.Workflow.ID == "" {
		return fmt.Errorf("workflow.id is required")
	}
	seen := make(map[string]bool, len(d.Steps))
	for i, s := range d.Steps {
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("steps[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
	}
	for i, t := range d.Transitions {
		if t.ID == "" {
			return fmt.Errorf("transitions[%d]: id is required", i)
		}
		if t.From != "" && !seen[t.From] {
			return fmt.Errorf("transitions[%d]: unknown from step %q", i, t.From)
		}
		if t.To != "" && !seen[t.To] {
			return fmt.Errorf("transitions[%d]: unknown to step %q", i, t.To)
		}
	}
	return nil
}

// ParseFile reads and validates one definition file.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the configured definitions dir
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing definition file: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition %s: %w", filepath.Base(path), err)
	}
	return &def, nil
}

// Apply writes the definition's workflow, steps, and transitions through the
// Service. The final status change (if any) comes from the last mutation's
// reconciliation.
func Apply(ctx context.Context, svc *service.Service, def *Definition) (*domain.StatusChange, error) {
	workflowID := def.Workflow.ID

	change, err := svc.SaveWorkflow(ctx, domain.Workflow{
		ID:          workflowID,
		Category:    def.Workflow.Category,
		SubCategory: def.Workflow.SubCategory,
	})
	if err != nil {
		return nil, err
	}

	for _, s := range def.Steps {
		c, err := svc.SaveStep(ctx, domain.Step{
			ID:         s.ID,
			WorkflowID: workflowID,
			Role:       s.Role,
		})
		if err != nil {
			return nil, err
		}
		if c != nil {
			change = c
		}
	}

	for _, t := range def.Transitions {
		c, err := svc.SaveTransition(ctx, domain.StepTransition{
			ID:         t.ID,
			WorkflowID: workflowID,
			FromStep:   t.From,
			ToStep:     t.To,
			Action:     t.Action,
		})
		if err != nil {
			return nil, err
		}
		if c != nil {
			change = c
		}
	}

	return change, nil
}

// LoadDir applies every YAML definition file in dir. Files that fail to parse
// or apply are logged WARN and skipped; loading never crashes on a bad file.
// Returns the number of definitions applied.
func LoadDir(ctx context.Context, svc *service.Service, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading definitions directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !isDefinitionFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		def, err := ParseFile(path)
		if err != nil {
			log.Warn(log.CatLoader, "Skipping definition file", "path", path, "error", err.Error())
			continue
		}
		if _, err := Apply(ctx, svc, def); err != nil {
			log.Warn(log.CatLoader, "Failed to apply definition", "path", path, "error", err.Error())
			continue
		}
		log.Info(log.CatLoader, "Definition loaded", "path", path, "workflow", def.Workflow.ID)
		loaded++
	}

	return loaded, nil
}

// isDefinitionFile reports whether the filename looks like a YAML definition.
func isDefinitionFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
