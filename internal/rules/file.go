package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileRule is the YAML form of a rule. Conditions are free-form here and
// go through DecodeConditions like any other payload.
type fileRule struct {
	ID          string         `yaml:"id,omitempty"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Type        string         `yaml:"rule_type"`
	Severity    string         `yaml:"severity"`
	Active      *bool          `yaml:"is_active,omitempty"`
	Conditions  map[string]any `yaml:"conditions"`
}

type ruleFile struct {
	Rules []fileRule `yaml:"rules"`
}

// Parse reads a YAML rule set. Rules without is_active default to active.
// Every rule is validated; the first invalid rule fails the whole file.
func Parse(r io.Reader) ([]Rule, error) {
	var f ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	out := make([]Rule, 0, len(f.Rules))
	for i, fr := range f.Rules {
		raw, err := json.Marshal(fr.Conditions)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): encoding conditions: %w", i, fr.Name, err)
		}
		active := true
		if fr.Active != nil {
			active = *fr.Active
		}
		rule := Rule{
			ID:          fr.ID,
			Name:        fr.Name,
			Description: fr.Description,
			Type:        Type(fr.Type),
			Severity:    Severity(fr.Severity),
			Active:      active,
			Conditions:  raw,
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, fr.Name, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

// LoadFile parses the YAML rule set at path.
func LoadFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Encode writes rules as a YAML rule set.
func Encode(w io.Writer, rules []Rule) error {
	f := ruleFile{Rules: make([]fileRule, 0, len(rules))}
	for _, r := range rules {
		var conds map[string]any
		if len(r.Conditions) > 0 {
			if err := json.Unmarshal(r.Conditions, &conds); err != nil {
				return fmt.Errorf("rule %s: decoding conditions: %w", r.ID, err)
			}
		}
		active := r.Active
		f.Rules = append(f.Rules, fileRule{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Type:        string(r.Type),
			Severity:    string(r.Severity),
			Active:      &active,
			Conditions:  conds,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encoding rule file: %w", err)
	}
	return enc.Close()
}

// WriteFile writes rules to path as YAML.
func WriteFile(path string, rules []Rule) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rule file: %w", err)
	}
	if err := Encode(f, rules); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
