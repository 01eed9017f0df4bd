package rules

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tomas/vigia/internal/domain/risk"
)

// yamlCondition is the YAML-serialized form of a Condition.
// Value is a string for the event field, a number otherwise.
type yamlCondition struct {
	Field string      `yaml:"field"`
	Op    string      `yaml:"op"`
	Value interface{} `yaml:"value"`
}

// yamlRule is the YAML-serialized form of a Rule.
type yamlRule struct {
	ID          string          `yaml:"id"`
	Priority    int             `yaml:"priority"`
	Description string          `yaml:"description,omitempty"`
	Conditions  []yamlCondition `yaml:"conditions"`
	Level       string          `yaml:"level"`
	Action      string          `yaml:"action"`
}

// LoadFromFS loads all YAML rule files from a filesystem directory.
// Files load in sorted name order for determinism; rules are validated
// (known fields, known operators, known levels, unique IDs) and returned
// sorted by (priority, ID).
func LoadFromFS(fsys fs.FS, dir string) ([]Rule, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read rules dir %q: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var all []Rule
	seenIDs := make(map[string]string) // id → source file

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := entry.Name()
		if dir != "." {
			path = dir + "/" + entry.Name()
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		parsed, err := parseRuleFile(entry.Name(), data, seenIDs)
		if err != nil {
			return nil, err
		}
		all = append(all, parsed...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no rules found in %q", dir)
	}

	sortRules(all)
	return all, nil
}

// LoadFromPath loads rules from an external override: either a directory of
// YAML rule files or a single YAML file. Validation matches LoadFromFS.
func LoadFromPath(path string) ([]Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("rules path %q: %w", path, err)
	}

	if info.IsDir() {
		return LoadFromFS(os.DirFS(path), ".")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	all, err := parseRuleFile(filepath.Base(path), data, make(map[string]string))
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no rules found in %q", path)
	}

	sortRules(all)
	return all, nil
}

// parseRuleFile unmarshals one YAML rule file, validating each rule and
// recording IDs in seenIDs to detect duplicates across files.
func parseRuleFile(name string, data []byte, seenIDs map[string]string) ([]Rule, error) {
	var yamlRules []yamlRule
	if err := yaml.Unmarshal(data, &yamlRules); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	var parsed []Rule
	for _, yr := range yamlRules {
		rule, err := convertRule(yr)
		if err != nil {
			return nil, fmt.Errorf("%s: rule %q: %w", name, yr.ID, err)
		}

		if prev, ok := seenIDs[rule.ID]; ok {
			return nil, fmt.Errorf("duplicate rule ID %q (first in %s, again in %s)", rule.ID, prev, name)
		}
		seenIDs[rule.ID] = name

		parsed = append(parsed, rule)
	}
	return parsed, nil
}

// sortRules orders rules by priority with an ID tie-break, so evaluation
// order is deterministic across loads.
func sortRules(all []Rule) {
	sort.Slice(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority < all[j].Priority
		}
		return all[i].ID < all[j].ID
	})
}

// convertRule validates and converts a YAML rule to the internal form.
func convertRule(yr yamlRule) (Rule, error) {
	if yr.ID == "" {
		return Rule{}, fmt.Errorf("missing id")
	}
	if yr.Priority <= 0 {
		return Rule{}, fmt.Errorf("priority must be positive, got %d", yr.Priority)
	}
	if len(yr.Conditions) == 0 {
		return Rule{}, fmt.Errorf("rule has no conditions")
	}

	level := risk.LevelFromName(yr.Level)
	if level < 0 {
		return Rule{}, fmt.Errorf("unknown level %q", yr.Level)
	}
	if yr.Action == "" {
		return Rule{}, fmt.Errorf("missing action")
	}

	conds := make([]Condition, 0, len(yr.Conditions))
	for i, yc := range yr.Conditions {
		c, err := convertCondition(yc)
		if err != nil {
			return Rule{}, fmt.Errorf("condition %d: %w", i, err)
		}
		conds = append(conds, c)
	}

	return Rule{
		ID:          yr.ID,
		Priority:    yr.Priority,
		Description: yr.Description,
		Conditions:  conds,
		Outcome:     Outcome{Level: level, Action: yr.Action},
	}, nil
}

// convertCondition validates one condition. Event conditions must use string
// values with equality operators; numeric conditions must carry a number.
func convertCondition(yc yamlCondition) (Condition, error) {
	field := FieldFromName(yc.Field)
	if field < 0 {
		return Condition{}, fmt.Errorf("unknown field %q", yc.Field)
	}

	op := OpFromName(yc.Op)
	if op < 0 {
		return Condition{}, fmt.Errorf("unknown operator %q", yc.Op)
	}

	if field == FieldEvent {
		if op != OpEqual && op != OpNotEqual {
			return Condition{}, fmt.Errorf("event field only supports == and !=, got %q", yc.Op)
		}
		s, ok := yc.Value.(string)
		if !ok || s == "" {
			return Condition{}, fmt.Errorf("event condition needs a string value, got %v", yc.Value)
		}
		return Condition{Field: field, Op: op, StrValue: s}, nil
	}

	v, err := toFloat(yc.Value)
	if err != nil {
		return Condition{}, fmt.Errorf("field %q: %w", yc.Field, err)
	}
	return Condition{Field: field, Op: op, Value: v}, nil
}

// toFloat accepts the numeric types yaml.v3 produces for scalars.
func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
