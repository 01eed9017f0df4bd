package rules

import "github.com/tomas/vigia/internal/domain/risk"

// DefaultAction is the recommendation when no rule fires.
const DefaultAction = "Routine monitoring."

// Engine evaluates readings against a priority-ordered rule base.
// The rule slice must already be sorted by LoadFromFS; Engine does not
// mutate it and is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over an already-loaded rule base.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the loaded rule base in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Evaluate walks the rule base in priority order and returns the verdict of
// the first rule whose conditions all hold. When nothing fires, the verdict
// is normal risk with the routine-monitoring action and the no_rule sentinel.
func (e *Engine) Evaluate(r risk.Reading) Verdict {
	for i := range e.rules {
		if matches(&e.rules[i], r) {
			return Verdict{
				Level:  e.rules[i].Outcome.Level,
				Action: e.rules[i].Outcome.Action,
				RuleID: e.rules[i].ID,
			}
		}
	}
	return Verdict{Level: risk.LevelNormal, Action: DefaultAction, RuleID: risk.NoRuleID}
}

func matches(rule *Rule, r risk.Reading) bool {
	for i := range rule.Conditions {
		if !holds(&rule.Conditions[i], r) {
			return false
		}
	}
	return true
}

func holds(c *Condition, r risk.Reading) bool {
	if c.Field == FieldEvent {
		event := r.Event
		if event == "" {
			event = risk.EventNone
		}
		if c.Op == OpEqual {
			return event == c.StrValue
		}
		return event != c.StrValue
	}

	var v float64
	switch c.Field {
	case FieldTemp:
		v = r.TempC
	case FieldHumidity:
		v = r.Humidity
	case FieldWind:
		v = r.WindKmh
	}

	switch c.Op {
	case OpGreater:
		return v > c.Value
	case OpLess:
		return v < c.Value
	case OpGreaterEq:
		return v >= c.Value
	case OpLessEq:
		return v <= c.Value
	case OpEqual:
		return v == c.Value
	case OpNotEqual:
		return v != c.Value
	}
	return false
}
