// Package rules implements the deterministic rule engine: a priority-ordered
// rule base evaluated first-match-wins against sensor readings.
package rules

import "github.com/tomas/vigia/internal/domain/risk"

// Field identifies which reading attribute a condition tests.
type Field int

const (
	FieldTemp     Field = 0
	FieldHumidity Field = 1
	FieldWind     Field = 2
	FieldEvent    Field = 3
)

// FieldName returns the string label for a field constant.
func FieldName(f Field) string {
	switch f {
	case FieldTemp:
		return "temp"
	case FieldHumidity:
		return "humidity"
	case FieldWind:
		return "wind"
	case FieldEvent:
		return "event"
	default:
		return "unknown"
	}
}

// FieldFromName maps a string field name to its Field constant.
// Returns -1 for unknown names.
func FieldFromName(name string) Field {
	switch name {
	case "temp":
		return FieldTemp
	case "humidity":
		return FieldHumidity
	case "wind":
		return FieldWind
	case "event":
		return FieldEvent
	default:
		return -1
	}
}

// Op is a comparison operator within a condition.
type Op int

const (
	OpGreater    Op = 0
	OpLess       Op = 1
	OpGreaterEq  Op = 2
	OpLessEq     Op = 3
	OpEqual      Op = 4
	OpNotEqual   Op = 5
)

// OpFromName maps an operator token to its Op constant.
// Returns -1 for unknown tokens.
func OpFromName(name string) Op {
	switch name {
	case ">":
		return OpGreater
	case "<":
		return OpLess
	case ">=":
		return OpGreaterEq
	case "<=":
		return OpLessEq
	case "==":
		return OpEqual
	case "!=":
		return OpNotEqual
	default:
		return -1
	}
}

// OpName returns the operator token for an Op constant.
func OpName(o Op) string {
	switch o {
	case OpGreater:
		return ">"
	case OpLess:
		return "<"
	case OpGreaterEq:
		return ">="
	case OpLessEq:
		return "<="
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	default:
		return "?"
	}
}

// Condition is one comparison within a rule. Numeric fields compare against
// Value; the event field compares against StrValue with == or != only.
// Validation happens at load time, so evaluation never encounters an
// impossible field/operator pairing.
type Condition struct {
	Field    Field
	Op       Op
	Value    float64
	StrValue string
}

// Outcome is what a firing rule asserts: a risk level and a recommended action.
type Outcome struct {
	Level  risk.Level
	Action string
}

// Rule is a single entry in the rule base. Lower Priority evaluates earlier.
type Rule struct {
	ID          string
	Priority    int
	Description string
	Conditions  []Condition
	Outcome     Outcome
}

// Verdict is the result of evaluating one reading against the rule base.
type Verdict struct {
	Level  risk.Level
	Action string
	RuleID string
}
