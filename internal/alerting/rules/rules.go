// Package rules parses declarative rule strings into typed clauses.
package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyRules indicates a rule string with no clauses. A rule set must
// contain at least one clause; callers fall back to the family default.
var ErrEmptyRules = errors.New("empty rule string")

// Clause is one concentration condition: the combined share of the top
// TopN providers must stay at or below ThresholdPct.
type Clause struct {
	TopN         int
	ThresholdPct float64
}

// ChangeClause is one change-detection condition comparing two metrics
// within a reporting period. Triggering is based on the absolute
// percent deviation of MetricA from MetricB.
type ChangeClause struct {
	MetricA      string
	MetricB      string
	Period       string
	ThresholdPct float64
}

// RuleSet is an ordered, non-empty sequence of concentration clauses.
// Order is preserved for display; evaluation is order-independent.
type RuleSet []Clause

// ParseError reports an unparseable clause with its text and 1-based
// position within the rule string.
type ParseError struct {
	Clause string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule clause %q at position %d: %s", e.Clause, e.Pos, e.Reason)
}

// Parse converts a rule string like "2:50,3:60" into a RuleSet.
// Whitespace around separators is trimmed. Duplicate clauses are kept
// and evaluated independently so misconfiguration shows up in alerts
// instead of being hidden.
func Parse(s string) (RuleSet, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyRules
	}
	parts := strings.Split(s, ",")
	out := make(RuleSet, 0, len(parts))
	for i, part := range parts {
		clause := strings.TrimSpace(part)
		pos := i + 1
		tokens := strings.Split(clause, ":")
		if len(tokens) != 2 {
			return nil, &ParseError{Clause: clause, Pos: pos, Reason: "want <topN>:<thresholdPct>"}
		}
		topN, err := strconv.Atoi(strings.TrimSpace(tokens[0]))
		if err != nil {
			return nil, &ParseError{Clause: clause, Pos: pos, Reason: "topN is not an integer"}
		}
		if topN < 1 {
			return nil, &ParseError{Clause: clause, Pos: pos, Reason: "topN must be >= 1"}
		}
		threshold, err := strconv.ParseFloat(strings.TrimSpace(tokens[1]), 64)
		if err != nil {
			return nil, &ParseError{Clause: clause, Pos: pos, Reason: "threshold is not a number"}
		}
		out = append(out, Clause{TopN: topN, ThresholdPct: threshold})
	}
	return out, nil
}
