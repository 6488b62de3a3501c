package domain

// GuardRule is a JSON-logic expression over a reviewed summary that must
// evaluate to true.
type GuardRule struct {
	ID      string
	Logic   map[string]any
	Message string
}

type GuardViolation struct {
	RuleID  string `json:"ruleId"`
	Message string `json:"message"`
}
