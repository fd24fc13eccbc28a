package lint

import "github.com/joeandaverde/vscode-tinypg/pkg/core"

// Built-in rules.
var (
	RuleTargetNotFound = RuleDef{
		ID:          "TP01",
		Name:        "target.not_found",
		Description: "A keyed call names a .sql file that does not exist in the workspace",
		Severity:    core.SeverityError,
		Rationale:   "The call fails at runtime when the statement cannot be loaded.",
		BadExample:  `db.sql("users.fnidById", { id })`,
		GoodExample: `db.sql("users.findById", { id }) // users/findById.sql exists`,
	}

	RuleTargetUnparsable = RuleDef{
		ID:          "TP02",
		Name:        "target.unparsable",
		Description: "The SQL behind a call cannot be scanned for parameters",
		Severity:    core.SeverityError,
		Rationale:   "An unterminated string or comment hides every parameter after it.",
		BadExample:  `db.query("SELECT 'open FROM t WHERE id = :id", { id })`,
		GoodExample: `db.query("SELECT 'closed' FROM t WHERE id = :id", { id })`,
	}

	RuleParamsMissing = RuleDef{
		ID:          "PB01",
		Name:        "params.missing",
		Description: "The SQL expects parameters the object literal does not supply",
		Severity:    core.SeverityError,
		Rationale:   "Unbound parameters make the statement fail at runtime.",
		BadExample:  `db.query("SELECT * FROM t WHERE id = :id AND name = :name", { id })`,
		GoodExample: `db.query("SELECT * FROM t WHERE id = :id AND name = :name", { id, name })`,
	}

	RuleParamsUnused = RuleDef{
		ID:          "PB02",
		Name:        "params.unused",
		Description: "The object literal supplies parameters the SQL never reads",
		Severity:    core.SeverityWarning,
		Rationale:   "An unused binding is usually a typo for a parameter that is also missing.",
		BadExample:  `db.query("SELECT * FROM t WHERE id = :id", { id, extra })`,
		GoodExample: `db.query("SELECT * FROM t WHERE id = :id", { id })`,
	}
)

// AllRules returns the built-in rules ordered by ID.
func AllRules() []RuleDef {
	return []RuleDef{RuleParamsMissing, RuleParamsUnused, RuleTargetNotFound, RuleTargetUnparsable}
}

// GetRuleByID returns a rule by its ID.
func GetRuleByID(id string) (RuleDef, bool) {
	for _, r := range AllRules() {
		if r.ID == id {
			return r, true
		}
	}
	return RuleDef{}, false
}
