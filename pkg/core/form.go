package core

// CallForm distinguishes how a call site names its SQL.
type CallForm int

const (
	// FormKeyed calls pass a dotted key that resolves to a .sql file.
	FormKeyed CallForm = iota
	// FormInline calls pass the SQL text itself.
	FormInline
)

func (f CallForm) String() string {
	switch f {
	case FormKeyed:
		return "keyed"
	case FormInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Category groups diagnostics so each group can be replaced or cleared
// on its own by a diagnostics sink.
type Category string

const (
	// CategoryTargetMissing holds findings about keyed targets that could not be resolved.
	CategoryTargetMissing Category = "sql-target-missing"
	// CategoryFileParams holds parameter findings for keyed calls.
	CategoryFileParams Category = "sql-file-params"
	// CategoryQueryParams holds parameter findings for inline calls.
	CategoryQueryParams Category = "query-params"
)

// Categories lists every category in publishing order.
var Categories = []Category{CategoryTargetMissing, CategoryFileParams, CategoryQueryParams}

// ParamsCategory returns the parameter category for a call form.
func ParamsCategory(f CallForm) Category {
	if f == FormInline {
		return CategoryQueryParams
	}
	return CategoryFileParams
}
