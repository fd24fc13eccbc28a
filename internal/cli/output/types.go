package output

// CheckSummary counts the findings of a check run.
type CheckSummary struct {
	FilesChecked    int `json:"files_checked"`
	FilesWithIssues int `json:"files_with_issues"`
	TotalIssues     int `json:"total_issues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
	Hints           int `json:"hints"`
}

// CheckDiagnostic is one finding in JSON output. Lines and columns are
// 1-based; columns count bytes.
type CheckDiagnostic struct {
	RuleID    string   `json:"rule_id"`
	Category  string   `json:"category"`
	Severity  string   `json:"severity"`
	Message   string   `json:"message"`
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	EndLine   int      `json:"end_line"`
	EndColumn int      `json:"end_column"`
	Target    string   `json:"target"`
	Names     []string `json:"names,omitempty"`
	SQLPath   string   `json:"sql_path,omitempty"`
}

// CheckFileResult groups the findings of one source file.
type CheckFileResult struct {
	Path        string            `json:"path"`
	Diagnostics []CheckDiagnostic `json:"diagnostics"`
}

// CheckOutput is the JSON document written by check.
type CheckOutput struct {
	Summary CheckSummary      `json:"summary"`
	Files   []CheckFileResult `json:"files"`
}
