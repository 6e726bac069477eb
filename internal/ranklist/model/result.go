package model

import "encoding/json"

// SolutionResult is a submission outcome code. The empty value represents an
// srk JSON null: a solution with no verdict yet. Codes outside the known set
// pass through untouched (custom results are allowed by the schema).
type SolutionResult string

const (
	ResultNone       SolutionResult = ""
	ResultFirstBlood SolutionResult = "FB"
	ResultAccepted   SolutionResult = "AC"
	ResultRejected   SolutionResult = "RJ"
	ResultFrozen     SolutionResult = "?"

	ResultWrongAnswer         SolutionResult = "WA"
	ResultPresentationError   SolutionResult = "PE"
	ResultTimeLimitExceeded   SolutionResult = "TLE"
	ResultMemoryLimitExceeded SolutionResult = "MLE"
	ResultOutputLimitExceeded SolutionResult = "OLE"
	ResultRuntimeError        SolutionResult = "RTE"
	ResultCompileError        SolutionResult = "CE"
	ResultUnknownError        SolutionResult = "UKE"
)

// IsAccepted reports whether the result terminates a problem status.
func (r SolutionResult) IsAccepted() bool {
	return r == ResultAccepted || r == ResultFirstBlood
}

// LogPriority orders same-time solution log entries: first blood sorts before
// a plain accept, which sorts before a frozen verdict; everything else keeps
// its relative position.
func (r SolutionResult) LogPriority() int {
	switch r {
	case ResultFirstBlood:
		return 998
	case ResultAccepted:
		return 999
	case ResultFrozen:
		return 1000
	}
	return 0
}

// MarshalJSON encodes ResultNone as JSON null, everything else as a string.
func (r SolutionResult) MarshalJSON() ([]byte, error) {
	if r == ResultNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts a string or JSON null.
func (r *SolutionResult) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ResultNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = SolutionResult(s)
	return nil
}
