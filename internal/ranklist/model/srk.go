package model

import "encoding/json"

// TypeGeneral is the only srk ranklist flavor this engine understands.
const TypeGeneral = "general"

// Contest holds contest metadata. Immutable once loaded.
type Contest struct {
	Title          Text            `json:"title"`
	StartAt        string          `json:"startAt,omitempty"`
	Duration       TimeDuration    `json:"duration"`
	FrozenDuration *TimeDuration   `json:"frozenDuration,omitempty"`
	Banner         json.RawMessage `json:"banner,omitempty"`
}

// ProblemStatistics accumulates per-problem counters. They are recomputed
// from scratch by a full replay rebuild.
type ProblemStatistics struct {
	Accepted  int `json:"accepted"`
	Submitted int `json:"submitted"`
}

// Problem is one contest problem, ordered by its position in
// Ranklist.Problems.
type Problem struct {
	Alias      string             `json:"alias,omitempty"`
	Title      Text               `json:"title,omitempty"`
	Link       string             `json:"link,omitempty"`
	Statistics *ProblemStatistics `json:"statistics,omitempty"`
	Style      json.RawMessage    `json:"style,omitempty"`
}

// TeamMember is one member of a team user.
type TeamMember struct {
	Name Text `json:"name"`
}

// User identifies a ranklist row. Official defaults to true when absent.
type User struct {
	ID           string       `json:"id,omitempty"`
	Name         Text         `json:"name"`
	Organization Text         `json:"organization,omitempty"`
	TeamMembers  []TeamMember `json:"teamMembers,omitempty"`
	Official     *bool        `json:"official,omitempty"`
	Marker       string       `json:"marker,omitempty"`
}

// IsOfficial reports whether the user counts toward official rankings.
func (u User) IsOfficial() bool {
	return u.Official == nil || *u.Official
}

// Key returns the row identity: the user id when present, otherwise the
// canonical form of the name.
func (u User) Key() string {
	if u.ID != "" {
		return u.ID
	}
	return u.Name.Canonical()
}

// Field returns the canonical string value of a named user attribute,
// used by the UniqByUserField series preset. Unknown fields are empty.
func (u User) Field(name string) string {
	switch name {
	case "id":
		return u.ID
	case "name":
		return u.Name.Canonical()
	case "organization":
		return u.Organization.Canonical()
	case "marker":
		return u.Marker
	}
	return ""
}

// Marker is a user tag definition with display styling.
type Marker struct {
	ID    string          `json:"id"`
	Label Text            `json:"label"`
	Style json.RawMessage `json:"style,omitempty"`
}

// Solution is one immutable submission event.
type Solution struct {
	Result SolutionResult `json:"result"`
	Time   TimeDuration   `json:"time"`
}

// RankProblemStatus is the per-row, per-problem aggregate. Result, Tries and
// Time are the derived best-known state; Solutions is the ordered event
// history contributing to it.
type RankProblemStatus struct {
	Result    SolutionResult `json:"result"`
	Time      *TimeDuration  `json:"time,omitempty"`
	Tries     int            `json:"tries,omitempty"`
	Solutions []Solution     `json:"solutions,omitempty"`
}

// RankScore is a row's primary score. Time is total penalized time and is
// only a tie-break.
type RankScore struct {
	Value float64       `json:"value"`
	Time  *TimeDuration `json:"time,omitempty"`
}

// RanklistRow is one row of the standings, identity = user identity.
type RanklistRow struct {
	User     User                `json:"user"`
	Score    RankScore           `json:"score"`
	Statuses []RankProblemStatus `json:"statuses"`
}

// SegmentRatio configures proportional segment quotas for the ICPC preset.
// Ratio values stay as json.Number so endpoint accumulation can be exact.
type SegmentRatio struct {
	Value       []json.Number `json:"value"`
	Rounding    Rounding      `json:"rounding,omitempty"`
	Denominator string        `json:"denominator,omitempty"` // "all" | "submitted"
	NoTied      bool          `json:"noTied,omitempty"`
}

// SegmentCount configures absolute per-segment quotas for the ICPC preset.
type SegmentCount struct {
	Value  []int `json:"value"`
	NoTied bool  `json:"noTied,omitempty"`
}

// SeriesRuleOptions is the union of per-preset options. Which fields apply
// depends on SeriesRule.Preset.
type SeriesRuleOptions struct {
	IncludeOfficialOnly bool          `json:"includeOfficialOnly,omitempty"`
	Field               string        `json:"field,omitempty"`
	Ratio               *SegmentRatio `json:"ratio,omitempty"`
	Count               *SegmentCount `json:"count,omitempty"`
}

// Series rule presets.
const (
	PresetNormal          = "Normal"
	PresetUniqByUserField = "UniqByUserField"
	PresetICPC            = "ICPC"
)

// SeriesRule selects a ranking preset for one series.
type SeriesRule struct {
	Preset  string            `json:"preset"`
	Options SeriesRuleOptions `json:"options,omitempty"`
}

// RankSeriesSegment is one display band (e.g. a medal tier) within a series.
type RankSeriesSegment struct {
	Title Text            `json:"title,omitempty"`
	Style json.RawMessage `json:"style,omitempty"`
}

// RankSeries is a display column definition with its own ranking rule.
type RankSeries struct {
	Title    string              `json:"title,omitempty"`
	Rule     *SeriesRule         `json:"rule,omitempty"`
	Segments []RankSeriesSegment `json:"segments,omitempty"`
}

// SorterICPC is the only sorting algorithm replay supports.
const SorterICPC = "ICPC"

// SorterConfig holds ICPC penalty scoring settings. Zero fields fall back to
// documented defaults at replay time.
type SorterConfig struct {
	Penalty          *TimeDuration    `json:"penalty,omitempty"`
	NoPenaltyResults []SolutionResult `json:"noPenaltyResults,omitempty"`
	TimePrecision    TimeUnit         `json:"timePrecision,omitempty"`
	TimeRounding     Rounding         `json:"timeRounding,omitempty"`
}

// Sorter declares the algorithm that produced the row order.
type Sorter struct {
	Algorithm string       `json:"algorithm"`
	Config    SorterConfig `json:"config,omitempty"`
}

// Ranklist is an immutable contest standings snapshot.
type Ranklist struct {
	Type         string        `json:"type"`
	Version      string        `json:"version"`
	Contest      Contest       `json:"contest"`
	Problems     []Problem     `json:"problems"`
	Series       []RankSeries  `json:"series"`
	Markers      []Marker      `json:"markers,omitempty"`
	Rows         []RanklistRow `json:"rows"`
	Sorter       *Sorter       `json:"sorter,omitempty"`
	Contributors []string      `json:"contributors,omitempty"`
}

// RankValue is one (row, series) rank cell. A nil Rank means the row is
// excluded from that ranking and renders as an unofficial mark.
type RankValue struct {
	Rank         *int `json:"rank"`
	SegmentIndex *int `json:"segmentIndex"`
}

// StaticRow is a ranklist row annotated with one RankValue per series.
type StaticRow struct {
	RanklistRow
	RankValues []RankValue `json:"rankValues"`
}

// StaticRanklist is the display-ready form of a ranklist: the same snapshot
// with per-series rank values attached to every row.
type StaticRanklist struct {
	Type         string       `json:"type"`
	Version      string       `json:"version"`
	Contest      Contest      `json:"contest"`
	Problems     []Problem    `json:"problems"`
	Series       []RankSeries `json:"series"`
	Markers      []Marker     `json:"markers,omitempty"`
	Rows         []StaticRow  `json:"rows"`
	Sorter       *Sorter      `json:"sorter,omitempty"`
	Contributors []string     `json:"contributors,omitempty"`
}
