package redraft

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Stage identifies one of the four pipeline steps.
type Stage string

const (
	StageResearch Stage = "research"
	StageDraft    Stage = "draft"
	StageReview   Stage = "review"
	StageRefine   Stage = "refine"
)

// StageFault records an upstream failure that a stage absorbed. The pipeline
// never surfaces these as errors; they are only observable here and in logs.
type StageFault struct {
	Stage Stage
	Err   error
}

func (f StageFault) String() string {
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

// State accumulates the output of each pipeline stage. Fields grow
// monotonically: Query is set at construction, each stage writes exactly one
// field, and no field is overwritten once set. State is passed by value;
// the with* setters return an updated copy so a stage can never alias the
// orchestrator's version.
type State struct {
	RunID          string
	Query          string
	SearchResults  []SearchResult
	DraftAnswer    string
	ReviewFeedback string
	FinalAnswer    string
	Faults         []StageFault
	Cost           float64
}

// NewState initializes the state with the original query and a fresh run ID.
func NewState(query string) State {
	return State{RunID: uuid.NewString(), Query: strings.TrimSpace(query)}
}

func (s State) withResults(results []SearchResult) State {
	s.SearchResults = results
	return s
}

func (s State) withDraft(draft string) State {
	s.DraftAnswer = draft
	return s
}

func (s State) withFeedback(feedback string) State {
	s.ReviewFeedback = feedback
	return s
}

func (s State) withFinal(answer string) State {
	s.FinalAnswer = answer
	return s
}

func (s State) withFault(stage Stage, err error) State {
	s.Faults = append(s.Faults, StageFault{Stage: stage, Err: err})
	return s
}

func (s State) addCost(cost float64) State {
	s.Cost += cost
	return s
}

// Degraded reports whether the given stage absorbed a failure during the run.
func (s State) Degraded(stage Stage) bool {
	for _, f := range s.Faults {
		if f.Stage == stage {
			return true
		}
	}
	return false
}

// Snapshot renders the accumulated state for display or debugging.
func (s State) Snapshot() string {
	var b strings.Builder
	b.WriteString("Query:\n")
	b.WriteString(s.Query)
	b.WriteString("\n\nSearch Results:\n")
	if len(s.SearchResults) == 0 {
		b.WriteString("(none)")
	}
	for i, r := range s.SearchResults {
		b.WriteString(fmt.Sprintf("%d. %s | %s | %s\n", i+1, strings.TrimSpace(r.Title), strings.TrimSpace(r.URL), strings.TrimSpace(r.Snippet)))
	}
	b.WriteString("\n\nDraft:\n")
	writeOrEmpty(&b, s.DraftAnswer)
	b.WriteString("\n\nReview Feedback:\n")
	writeOrEmpty(&b, s.ReviewFeedback)
	b.WriteString("\n\nFinal Answer:\n")
	writeOrEmpty(&b, s.FinalAnswer)
	if len(s.Faults) > 0 {
		b.WriteString("\n\nDegraded Stages:\n")
		for _, f := range s.Faults {
			b.WriteString(f.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeOrEmpty(b *strings.Builder, s string) {
	if strings.TrimSpace(s) == "" {
		b.WriteString("(empty)")
		return
	}
	b.WriteString(s)
}
