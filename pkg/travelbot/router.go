package travelbot

import "fmt"

// Next evaluates the outgoing edges of from in declaration order and
// returns the first whose predicate accepts the state. Unconditional
// edges always match.
//
// Routing into a non-repeatable node that has already run is refused:
// the state that drove the earlier visit has been consumed, so a
// second visit signals a predicate set that no longer partitions the
// state space. The caller treats the returned RouterInconsistencyError
// as fatal.
func (cg *CompiledGraph) Next(s *State, from Stage) (Stage, error) {
	edges := cg.edges[from]
	if len(edges) == 0 {
		return "", &RouterInconsistencyError{
			From:       from,
			Err:        ErrNoPredicateMatched,
			Diagnostic: "stage has no outgoing edges",
		}
	}

	for _, e := range edges {
		if e.When != nil && !e.When(s) {
			continue
		}
		if e.To != End {
			if spec, exists := cg.nodes[e.To]; exists && !spec.repeatable && s.Visits[e.To] > 0 {
				return "", &RouterInconsistencyError{
					From:       from,
					To:         e.To,
					Err:        ErrStageRevisit,
					Diagnostic: routeDiagnostic(s),
				}
			}
		}
		return e.To, nil
	}

	return "", &RouterInconsistencyError{
		From:       from,
		Err:        ErrNoPredicateMatched,
		Diagnostic: routeDiagnostic(s),
	}
}

// routeDiagnostic summarizes the routing-relevant parts of the state
// for error reports.
func routeDiagnostic(s *State) string {
	choice := "none"
	if s.Choice != nil {
		choice = s.Choice.Value
	}
	return fmt.Sprintf("missing=%v flights=%s hotels=%s attractions=%s choice=%s awaiting=%t",
		s.Missing,
		s.Results.Flights.Status,
		s.Results.Hotels.Status,
		s.Results.Attractions.Status,
		choice,
		s.Awaiting,
	)
}
