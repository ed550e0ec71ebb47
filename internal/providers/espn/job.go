package espn

import (
	"fmt"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

// CompileJob emits the ESPN match-result graph for an external match ID
// (for example 401365913). The graph fetches the match scoreboard resource
// and runs the fixed outcome cascade over it.
//
// The winner probes parse out the competitor's id because a jsonParseTask
// must produce numeric output; making it past the parse at all means a
// competitor met the filter, so the following value task supplies the
// outcome code.
// The match ID alone addresses the scoreboard resource, so the event date
// is unused here.
func (p *Provider) CompileJob(sport, externalID string, _ time.Time) (*oraclejob.Graph, error) {
	path, ok := sportPaths[sport]
	if !ok {
		return nil, fmt.Errorf("espn: no job compiler for sport %q", sport)
	}

	completedMatch := fmt.Sprintf(
		"$.competitions[?(@.status.type.completed && @.id == '%s')]", externalID)
	competitor := func(filter string) *oraclejob.Task {
		return oraclejob.NewJSONParse(
			fmt.Sprintf("%s.competitors[?(%s)].id", completedMatch, filter))
	}

	cascade := oraclejob.OutcomeCascade(oraclejob.CascadeProbes{
		HomeWinner: []*oraclejob.Task{competitor("@.winner && @.homeAway == 'home'")},
		AwayWinner: []*oraclejob.Task{competitor("@.winner && @.homeAway == 'away'")},
		// Any home competitor resolving under the completed-match filter
		// means the match is finalized, winner flag or not.
		FinalNoWinner: []*oraclejob.Task{competitor("@.homeAway == 'home'")},
	})

	graph := &oraclejob.Graph{
		Provider:   Name,
		ExternalID: externalID,
		Tasks: []*oraclejob.Task{
			oraclejob.NewHTTP(fmt.Sprintf("%s/%s/scoreboard/%s", BaseURL, path, externalID)),
			cascade,
		},
	}
	if err := oraclejob.Validate(graph); err != nil {
		return nil, fmt.Errorf("espn job graph: %w", err)
	}
	return graph, nil
}
