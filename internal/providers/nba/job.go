package nba

import (
	"fmt"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

// CompileJob emits the NBA.com match-result graph for a league game ID. The
// boxscore resource lives under a date path segment, so the event date is
// part of the URL. The graph fetches the boxscore and runs the fixed outcome
// cascade over basicGameData.
//
// statusNum semantics: 1 = not started, 2 = in progress, 3 = finished. The
// probes resolve the attendance figure because a jsonParseTask must produce
// numeric output.
func (p *Provider) CompileJob(sport, externalID string, eventDate time.Time) (*oraclejob.Graph, error) {
	if sport != "nba" {
		return nil, fmt.Errorf("nba: no job compiler for sport %q", sport)
	}
	if eventDate.IsZero() {
		return nil, fmt.Errorf("nba: boxscore for game %s needs an event date", externalID)
	}

	probe := func(filter string) *oraclejob.Task {
		condition := "@.statusNum == 3"
		if filter != "" {
			condition += " && " + filter
		}
		return oraclejob.NewJSONParse(fmt.Sprintf(
			"$.basicGameData[?(%s)].attendance", condition))
	}

	cascade := oraclejob.OutcomeCascade(oraclejob.CascadeProbes{
		HomeWinner:    []*oraclejob.Task{probe("@.hTeam.isWinner")},
		AwayWinner:    []*oraclejob.Task{probe("@.vTeam.isWinner")},
		FinalNoWinner: []*oraclejob.Task{probe("")},
	})

	graph := &oraclejob.Graph{
		Provider:   Name,
		ExternalID: externalID,
		Tasks: []*oraclejob.Task{
			oraclejob.NewHTTP(fmt.Sprintf("%s/prod/v1/%s/%s_boxscore.json",
				BaseURL, eventDate.Format("20060102"), externalID)),
			cascade,
		},
	}
	if err := oraclejob.Validate(graph); err != nil {
		return nil, fmt.Errorf("nba job graph: %w", err)
	}
	return graph, nil
}
