package yahoo

import (
	"fmt"
	"strings"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

// appStatePattern extracts the JSON blob Yahoo embeds in every match page.
const appStatePattern = `root.App.main\s+=\s+(\{.*\})`

// gamePrefixes maps sports to Yahoo's internal game ID namespaces.
var gamePrefixes = map[string]string{
	"nba": "nba.g.",
	"nfl": "nfl.g.",
	"epl": "soccer.g.",
}

// CompileJob emits the Yahoo match-result graph for a game slug (for
// example memphis-grizzlies-charlotte-hornets-2021100730). The graph fetches
// the match page, extracts the embedded app state, and runs the fixed
// outcome cascade over the GamesStore entry.
//
// The probes query the game's attendance because a numerical response is
// required; resolving at all means the filter matched.
// The slug alone addresses the match page, so the event date is unused here.
func (p *Provider) CompileJob(sport, externalID string, _ time.Time) (*oraclejob.Graph, error) {
	league, ok := leaguePaths[sport]
	if !ok {
		return nil, fmt.Errorf("yahoo: no job compiler for sport %q", sport)
	}
	prefix := gamePrefixes[sport]
	gameNumber := externalID[strings.LastIndex(externalID, "-")+1:]

	matchFilter := func(extra string) *oraclejob.Task {
		filter := fmt.Sprintf("@.gameid == '%s%s' && @.status_type == 'final'", prefix, gameNumber)
		if extra != "" {
			filter += " && " + extra
		}
		return oraclejob.NewJSONParse(fmt.Sprintf(
			"$.context.dispatcher.stores.GamesStore.games[?(%s)].attendance", filter))
	}

	cascade := oraclejob.OutcomeCascade(oraclejob.CascadeProbes{
		HomeWinner:    []*oraclejob.Task{matchFilter("@.winning_team_id == @.home_team_id")},
		AwayWinner:    []*oraclejob.Task{matchFilter("@.winning_team_id == @.away_team_id")},
		FinalNoWinner: []*oraclejob.Task{matchFilter("")},
	})

	graph := &oraclejob.Graph{
		Provider:   Name,
		ExternalID: externalID,
		Tasks: []*oraclejob.Task{
			oraclejob.NewHTTP(fmt.Sprintf("%s/%s/%s", SiteBaseURL, league, externalID)),
			oraclejob.NewRegexExtract(appStatePattern, 1),
			cascade,
		},
	}
	if err := oraclejob.Validate(graph); err != nil {
		return nil, fmt.Errorf("yahoo job graph: %w", err)
	}
	return graph, nil
}
