// Package all registers every built-in provider. Import it for side effects.
package all

import (
	_ "github.com/switchboard-xyz/switchboard-feed-factory/internal/providers/espn"
	_ "github.com/switchboard-xyz/switchboard-feed-factory/internal/providers/nba"
	_ "github.com/switchboard-xyz/switchboard-feed-factory/internal/providers/yahoo"
)
