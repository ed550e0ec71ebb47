// Package teams canonicalizes each provider's team naming into one
// provider-independent team key, via static per-league tables with a
// reverse index built once at startup.
package teams

import (
	"log"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key is the canonical identifier for a team, stable across providers.
// Keys are kebab-case slugs, e.g. "golden-state-warriors".
type Key string

// Abbreviations holds one team's naming per provider. League is the
// league's own code (NBA tri-codes); empty when the league has no
// first-party data provider.
type Abbreviations struct {
	League string
	ESPN   string
	Yahoo  string
}

// nbaTable maps each NBA team key to its per-provider abbreviations.
// ESPN and Yahoo disagree with the league's tri-codes for a handful of
// franchises, which is the whole reason this table exists.
var nbaTable = map[Key]Abbreviations{
	"atlanta-hawks":          {League: "ATL", Yahoo: "ATL", ESPN: "ATL"},
	"boston-celtics":         {League: "BOS", Yahoo: "BOS", ESPN: "BOS"},
	"brooklyn-nets":          {League: "BKN", Yahoo: "BKN", ESPN: "BKN"},
	"charlotte-hornets":      {League: "CHA", Yahoo: "CHA", ESPN: "CHA"},
	"chicago-bulls":          {League: "CHI", Yahoo: "CHI", ESPN: "CHI"},
	"cleveland-cavaliers":    {League: "CLE", Yahoo: "CLE", ESPN: "CLE"},
	"dallas-mavericks":       {League: "DAL", Yahoo: "DAL", ESPN: "DAL"},
	"denver-nuggets":         {League: "DEN", Yahoo: "DEN", ESPN: "DEN"},
	"detroit-pistons":        {League: "DET", Yahoo: "DET", ESPN: "DET"},
	"golden-state-warriors":  {League: "GSW", Yahoo: "GSW", ESPN: "GS"},
	"houston-rockets":        {League: "HOU", Yahoo: "HOU", ESPN: "HOU"},
	"indiana-pacers":         {League: "IND", Yahoo: "IND", ESPN: "IND"},
	"los-angeles-clippers":   {League: "LAC", Yahoo: "LAC", ESPN: "LAC"},
	"los-angeles-lakers":     {League: "LAL", Yahoo: "LAL", ESPN: "LAL"},
	"memphis-grizzlies":      {League: "MEM", Yahoo: "MEM", ESPN: "MEM"},
	"miami-heat":             {League: "MIA", Yahoo: "MIA", ESPN: "MIA"},
	"milwaukee-bucks":        {League: "MIL", Yahoo: "MIL", ESPN: "MIL"},
	"minnesota-timberwolves": {League: "MIN", Yahoo: "MIN", ESPN: "MIN"},
	"new-orleans-pelicans":   {League: "NOP", Yahoo: "NOH", ESPN: "NO"},
	"new-york-knicks":        {League: "NYK", Yahoo: "NYK", ESPN: "NY"},
	"oklahoma-city-thunder":  {League: "OKC", Yahoo: "OKC", ESPN: "OKC"},
	"orlando-magic":          {League: "ORL", Yahoo: "ORL", ESPN: "ORL"},
	"philadelphia-76ers":     {League: "PHI", Yahoo: "PHI", ESPN: "PHI"},
	"phoenix-suns":           {League: "PHX", Yahoo: "PHO", ESPN: "PHX"},
	"portland-trail-blazers": {League: "POR", Yahoo: "POR", ESPN: "POR"},
	"sacramento-kings":       {League: "SAC", Yahoo: "SAC", ESPN: "SAC"},
	"san-antonio-spurs":      {League: "SAS", Yahoo: "SA", ESPN: "SA"},
	"toronto-raptors":        {League: "TOR", Yahoo: "TOR", ESPN: "TOR"},
	"utah-jazz":              {League: "UTA", Yahoo: "UTH", ESPN: "UTAH"},
	"washington-wizards":     {League: "WAS", Yahoo: "WAS", ESPN: "WSH"},
}

// nflTable maps each NFL team key to its ESPN abbreviation. Yahoo's NFL
// surface only ever names teams through kebab-case game slugs, covered by
// the slug self-mapping, and no first-party league provider exists, so
// those two columns stay empty. Washington keeps the interim name its feed
// URLs still use.
var nflTable = map[Key]Abbreviations{
	"arizona-cardinals":        {ESPN: "ARI"},
	"atlanta-falcons":          {ESPN: "ATL"},
	"baltimore-ravens":         {ESPN: "BAL"},
	"buffalo-bills":            {ESPN: "BUF"},
	"carolina-panthers":        {ESPN: "CAR"},
	"chicago-bears":            {ESPN: "CHI"},
	"cincinnati-bengals":       {ESPN: "CIN"},
	"cleveland-browns":         {ESPN: "CLE"},
	"dallas-cowboys":           {ESPN: "DAL"},
	"denver-broncos":           {ESPN: "DEN"},
	"detroit-lions":            {ESPN: "DET"},
	"green-bay-packers":        {ESPN: "GB"},
	"houston-texans":           {ESPN: "HOU"},
	"indianapolis-colts":       {ESPN: "IND"},
	"jacksonville-jaguars":     {ESPN: "JAX"},
	"kansas-city-chiefs":       {ESPN: "KC"},
	"las-vegas-raiders":        {ESPN: "LV"},
	"los-angeles-chargers":     {ESPN: "LAC"},
	"los-angeles-rams":         {ESPN: "LAR"},
	"miami-dolphins":           {ESPN: "MIA"},
	"minnesota-vikings":        {ESPN: "MIN"},
	"new-england-patriots":     {ESPN: "NE"},
	"new-orleans-saints":       {ESPN: "NO"},
	"new-york-giants":          {ESPN: "NYG"},
	"new-york-jets":            {ESPN: "NYJ"},
	"philadelphia-eagles":      {ESPN: "PHI"},
	"pittsburgh-steelers":      {ESPN: "PIT"},
	"san-francisco-49ers":      {ESPN: "SF"},
	"seattle-seahawks":         {ESPN: "SEA"},
	"tampa-bay-buccaneers":     {ESPN: "TB"},
	"tennessee-titans":         {ESPN: "TEN"},
	"washington-football-team": {ESPN: "WSH"},
}

// leagueTables holds every sport's table. Abbreviations are only unique
// within a sport (ESPN "NO" is the Pelicans in the NBA and the Saints in
// the NFL), so the index is keyed by sport first.
var leagueTables = map[string]map[Key]Abbreviations{
	"nba": nbaTable,
	"nfl": nflTable,
}

// Index resolves provider abbreviations to canonical keys in O(1).
type Index struct {
	bySport map[string]map[string]map[string]Key
}

var (
	defaultIndex *Index
	indexOnce    sync.Once
)

// NewIndex builds the per-sport provider reverse index from the static
// tables.
func NewIndex() *Index {
	ix := &Index{bySport: make(map[string]map[string]map[string]Key, len(leagueTables))}
	for sport, table := range leagueTables {
		byProvider := map[string]map[string]Key{
			"nba":   make(map[string]Key, len(table)),
			"espn":  make(map[string]Key, len(table)),
			"yahoo": make(map[string]Key, len(table)),
		}
		for key, abbrs := range table {
			if abbrs.League != "" {
				byProvider["nba"][abbrs.League] = key
			}
			if abbrs.ESPN != "" {
				byProvider["espn"][abbrs.ESPN] = key
			}
			if abbrs.Yahoo != "" {
				byProvider["yahoo"][abbrs.Yahoo] = key
			}
			// Yahoo game slugs embed the full kebab-case name rather than an
			// abbreviation, so the key maps to itself for slug parsing.
			byProvider["yahoo"][string(key)] = key
		}
		ix.bySport[sport] = byProvider
	}
	return ix
}

// Default returns the shared process-wide index.
func Default() *Index {
	indexOnce.Do(func() { defaultIndex = NewIndex() })
	return defaultIndex
}

// Canonicalize maps a provider abbreviation or slug to the canonical team
// key for a sport. The lookup is total: a miss returns the raw input as the
// key, flagged by ok=false and a diagnostic, so reconciliation degrades
// instead of failing.
func (ix *Index) Canonicalize(sport, provider, raw string) (Key, bool) {
	byProvider, known := ix.bySport[strings.ToLower(sport)]
	if !known {
		log.Printf("[teams] ⚠️  no team table for sport %q (abbreviation %q)", sport, raw)
		return Key(raw), false
	}
	table, known := byProvider[strings.ToLower(provider)]
	if !known {
		log.Printf("[teams] ⚠️  unknown provider %q for abbreviation %q", provider, raw)
		return Key(raw), false
	}
	if key, ok := table[raw]; ok {
		return key, true
	}
	log.Printf("[teams] ⚠️  no canonical %s team for %s abbreviation %q", sport, provider, raw)
	return Key(raw), false
}

// Keys lists every canonical team key for a sport, in table order. Sports
// without a table yield nil.
func Keys(sport string) []Key {
	table, ok := leagueTables[strings.ToLower(sport)]
	if !ok {
		return nil
	}
	keys := make([]Key, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	return keys
}

// Slug converts a display name back to its key form.
// "Atlanta Hawks" => "atlanta-hawks".
func Slug(display string) Key {
	return Key(strings.ReplaceAll(strings.ToLower(display), " ", "-"))
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a key for humans: "atlanta-hawks" => "Atlanta Hawks".
// Words that start with a digit ("76ers") are kept as-is.
func DisplayName(key Key) string {
	words := strings.Split(string(key), "-")
	for i, word := range words {
		if word == "" || word[0] < 'a' || word[0] > 'z' {
			continue
		}
		words[i] = titleCaser.String(word)
	}
	return strings.Join(words, " ")
}
