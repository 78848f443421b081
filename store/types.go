package store

// Record types for the dashboard's read-only tables. Column names follow the
// store schema, so the JSON tags double as query column identifiers.

// Player is one row of a team roster.
type Player struct {
	ID       int    `json:"id" msgpack:"id"`
	TeamID   int    `json:"team_id" msgpack:"team_id"`
	Name     string `json:"name" msgpack:"name"`
	Position string `json:"position" msgpack:"position"`
	Jersey   int    `json:"jersey" msgpack:"jersey"`
	Class    string `json:"class" msgpack:"class"`
	Bats     string `json:"bats" msgpack:"bats"`
	Throws   string `json:"throws" msgpack:"throws"`
}

// Team is one program in the league.
type Team struct {
	ID         int    `json:"id" msgpack:"id"`
	Name       string `json:"name" msgpack:"name"`
	Conference string `json:"conference" msgpack:"conference"`
	Wins       int    `json:"wins" msgpack:"wins"`
	Losses     int    `json:"losses" msgpack:"losses"`
}

// BattingLine is a player's aggregate batting statistics for a season.
type BattingLine struct {
	PlayerID int     `json:"player_id" msgpack:"player_id"`
	TeamID   int     `json:"team_id" msgpack:"team_id"`
	Season   int     `json:"season" msgpack:"season"`
	Games    int     `json:"games" msgpack:"games"`
	AtBats   int     `json:"at_bats" msgpack:"at_bats"`
	Hits     int     `json:"hits" msgpack:"hits"`
	Doubles  int     `json:"doubles" msgpack:"doubles"`
	Triples  int     `json:"triples" msgpack:"triples"`
	HomeRuns int     `json:"home_runs" msgpack:"home_runs"`
	RBI      int     `json:"rbi" msgpack:"rbi"`
	Walks    int     `json:"walks" msgpack:"walks"`
	Avg      float64 `json:"avg" msgpack:"avg"`
	OBP      float64 `json:"obp" msgpack:"obp"`
	SLG      float64 `json:"slg" msgpack:"slg"`
}

// PitchingLine is a pitcher's aggregate statistics for a season.
type PitchingLine struct {
	PlayerID    int     `json:"player_id" msgpack:"player_id"`
	TeamID      int     `json:"team_id" msgpack:"team_id"`
	Season      int     `json:"season" msgpack:"season"`
	Appearances int     `json:"appearances" msgpack:"appearances"`
	Innings     float64 `json:"innings" msgpack:"innings"`
	Strikeouts  int     `json:"strikeouts" msgpack:"strikeouts"`
	Walks       int     `json:"walks" msgpack:"walks"`
	EarnedRuns  int     `json:"earned_runs" msgpack:"earned_runs"`
	ERA         float64 `json:"era" msgpack:"era"`
	WHIP        float64 `json:"whip" msgpack:"whip"`
}

// HeatMapCell is one zone of a batter's strike-zone heat map.
type HeatMapCell struct {
	PlayerID int     `json:"player_id" msgpack:"player_id"`
	Zone     int     `json:"zone" msgpack:"zone"`
	Pitches  int     `json:"pitches" msgpack:"pitches"`
	Avg      float64 `json:"avg" msgpack:"avg"`
}
