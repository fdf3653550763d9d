package models

// TeamStandingRow - строка турнирной таблицы, пересчитывается целиком при
// каждом запросе, в БД не хранится.
type TeamStandingRow struct {
	TeamID        int    `json:"team_id"`
	TeamName      string `json:"team_name"`
	MatchesPlayed int    `json:"matches_played"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	GoalsFor      int    `json:"goals_for"`
	GoalsAgainst  int    `json:"goals_against"`
	Points        int    `json:"points"`
}

type PlayerLeaderboardEntry struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	TeamID   int    `json:"team_id"`
	Value    int    `json:"value"`
}

type TeamLeaderboardEntry struct {
	TeamID   int    `json:"team_id"`
	TeamName string `json:"team_name"`
	Value    int    `json:"value"`
}

type PlayerLeaderboards struct {
	TopScorers  []PlayerLeaderboardEntry `json:"top_scorers"`
	TopAssists  []PlayerLeaderboardEntry `json:"top_assists"`
	YellowCards []PlayerLeaderboardEntry `json:"yellow_cards"`
	RedCards    []PlayerLeaderboardEntry `json:"red_cards"`
}

type TeamLeaderboards struct {
	Attack      []TeamLeaderboardEntry `json:"attack"`       // goals for, по убыванию
	Defense     []TeamLeaderboardEntry `json:"defense"`      // goals against, по возрастанию
	YellowCards []TeamLeaderboardEntry `json:"yellow_cards"` // по убыванию
	RedCards    []TeamLeaderboardEntry `json:"red_cards"`    // по убыванию
}

type StandingsResult struct {
	TournamentID int                `json:"tournament_id"`
	PointsTable  []TeamStandingRow  `json:"points_table"`
	TopPlayers   PlayerLeaderboards `json:"top_players"`
	TopTeams     TeamLeaderboards   `json:"top_teams"`
}
