package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/football-tournament-system/models"
	"github.com/Dosada05/football-tournament-system/repositories"
	"golang.org/x/sync/errgroup"
)

const leaderboardSize = 5

type StandingsService interface {
	// ComputeStandings пересчитывает таблицу и лидерборды турнира с нуля
	// по сохранённым матчам и игрокам. Только чтение, состояние не меняет.
	ComputeStandings(ctx context.Context, tournamentID int) (*models.StandingsResult, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
	}
}

func (s *standingsService) ComputeStandings(ctx context.Context, tournamentID int) (*models.StandingsResult, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}

	var (
		teams   []*models.Team
		matches []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load standings data for tournament %d: %w", tournamentID, err)
	}

	teamIDs := make([]int, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	// Лидерборды игроков считаются по командам самого турнира.
	players, err := s.playerRepo.ListByTeams(ctx, nil, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("list players for tournament %d: %w", tournamentID, err)
	}

	return &models.StandingsResult{
		TournamentID: tournamentID,
		PointsTable:  BuildPointsTable(teams, matches),
		TopPlayers:   BuildPlayerLeaderboards(players),
		TopTeams:     BuildTeamLeaderboards(teams, matches),
	}, nil
}

// BuildPointsTable строит турнирную таблицу по завершённым матчам.
// Матчи со статусом upcoming/live в таблицу не входят. Победа - 3 очка,
// ничья - по одному. Сортировка только по очкам, устойчивая: при равенстве
// очков команды остаются в порядке регистрации.
func BuildPointsTable(teams []*models.Team, matches []*models.Match) []models.TeamStandingRow {
	rows := make([]models.TeamStandingRow, len(teams))
	index := make(map[int]*models.TeamStandingRow, len(teams))
	for i, t := range teams {
		rows[i] = models.TeamStandingRow{TeamID: t.ID, TeamName: t.Name}
		index[t.ID] = &rows[i]
	}

	for _, m := range matches {
		if m == nil || m.Status != models.MatchStatusCompleted {
			continue
		}
		home, okHome := index[m.HomeTeamID]
		away, okAway := index[m.AwayTeamID]
		if !okHome || !okAway {
			// Матч ссылается на команду вне турнира - пропускаем,
			// а не падаем.
			continue
		}

		home.MatchesPlayed++
		away.MatchesPlayed++
		home.GoalsFor += m.HomeScore
		home.GoalsAgainst += m.AwayScore
		away.GoalsFor += m.AwayScore
		away.GoalsAgainst += m.HomeScore

		switch {
		case m.HomeScore > m.AwayScore:
			home.Wins++
			home.Points += 3
			away.Losses++
		case m.AwayScore > m.HomeScore:
			away.Wins++
			away.Points += 3
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points++
			away.Points++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})
	return rows
}

// BuildPlayerLeaderboards считает топ-5 игроков по каждому счётчику из
// переданного набора. Область набора выбирает вызывающая сторона: сервис
// передаёт игроков команд турнира.
func BuildPlayerLeaderboards(players []*models.Player) models.PlayerLeaderboards {
	return models.PlayerLeaderboards{
		TopScorers:  topPlayersBy(players, func(p *models.Player) int { return p.Goals }),
		TopAssists:  topPlayersBy(players, func(p *models.Player) int { return p.Assists }),
		YellowCards: topPlayersBy(players, func(p *models.Player) int { return p.YellowCards }),
		RedCards:    topPlayersBy(players, func(p *models.Player) int { return p.RedCards }),
	}
}

func topPlayersBy(players []*models.Player, value func(*models.Player) int) []models.PlayerLeaderboardEntry {
	entries := make([]models.PlayerLeaderboardEntry, 0, len(players))
	for _, p := range players {
		if p == nil {
			continue
		}
		entries = append(entries, models.PlayerLeaderboardEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			TeamID:   p.TeamID,
			Value:    value(p),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	return entries
}

// BuildTeamLeaderboards считает командные топ-5: атака по забитым (убыв.),
// защита по пропущенным (возр.), карточки по событиям матчей (убыв.).
func BuildTeamLeaderboards(teams []*models.Team, matches []*models.Match) models.TeamLeaderboards {
	type teamTotals struct {
		goalsFor     int
		goalsAgainst int
		yellow       int
		red          int
	}

	names := make(map[int]string, len(teams))
	totals := make(map[int]*teamTotals, len(teams))
	order := make([]int, 0, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
		totals[t.ID] = &teamTotals{}
		order = append(order, t.ID)
	}

	for _, m := range matches {
		if m == nil || m.Status != models.MatchStatusCompleted {
			continue
		}
		if home, ok := totals[m.HomeTeamID]; ok {
			home.goalsFor += m.HomeScore
			home.goalsAgainst += m.AwayScore
		}
		if away, ok := totals[m.AwayTeamID]; ok {
			away.goalsFor += m.AwayScore
			away.goalsAgainst += m.HomeScore
		}
		for _, card := range m.YellowCards {
			if t, ok := totals[card.TeamID]; ok {
				t.yellow++
			}
		}
		for _, card := range m.RedCards {
			if t, ok := totals[card.TeamID]; ok {
				t.red++
			}
		}
	}

	build := func(value func(*teamTotals) int, ascending bool) []models.TeamLeaderboardEntry {
		entries := make([]models.TeamLeaderboardEntry, 0, len(order))
		for _, id := range order {
			entries = append(entries, models.TeamLeaderboardEntry{
				TeamID:   id,
				TeamName: names[id],
				Value:    value(totals[id]),
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if ascending {
				return entries[i].Value < entries[j].Value
			}
			return entries[i].Value > entries[j].Value
		})
		if len(entries) > leaderboardSize {
			entries = entries[:leaderboardSize]
		}
		return entries
	}

	return models.TeamLeaderboards{
		Attack:      build(func(t *teamTotals) int { return t.goalsFor }, false),
		Defense:     build(func(t *teamTotals) int { return t.goalsAgainst }, true),
		YellowCards: build(func(t *teamTotals) int { return t.yellow }, false),
		RedCards:    build(func(t *teamTotals) int { return t.red }, false),
	}
}
