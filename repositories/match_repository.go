package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/football-tournament-system/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchVersionConflict - условная запись не прошла: матч изменён
	// другим запросом после чтения.
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
)

type MatchRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	// UpdateConditional пишет изменяемые поля матча при совпадении версии,
	// версия инкрементируется. При несовпадении - ErrMatchVersionConflict.
	UpdateConditional(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, home_team_id, away_team_id, date, status,
	home_score, away_score, goals, yellow_cards, red_cards, substitutions,
	played_player_ids, version, created_at`

type matchEventLogs struct {
	goals         []byte
	yellowCards   []byte
	redCards      []byte
	substitutions []byte
	playedPlayers []byte
}

func marshalEventLogs(m *models.Match) (*matchEventLogs, error) {
	logs := &matchEventLogs{}
	var err error
	if logs.goals, err = json.Marshal(nonNilGoals(m.Goals)); err != nil {
		return nil, fmt.Errorf("marshal goals: %w", err)
	}
	if logs.yellowCards, err = json.Marshal(nonNilCards(m.YellowCards)); err != nil {
		return nil, fmt.Errorf("marshal yellow cards: %w", err)
	}
	if logs.redCards, err = json.Marshal(nonNilCards(m.RedCards)); err != nil {
		return nil, fmt.Errorf("marshal red cards: %w", err)
	}
	if logs.substitutions, err = json.Marshal(nonNilSubs(m.Substitutions)); err != nil {
		return nil, fmt.Errorf("marshal substitutions: %w", err)
	}
	played := m.PlayedPlayerIDs
	if played == nil {
		played = []int{}
	}
	if logs.playedPlayers, err = json.Marshal(played); err != nil {
		return nil, fmt.Errorf("marshal played players: %w", err)
	}
	return logs, nil
}

func nonNilGoals(s []models.GoalEvent) []models.GoalEvent {
	if s == nil {
		return []models.GoalEvent{}
	}
	return s
}

func nonNilCards(s []models.CardEvent) []models.CardEvent {
	if s == nil {
		return []models.CardEvent{}
	}
	return s
}

func nonNilSubs(s []models.SubstitutionEvent) []models.SubstitutionEvent {
	if s == nil {
		return []models.SubstitutionEvent{}
	}
	return s
}

func (r *postgresMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
		    (tournament_id, home_team_id, away_team_id, date, status,
		     home_score, away_score, goals, yellow_cards, red_cards, substitutions,
		     played_player_ids, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	for _, m := range matches {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		logs, err := marshalEventLogs(m)
		if err != nil {
			return err
		}
		err = executor.QueryRowContext(ctx, query,
			m.TournamentID, m.HomeTeamID, m.AwayTeamID, m.Date, m.Status,
			m.HomeScore, m.AwayScore, logs.goals, logs.yellowCards, logs.redCards,
			logs.substitutions, logs.playedPlayers, m.Version, m.CreatedAt,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert match %s: %w", matchTeamsLabel(m), err)
		}
	}
	return nil
}

func matchTeamsLabel(m *models.Match) string {
	return fmt.Sprintf("%d-%d", m.HomeTeamID, m.AwayTeamID)
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var goals, yellow, red, subs, played []byte
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &m.Date, &m.Status,
		&m.HomeScore, &m.AwayScore, &goals, &yellow, &red, &subs, &played,
		&m.Version, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if err := unmarshalLog(goals, &m.Goals); err != nil {
		return nil, fmt.Errorf("unmarshal goals for match %d: %w", m.ID, err)
	}
	if err := unmarshalLog(yellow, &m.YellowCards); err != nil {
		return nil, fmt.Errorf("unmarshal yellow cards for match %d: %w", m.ID, err)
	}
	if err := unmarshalLog(red, &m.RedCards); err != nil {
		return nil, fmt.Errorf("unmarshal red cards for match %d: %w", m.ID, err)
	}
	if err := unmarshalLog(subs, &m.Substitutions); err != nil {
		return nil, fmt.Errorf("unmarshal substitutions for match %d: %w", m.ID, err)
	}
	if err := unmarshalLog(played, &m.PlayedPlayerIDs); err != nil {
		return nil, fmt.Errorf("unmarshal played players for match %d: %w", m.ID, err)
	}
	return &m, nil
}

func unmarshalLog(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY date ASC, id ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateConditional(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	logs, err := marshalEventLogs(match)
	if err != nil {
		return err
	}
	query := `
		UPDATE matches SET
			status = $1, home_score = $2, away_score = $3,
			goals = $4, yellow_cards = $5, red_cards = $6, substitutions = $7,
			played_player_ids = $8, version = version + 1
		WHERE id = $9 AND version = $10`
	result, err := executor.ExecContext(ctx, query,
		match.Status, match.HomeScore, match.AwayScore,
		logs.goals, logs.yellowCards, logs.redCards, logs.substitutions,
		logs.playedPlayers,
		match.ID, match.Version,
	)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrMatchVersionConflict); err != nil {
		return err
	}
	match.Version++
	return nil
}

func (r *postgresMatchRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}
