package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/football-tournament-system/models"
	"github.com/lib/pq"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, players []*models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.Player, error)
	// ListByTeams загружает игроков всех перечисленных команд одним запросом.
	ListByTeams(ctx context.Context, exec SQLExecutor, teamIDs []int) ([]*models.Player, error)
	ListAll(ctx context.Context, exec SQLExecutor) ([]*models.Player, error)
	// IncrementStats - единственный путь изменения счётчиков игрока.
	IncrementStats(ctx context.Context, exec SQLExecutor, playerID int, deltas models.PlayerStatDeltas) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, team_id, name, jersey_number, position, is_captain, is_vice_captain,
	matches_played, goals, assists, yellow_cards, red_cards`

func (r *postgresPlayerRepository) BatchCreate(ctx context.Context, exec SQLExecutor, players []*models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players
		    (team_id, name, jersey_number, position, is_captain, is_vice_captain,
		     matches_played, goals, assists, yellow_cards, red_cards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	for _, p := range players {
		err := executor.QueryRowContext(ctx, query,
			p.TeamID, p.Name, p.JerseyNumber, p.Position, p.IsCaptain, p.IsViceCaptain,
			p.MatchesPlayed, p.Goals, p.Assists, p.YellowCards, p.RedCards,
		).Scan(&p.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(rowScanner interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := rowScanner.Scan(
		&p.ID, &p.TeamID, &p.Name, &p.JerseyNumber, &p.Position, &p.IsCaptain, &p.IsViceCaptain,
		&p.MatchesPlayed, &p.Goals, &p.Assists, &p.YellowCards, &p.RedCards,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 ORDER BY jersey_number ASC`
	rows, err := executor.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresPlayerRepository) ListByTeams(ctx context.Context, exec SQLExecutor, teamIDs []int) ([]*models.Player, error) {
	if len(teamIDs) == 0 {
		return []*models.Player{}, nil
	}
	executor := r.getExecutor(exec)
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = ANY($1) ORDER BY team_id ASC, jersey_number ASC`
	rows, err := executor.QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresPlayerRepository) ListAll(ctx context.Context, exec SQLExecutor) ([]*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY id ASC`
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresPlayerRepository) collect(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := r.scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) IncrementStats(ctx context.Context, exec SQLExecutor, playerID int, deltas models.PlayerStatDeltas) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE players SET
			matches_played = matches_played + $1,
			goals = goals + $2,
			assists = assists + $3,
			yellow_cards = yellow_cards + $4,
			red_cards = red_cards + $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		deltas.MatchesPlayed, deltas.Goals, deltas.Assists, deltas.YellowCards, deltas.RedCards,
		playerID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
