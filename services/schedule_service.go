package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/football-tournament-system/live"
	"github.com/Dosada05/football-tournament-system/models"
	"github.com/Dosada05/football-tournament-system/repositories"
	"github.com/Dosada05/football-tournament-system/schedule"
)

type ScheduleService interface {
	// GenerateSchedule генерирует и сохраняет расписание турнира.
	// Повторный вызов для турнира с уже созданными матчами отклоняется.
	GenerateSchedule(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type scheduleService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	hub            *live.Hub
	logger         *slog.Logger
}

func NewScheduleService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	hub *live.Hub,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *scheduleService) GenerateSchedule(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}

	existing, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("check existing matches for tournament %d: %w", tournamentID, err)
	}
	if len(existing) > 0 {
		return nil, ErrScheduleAlreadyGenerated
	}

	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams for tournament %d: %w", tournamentID, err)
	}
	if len(teams) == 0 {
		// Ноль команд - пустое расписание, не ошибка.
		return []*models.Match{}, nil
	}

	generator, ok := schedule.ForFormat(tournament.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, tournament.Format)
	}

	drafts, err := generator.GenerateFixtures(ctx, schedule.GenerateFixturesParams{
		Tournament: tournament,
		Teams:      teams,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s fixtures for tournament %d: %w", generator.GetName(), tournamentID, err)
	}

	matches := make([]*models.Match, 0, len(drafts))
	for _, d := range drafts {
		if d.IsBye {
			// Команда проходит дальше без игры, матч в БД не создаётся.
			s.logger.Info("bye assigned",
				slog.Int("tournament_id", tournamentID),
				slog.Int("team_id", d.HomeTeamID))
			continue
		}
		matches = append(matches, &models.Match{
			TournamentID: tournamentID,
			HomeTeamID:   d.HomeTeamID,
			AwayTeamID:   *d.AwayTeamID,
			Date:         tournament.StartDate,
			Status:       models.MatchStatusUpcoming,
		})
	}

	if len(matches) > 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}
		if err := s.matchRepo.BatchCreate(ctx, tx, matches); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed after schedule insert error",
					slog.Int("tournament_id", tournamentID), slog.Any("error", rbErr))
			}
			return nil, fmt.Errorf("persist schedule for tournament %d: %w", tournamentID, err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit schedule for tournament %d: %w", tournamentID, err)
		}
	}

	s.logger.Info("schedule generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", string(tournament.Format)),
		slog.Int("matches", len(matches)))

	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Message{
		Type:    live.MessageScheduleGenerated,
		Payload: matches,
	})

	return matches, nil
}
