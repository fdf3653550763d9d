package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/football-tournament-system/models"
	"github.com/Dosada05/football-tournament-system/repositories"
)

var validSquadSizes = map[int]bool{5: true, 6: true, 7: true, 11: true}

type TournamentService interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	ListByOrganizer(ctx context.Context, organizerID int) ([]*models.Tournament, error)
	// Delete удаляет турнир вместе со всеми его матчами. Разрешено только
	// организатору турнира.
	Delete(ctx context.Context, id int, currentUserID int) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, tournament *models.Tournament) error {
	if tournament.Name == "" {
		return ErrTournamentNameRequired
	}
	if !tournament.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrTournamentInvalidFormat, tournament.Format)
	}
	if tournament.FaceToFaceMatches == "" {
		tournament.FaceToFaceMatches = models.FaceToFaceSingle
	}
	if !tournament.FaceToFaceMatches.Valid() {
		return fmt.Errorf("%w: face_to_face_matches must be \"1\" or \"2\"", ErrValidationFailed)
	}
	if !validSquadSizes[tournament.NumPlayers] {
		return fmt.Errorf("%w: num_players must be one of 5, 6, 7, 11", ErrTournamentInvalidRoster)
	}
	if tournament.NumSubs < 1 || tournament.NumSubs > 8 {
		return fmt.Errorf("%w: num_subs must be between 1 and 8", ErrTournamentInvalidRoster)
	}
	if !tournament.VenueMode.Valid() {
		return fmt.Errorf("%w: invalid venue_mode %q", ErrValidationFailed, tournament.VenueMode)
	}
	if tournament.RegistrationStart.IsZero() || tournament.RegistrationClose.IsZero() || tournament.StartDate.IsZero() {
		return ErrTournamentDatesRequired
	}

	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("format", string(tournament.Format)))
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("get tournament %d: %w", id, err)
	}

	teams, err := s.teamRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list teams for tournament %d: %w", id, err)
	}
	tournament.Teams = make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if t != nil {
			tournament.Teams = append(tournament.Teams, *t)
		}
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) ListByOrganizer(ctx context.Context, organizerID int) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListByOrganizer(ctx, nil, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list tournaments for organizer %d: %w", organizerID, err)
	}
	return tournaments, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int, currentUserID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("get tournament %d: %w", id, err)
	}
	if tournament.OrganizerID != currentUserID {
		return ErrForbiddenOperation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.matchRepo.DeleteByTournamentID(ctx, tx, id); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", slog.Int("tournament_id", id), slog.Any("error", rbErr))
		}
		return fmt.Errorf("delete matches for tournament %d: %w", id, err)
	}
	if err := s.tournamentRepo.Delete(ctx, tx, id); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", slog.Int("tournament_id", id), slog.Any("error", rbErr))
		}
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("delete tournament %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tournament %d delete: %w", id, err)
	}

	s.logger.Info("tournament deleted", slog.Int("tournament_id", id))
	return nil
}
