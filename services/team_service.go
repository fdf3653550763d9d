package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournament-system/models"
	"github.com/Dosada05/football-tournament-system/repositories"
	"github.com/Dosada05/football-tournament-system/storage"
	"github.com/google/uuid"
)

type RegisterTeamInput struct {
	Name    string  `json:"name"`
	Manager string  `json:"manager"`
	Contact *string `json:"contact,omitempty"`
	Email   *string `json:"email,omitempty"`
}

type NewPlayerInput struct {
	Name          string                `json:"name"`
	JerseyNumber  int                   `json:"jersey_number"`
	Position      models.PlayerPosition `json:"position"`
	IsCaptain     bool                  `json:"is_captain"`
	IsViceCaptain bool                  `json:"is_vice_captain"`
}

type TeamService interface {
	// Register регистрирует команду в турнире. Окно регистрации должно
	// быть открыто, лимит команд - не исчерпан.
	Register(ctx context.Context, tournamentID int, createdBy int, input RegisterTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	// AddPlayers добавляет пачку игроков в заявку. Пачка валидируется как
	// единое целое: при любой ошибке не сохраняется ни один игрок.
	AddPlayers(ctx context.Context, teamID int, inputs []NewPlayerInput) (*models.Team, error)
	GetPlayer(ctx context.Context, playerID int) (*models.Player, error)
	Delete(ctx context.Context, teamID int, currentUserID int) error
	UploadCrest(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	db             *sql.DB
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:             db,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *teamService) Register(ctx context.Context, tournamentID int, createdBy int, input RegisterTeamInput) (*models.Team, error) {
	if input.Name == "" || input.Manager == "" {
		return nil, ErrTeamNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}

	now := time.Now()
	if now.Before(tournament.RegistrationStart) || now.After(tournament.RegistrationClose) {
		return nil, ErrRegistrationNotOpen
	}

	count, err := s.teamRepo.CountByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("count teams for tournament %d: %w", tournamentID, err)
	}
	if tournament.NumTeams > 0 && count >= tournament.NumTeams {
		return nil, ErrRegistrationFull
	}

	team := &models.Team{
		Name:         input.Name,
		TournamentID: tournamentID,
		Manager:      input.Manager,
		Contact:      input.Contact,
		Email:        input.Email,
		CreatedBy:    createdBy,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	s.logger.Info("team registered",
		slog.Int("team_id", team.ID),
		slog.Int("tournament_id", tournamentID))
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team %d: %w", id, err)
	}

	players, err := s.playerRepo.ListByTeam(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list players for team %d: %w", id, err)
	}
	team.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		if p != nil {
			team.Players = append(team.Players, *p)
		}
	}
	s.populateCrestURL(team)
	return team, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams for tournament %d: %w", tournamentID, err)
	}
	for _, t := range teams {
		s.populateCrestURL(t)
	}
	return teams, nil
}

// AddPlayers проверяет пачку целиком до записи: размер заявки, уникальность
// игровых номеров (включая номера внутри самой пачки), не больше одного
// капитана и вице-капитана на команду. Любое нарушение отклоняет всю пачку.
func (s *teamService) AddPlayers(ctx context.Context, teamID int, inputs []NewPlayerInput) (*models.Team, error) {
	if len(inputs) == 0 {
		return nil, ErrPlayersListRequired
	}

	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team %d: %w", teamID, err)
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, team.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("load tournament %d: %w", team.TournamentID, err)
	}
	existing, err := s.playerRepo.ListByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("list players for team %d: %w", teamID, err)
	}

	if len(existing)+len(inputs) > tournament.MaxRosterSize() {
		return nil, fmt.Errorf("%w: roster limit is %d players", ErrRosterFull, tournament.MaxRosterSize())
	}

	takenNumbers := make(map[int]bool, len(existing))
	hasCaptain := false
	hasViceCaptain := false
	for _, p := range existing {
		takenNumbers[p.JerseyNumber] = true
		hasCaptain = hasCaptain || p.IsCaptain
		hasViceCaptain = hasViceCaptain || p.IsViceCaptain
	}

	players := make([]*models.Player, 0, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: player name is required", ErrValidationFailed)
		}
		if !in.Position.Valid() {
			return nil, fmt.Errorf("%w: invalid position %q", ErrValidationFailed, in.Position)
		}
		if in.JerseyNumber < 0 {
			return nil, fmt.Errorf("%w: jersey number must be non-negative", ErrValidationFailed)
		}
		if takenNumbers[in.JerseyNumber] {
			return nil, fmt.Errorf("%w: number %d", ErrJerseyNumberConflict, in.JerseyNumber)
		}
		takenNumbers[in.JerseyNumber] = true

		if in.IsCaptain {
			if hasCaptain {
				return nil, ErrCaptainConflict
			}
			hasCaptain = true
		}
		if in.IsViceCaptain {
			if hasViceCaptain {
				return nil, ErrViceCaptainConflict
			}
			hasViceCaptain = true
		}

		players = append(players, &models.Player{
			TeamID:        teamID,
			Name:          in.Name,
			JerseyNumber:  in.JerseyNumber,
			Position:      in.Position,
			IsCaptain:     in.IsCaptain,
			IsViceCaptain: in.IsViceCaptain,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.playerRepo.BatchCreate(ctx, tx, players); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", slog.Int("team_id", teamID), slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("add players to team %d: %w", teamID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit players for team %d: %w", teamID, err)
	}

	s.logger.Info("players added",
		slog.Int("team_id", teamID),
		slog.Int("count", len(players)))
	return s.GetByID(ctx, teamID)
}

func (s *teamService) GetPlayer(ctx context.Context, playerID int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player %d: %w", playerID, err)
	}
	return player, nil
}

// Delete удаляет команду. Игроки и сыгранные матчи не каскадируются -
// историческая статистика остаётся.
func (s *teamService) Delete(ctx context.Context, teamID int, currentUserID int) error {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("get team %d: %w", teamID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, team.TournamentID)
	if err != nil {
		return fmt.Errorf("load tournament %d: %w", team.TournamentID, err)
	}
	if team.CreatedBy != currentUserID && tournament.OrganizerID != currentUserID {
		return ErrForbiddenOperation
	}

	if err := s.teamRepo.Delete(ctx, nil, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("delete team %d: %w", teamID, err)
	}
	s.logger.Info("team deleted", slog.Int("team_id", teamID))
	return nil
}

func (s *teamService) UploadCrest(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team %d: %w", teamID, err)
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrestContentTypeForbidden, err)
	}

	key := fmt.Sprintf("crests/%d/%s%s", teamID, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("upload crest for team %d: %w", teamID, err)
	}

	oldKey := team.CrestKey
	if err := s.teamRepo.UpdateCrestKey(ctx, nil, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("save crest key for team %d: %w", teamID, err)
	}
	team.CrestKey = &result.Key

	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous crest",
				slog.Int("team_id", teamID), slog.Any("error", delErr))
		}
	}

	s.populateCrestURL(team)
	return team, nil
}

func (s *teamService) populateCrestURL(team *models.Team) {
	if team == nil || team.CrestKey == nil || *team.CrestKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.CrestKey); url != "" {
		team.CrestURL = &url
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && parts[0] == "image" && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type %q", contentType)
	}
}
