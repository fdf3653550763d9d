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
)

// maxConflictRetries - сколько раз перечитать матч и повторить условную
// запись, прежде чем отдать конфликт наружу.
const maxConflictRetries = 3

type EventType string

const (
	EventGoal         EventType = "goal"
	EventCard         EventType = "card"
	EventSubstitution EventType = "substitution"
)

// MatchEventPayload - сырой payload живого события. Числовые поля -
// указатели, чтобы отличать "не передано" от нуля (минута 0 валидна).
type MatchEventPayload struct {
	UpdateType  EventType `json:"update_type"`
	PlayerID    *int      `json:"player_id,omitempty"`
	TeamID      *int      `json:"team_id,omitempty"`
	Minute      *int      `json:"minute,omitempty"`
	Type        string    `json:"type,omitempty"`
	AssistID    *int      `json:"assist_id,omitempty"`
	PlayerInID  *int      `json:"player_in_id,omitempty"`
	PlayerOutID *int      `json:"player_out_id,omitempty"`
}

type MatchService interface {
	// RecordEvent применяет живое событие: дописывает его в журнал матча,
	// пересчитывает счёт и инкрементирует счётчики игроков - всё в одной
	// транзакции. Матч и счётчики либо сохраняются вместе, либо событие
	// отклоняется целиком.
	RecordEvent(ctx context.Context, matchID int, payload MatchEventPayload) (*models.Match, error)
	SetStatus(ctx context.Context, matchID int, status models.MatchStatus) (*models.Match, error)
	// UpdateResult вручную перезаписывает счёт и переводит матч в completed.
	// После этого RecordEvent для матча отклоняется: ручной результат
	// замораживает инкрементальные обновления.
	UpdateResult(ctx context.Context, matchID int, homeScore, awayScore int) (*models.Match, error)
	// MarkPlayersPlayed инкрементирует matches_played для перечисленных
	// игроков. Идемпотентна: игрок, уже отмеченный по этому матчу,
	// повторно не засчитывается.
	MarkPlayersPlayed(ctx context.Context, matchID int, playerIDs []int) (*models.Match, error)
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type matchService struct {
	db         *sql.DB
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	hub        *live.Hub
	logger     *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	hub *live.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:         db,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		hub:        hub,
		logger:     logger,
	}
}

// counterDelta - инкремент счётчиков одного игрока, применяемый в той же
// транзакции, что и запись матча.
type counterDelta struct {
	playerID int
	deltas   models.PlayerStatDeltas
}

func (s *matchService) RecordEvent(ctx context.Context, matchID int, payload MatchEventPayload) (*models.Match, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		match, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if match.Status == models.MatchStatusCompleted {
			return nil, ErrMatchFinalized
		}

		counters, err := applyEvent(match, payload)
		if err != nil {
			return nil, err
		}

		err = s.saveMatch(ctx, match, counters)
		if err == nil {
			s.broadcastMatch(match)
			return match, nil
		}
		if !errors.Is(err, repositories.ErrMatchVersionConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("match event write conflict, retrying",
			slog.Int("match_id", matchID), slog.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("%w: %v", ErrMatchUpdateConflict, lastErr)
}

// applyEvent валидирует payload, дописывает событие в журналы матча,
// обновляет счёт и возвращает инкременты счётчиков игроков.
func applyEvent(match *models.Match, payload MatchEventPayload) ([]counterDelta, error) {
	switch payload.UpdateType {
	case EventGoal:
		return applyGoal(match, payload)
	case EventCard:
		return applyCard(match, payload)
	case EventSubstitution:
		return applySubstitution(match, payload)
	}
	return nil, fmt.Errorf("%w: unknown update type %q", ErrInvalidEventPayload, payload.UpdateType)
}

func applyGoal(match *models.Match, payload MatchEventPayload) ([]counterDelta, error) {
	if payload.PlayerID == nil || payload.TeamID == nil || payload.Minute == nil {
		return nil, fmt.Errorf("%w: player, team and minute are required for a goal", ErrInvalidEventPayload)
	}
	if *payload.Minute < 0 {
		return nil, fmt.Errorf("%w: minute must be non-negative", ErrInvalidEventPayload)
	}
	if err := checkTeamInMatch(match, *payload.TeamID); err != nil {
		return nil, err
	}
	goalType := models.GoalType(payload.Type)
	if !goalType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGoalType, payload.Type)
	}

	event := models.GoalEvent{
		PlayerID: *payload.PlayerID,
		TeamID:   *payload.TeamID,
		Minute:   *payload.Minute,
		Type:     goalType,
	}

	// Автогол приносит очко сопернику команды события; обычный гол и
	// пенальти - самой команде.
	scoringTeam := *payload.TeamID
	if goalType == models.GoalOwnGoal {
		scoringTeam = opponentOf(match, *payload.TeamID)
	}
	if scoringTeam == match.HomeTeamID {
		match.HomeScore++
	} else {
		match.AwayScore++
	}

	counters := []counterDelta{
		{playerID: *payload.PlayerID, deltas: models.PlayerStatDeltas{Goals: 1}},
	}

	// Ассист учитывается только для обычного гола.
	if payload.AssistID != nil && goalType == models.GoalRegular {
		event.AssistID = payload.AssistID
		counters = append(counters, counterDelta{
			playerID: *payload.AssistID,
			deltas:   models.PlayerStatDeltas{Assists: 1},
		})
	}

	match.Goals = append(match.Goals, event)
	return counters, nil
}

func applyCard(match *models.Match, payload MatchEventPayload) ([]counterDelta, error) {
	if payload.PlayerID == nil || payload.TeamID == nil || payload.Minute == nil {
		return nil, fmt.Errorf("%w: player, team and minute are required for a card", ErrInvalidEventPayload)
	}
	if *payload.Minute < 0 {
		return nil, fmt.Errorf("%w: minute must be non-negative", ErrInvalidEventPayload)
	}
	if err := checkTeamInMatch(match, *payload.TeamID); err != nil {
		return nil, err
	}

	event := models.CardEvent{
		PlayerID: *payload.PlayerID,
		TeamID:   *payload.TeamID,
		Minute:   *payload.Minute,
	}

	switch models.CardColor(payload.Type) {
	case models.CardYellow:
		match.YellowCards = append(match.YellowCards, event)
		return []counterDelta{{playerID: *payload.PlayerID, deltas: models.PlayerStatDeltas{YellowCards: 1}}}, nil
	case models.CardRed:
		match.RedCards = append(match.RedCards, event)
		return []counterDelta{{playerID: *payload.PlayerID, deltas: models.PlayerStatDeltas{RedCards: 1}}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidCardColor, payload.Type)
}

func applySubstitution(match *models.Match, payload MatchEventPayload) ([]counterDelta, error) {
	if payload.PlayerInID == nil || payload.PlayerOutID == nil || payload.TeamID == nil || payload.Minute == nil {
		return nil, fmt.Errorf("%w: playerIn, playerOut, team and minute are required for a substitution", ErrInvalidEventPayload)
	}
	if *payload.Minute < 0 {
		return nil, fmt.Errorf("%w: minute must be non-negative", ErrInvalidEventPayload)
	}
	if err := checkTeamInMatch(match, *payload.TeamID); err != nil {
		return nil, err
	}

	match.Substitutions = append(match.Substitutions, models.SubstitutionEvent{
		PlayerOutID: *payload.PlayerOutID,
		PlayerInID:  *payload.PlayerInID,
		TeamID:      *payload.TeamID,
		Minute:      *payload.Minute,
	})
	// Замена не меняет ни счёт, ни счётчики игроков.
	return nil, nil
}

func checkTeamInMatch(match *models.Match, teamID int) error {
	if teamID != match.HomeTeamID && teamID != match.AwayTeamID {
		return fmt.Errorf("%w: team %d in match %d", ErrTeamNotInMatch, teamID, match.ID)
	}
	return nil
}

func opponentOf(match *models.Match, teamID int) int {
	if teamID == match.HomeTeamID {
		return match.AwayTeamID
	}
	return match.HomeTeamID
}

var matchStatusTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusUpcoming:  {models.MatchStatusLive, models.MatchStatusCompleted},
	models.MatchStatusLive:      {models.MatchStatusCompleted},
	models.MatchStatusCompleted: {},
}

func isValidStatusTransition(current, next models.MatchStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range matchStatusTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func (s *matchService) SetStatus(ctx context.Context, matchID int, status models.MatchStatus) (*models.Match, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMatchStatus, status)
	}
	return s.mutate(ctx, matchID, func(match *models.Match) error {
		if !isValidStatusTransition(match.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, match.Status, status)
		}
		match.Status = status
		return nil
	}, nil)
}

func (s *matchService) UpdateResult(ctx context.Context, matchID int, homeScore, awayScore int) (*models.Match, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrNegativeScore
	}
	return s.mutate(ctx, matchID, func(match *models.Match) error {
		match.HomeScore = homeScore
		match.AwayScore = awayScore
		match.Status = models.MatchStatusCompleted
		return nil
	}, nil)
}

func (s *matchService) MarkPlayersPlayed(ctx context.Context, matchID int, playerIDs []int) (*models.Match, error) {
	if len(playerIDs) == 0 {
		return nil, ErrPlayersListRequired
	}
	var counters []counterDelta
	return s.mutate(ctx, matchID, func(match *models.Match) error {
		counters = counters[:0]
		seen := make(map[int]bool, len(playerIDs))
		for _, id := range playerIDs {
			if seen[id] || match.HasPlayed(id) {
				continue
			}
			seen[id] = true
			match.PlayedPlayerIDs = append(match.PlayedPlayerIDs, id)
			counters = append(counters, counterDelta{
				playerID: id,
				deltas:   models.PlayerStatDeltas{MatchesPlayed: 1},
			})
		}
		return nil
	}, func() []counterDelta { return counters })
}

// mutate выполняет изменение матча с перечитыванием и ограниченным числом
// повторов при конфликте версий. countersFn, если задана, возвращает
// инкременты игроков, применяемые в той же транзакции.
func (s *matchService) mutate(ctx context.Context, matchID int, change func(*models.Match) error, countersFn func() []counterDelta) (*models.Match, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		match, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if err := change(match); err != nil {
			return nil, err
		}
		var counters []counterDelta
		if countersFn != nil {
			counters = countersFn()
		}
		err = s.saveMatch(ctx, match, counters)
		if err == nil {
			s.broadcastMatch(match)
			return match, nil
		}
		if !errors.Is(err, repositories.ErrMatchVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrMatchUpdateConflict, lastErr)
}

func (s *matchService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match %d: %w", matchID, err)
	}
	return match, nil
}

// saveMatch пишет матч и инкременты счётчиков одной транзакцией.
func (s *matchService) saveMatch(ctx context.Context, match *models.Match, counters []counterDelta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := s.matchRepo.UpdateConditional(ctx, tx, match); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", slog.Int("match_id", match.ID), slog.Any("error", rbErr))
		}
		return err
	}
	for _, c := range counters {
		if err := s.playerRepo.IncrementStats(ctx, tx, c.playerID, c.deltas); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Int("match_id", match.ID), slog.Any("error", rbErr))
			}
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: player %d", ErrPlayerNotFound, c.playerID)
			}
			return fmt.Errorf("increment stats for player %d: %w", c.playerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match %d update: %w", match.ID, err)
	}
	return nil
}

func (s *matchService) broadcastMatch(match *models.Match) {
	s.hub.BroadcastToRoom(live.TournamentRoom(match.TournamentID), live.Message{
		Type:    live.MessageMatchUpdated,
		Payload: match,
	})
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	return s.loadMatch(ctx, matchID)
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list matches for tournament %d: %w", tournamentID, err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}
