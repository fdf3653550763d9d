package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/football-tournament-system/live"
	"github.com/Dosada05/football-tournament-system/models"
)

func newMatchFixture() (*fakeMatchRepo, *fakePlayerRepo) {
	matchRepo := newFakeMatchRepo(&models.Match{
		ID:           1,
		TournamentID: 10,
		HomeTeamID:   100,
		AwayTeamID:   200,
		Status:       models.MatchStatusLive,
	})
	playerRepo := newFakePlayerRepo(
		&models.Player{ID: 1, TeamID: 100, Name: "Home Striker"},
		&models.Player{ID: 2, TeamID: 100, Name: "Home Playmaker"},
		&models.Player{ID: 3, TeamID: 200, Name: "Away Defender"},
		&models.Player{ID: 4, TeamID: 200, Name: "Away Keeper"},
	)
	return matchRepo, playerRepo
}

func newMatchServiceForTest(t *testing.T, matchRepo *fakeMatchRepo, playerRepo *fakePlayerRepo) MatchService {
	t.Helper()
	return NewMatchService(newTestDB(t), matchRepo, playerRepo, live.NewHub(newTestLogger()), newTestLogger())
}

func TestRecordGoalUpdatesScoreAndCounters(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	match, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(1),
		TeamID:     intPtr(100),
		Minute:     intPtr(23),
		Type:       string(models.GoalRegular),
		AssistID:   intPtr(2),
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}

	if match.HomeScore != 1 || match.AwayScore != 0 {
		t.Errorf("score = %d:%d, want 1:0", match.HomeScore, match.AwayScore)
	}
	if len(match.Goals) != 1 {
		t.Fatalf("goal log has %d entries, want 1", len(match.Goals))
	}
	goal := match.Goals[0]
	if goal.PlayerID != 1 || goal.TeamID != 100 || goal.Minute != 23 || goal.Type != models.GoalRegular {
		t.Errorf("unexpected goal event: %+v", goal)
	}
	if goal.AssistID == nil || *goal.AssistID != 2 {
		t.Errorf("assist not recorded in goal event: %+v", goal)
	}

	scorer, _ := playerRepo.GetByID(context.Background(), nil, 1)
	if scorer.Goals != 1 {
		t.Errorf("scorer goals = %d, want 1", scorer.Goals)
	}
	assistant, _ := playerRepo.GetByID(context.Background(), nil, 2)
	if assistant.Assists != 1 {
		t.Errorf("assistant assists = %d, want 1", assistant.Assists)
	}
}

func TestRecordGoalAtMinuteZero(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	match, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(1),
		TeamID:     intPtr(100),
		Minute:     intPtr(0),
		Type:       string(models.GoalRegular),
	})
	if err != nil {
		t.Fatalf("minute 0 must be a valid goal minute: %v", err)
	}
	if match.HomeScore != 1 {
		t.Errorf("home score = %d, want 1", match.HomeScore)
	}
}

func TestRecordOwnGoalCreditsOpponent(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	// Автогол защитника гостей: событие относится к его команде,
	// но очко получают хозяева.
	match, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(3),
		TeamID:     intPtr(200),
		Minute:     intPtr(55),
		Type:       string(models.GoalOwnGoal),
		AssistID:   intPtr(4),
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}

	if match.HomeScore != 1 || match.AwayScore != 0 {
		t.Errorf("score = %d:%d, want 1:0", match.HomeScore, match.AwayScore)
	}
	if len(match.Goals) != 1 {
		t.Fatalf("goal log has %d entries, want 1", len(match.Goals))
	}
	if match.Goals[0].TeamID != 200 {
		t.Errorf("own goal event attributed to team %d, want 200", match.Goals[0].TeamID)
	}
	if match.Goals[0].AssistID != nil {
		t.Errorf("assist must not be recorded for an own goal")
	}

	scorer, _ := playerRepo.GetByID(context.Background(), nil, 3)
	if scorer.Goals != 1 {
		t.Errorf("own goal scorer goals = %d, want 1", scorer.Goals)
	}
	wouldBeAssistant, _ := playerRepo.GetByID(context.Background(), nil, 4)
	if wouldBeAssistant.Assists != 0 {
		t.Errorf("assist counted for own goal: %d", wouldBeAssistant.Assists)
	}
}

func TestRecordPenaltyIgnoresAssist(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	match, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(1),
		TeamID:     intPtr(100),
		Minute:     intPtr(70),
		Type:       string(models.GoalPenalty),
		AssistID:   intPtr(2),
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if match.HomeScore != 1 {
		t.Errorf("home score = %d, want 1", match.HomeScore)
	}
	if match.Goals[0].AssistID != nil {
		t.Errorf("assist must not be recorded for a penalty")
	}
	assistant, _ := playerRepo.GetByID(context.Background(), nil, 2)
	if assistant.Assists != 0 {
		t.Errorf("assist counted for penalty: %d", assistant.Assists)
	}
}

func TestRecordGoalValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload MatchEventPayload
		wantErr error
	}{
		{
			name: "missing player",
			payload: MatchEventPayload{
				UpdateType: EventGoal, TeamID: intPtr(100), Minute: intPtr(10), Type: string(models.GoalRegular),
			},
			wantErr: ErrInvalidEventPayload,
		},
		{
			name: "missing minute",
			payload: MatchEventPayload{
				UpdateType: EventGoal, PlayerID: intPtr(1), TeamID: intPtr(100), Type: string(models.GoalRegular),
			},
			wantErr: ErrInvalidEventPayload,
		},
		{
			name: "negative minute",
			payload: MatchEventPayload{
				UpdateType: EventGoal, PlayerID: intPtr(1), TeamID: intPtr(100), Minute: intPtr(-1), Type: string(models.GoalRegular),
			},
			wantErr: ErrInvalidEventPayload,
		},
		{
			name: "unknown goal type",
			payload: MatchEventPayload{
				UpdateType: EventGoal, PlayerID: intPtr(1), TeamID: intPtr(100), Minute: intPtr(10), Type: "freekick",
			},
			wantErr: ErrInvalidGoalType,
		},
		{
			name: "team not in match",
			payload: MatchEventPayload{
				UpdateType: EventGoal, PlayerID: intPtr(1), TeamID: intPtr(999), Minute: intPtr(10), Type: string(models.GoalRegular),
			},
			wantErr: ErrTeamNotInMatch,
		},
		{
			name:    "unknown update type",
			payload: MatchEventPayload{UpdateType: "timeout"},
			wantErr: ErrInvalidEventPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matchRepo, playerRepo := newMatchFixture()
			svc := newMatchServiceForTest(t, matchRepo, playerRepo)

			_, err := svc.RecordEvent(context.Background(), 1, tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}

			// Отклонённое событие не должно менять ни матч, ни игроков.
			match, _ := matchRepo.GetByID(context.Background(), nil, 1)
			if match.HomeScore != 0 || match.AwayScore != 0 || len(match.Goals) != 0 {
				t.Errorf("rejected event modified the match: %+v", match)
			}
			scorer, _ := playerRepo.GetByID(context.Background(), nil, 1)
			if scorer.Goals != 0 {
				t.Errorf("rejected event modified player counters")
			}
		})
	}
}

func TestRecordCards(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	match, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventCard,
		PlayerID:   intPtr(3),
		TeamID:     intPtr(200),
		Minute:     intPtr(40),
		Type:       string(models.CardYellow),
	})
	if err != nil {
		t.Fatalf("yellow card: %v", err)
	}
	if len(match.YellowCards) != 1 || len(match.RedCards) != 0 {
		t.Fatalf("card logs: yellow=%d red=%d, want 1/0", len(match.YellowCards), len(match.RedCards))
	}
	if match.HomeScore != 0 || match.AwayScore != 0 {
		t.Errorf("card changed the score: %d:%d", match.HomeScore, match.AwayScore)
	}

	match, err = svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventCard,
		PlayerID:   intPtr(3),
		TeamID:     intPtr(200),
		Minute:     intPtr(78),
		Type:       string(models.CardRed),
	})
	if err != nil {
		t.Fatalf("red card: %v", err)
	}
	if len(match.RedCards) != 1 {
		t.Fatalf("red card log has %d entries, want 1", len(match.RedCards))
	}

	player, _ := playerRepo.GetByID(context.Background(), nil, 3)
	if player.YellowCards != 1 || player.RedCards != 1 {
		t.Errorf("player cards = %d yellow / %d red, want 1/1", player.YellowCards, player.RedCards)
	}

	_, err = svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventCard,
		PlayerID:   intPtr(3),
		TeamID:     intPtr(200),
		Minute:     intPtr(80),
		Type:       "blue",
	})
	if !errors.Is(err, ErrInvalidCardColor) {
		t.Fatalf("got error %v, want ErrInvalidCardColor", err)
	}
}

func TestRecordSubstitution(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	match, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType:  EventSubstitution,
		TeamID:      intPtr(100),
		Minute:      intPtr(60),
		PlayerOutID: intPtr(1),
		PlayerInID:  intPtr(2),
	})
	if err != nil {
		t.Fatalf("substitution: %v", err)
	}
	if len(match.Substitutions) != 1 {
		t.Fatalf("substitution log has %d entries, want 1", len(match.Substitutions))
	}
	sub := match.Substitutions[0]
	if sub.PlayerOutID != 1 || sub.PlayerInID != 2 || sub.TeamID != 100 || sub.Minute != 60 {
		t.Errorf("unexpected substitution event: %+v", sub)
	}
	if match.HomeScore != 0 || match.AwayScore != 0 {
		t.Errorf("substitution changed the score")
	}

	for _, id := range []int{1, 2} {
		p, _ := playerRepo.GetByID(context.Background(), nil, id)
		if p.MatchesPlayed != 0 || p.Goals != 0 {
			t.Errorf("substitution changed counters of player %d: %+v", id, p)
		}
	}

	// Без player_in замена не принимается.
	_, err = svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType:  EventSubstitution,
		TeamID:      intPtr(100),
		Minute:      intPtr(61),
		PlayerOutID: intPtr(2),
	})
	if !errors.Is(err, ErrInvalidEventPayload) {
		t.Fatalf("got error %v, want ErrInvalidEventPayload", err)
	}
}

func TestRecordEventOnCompletedMatch(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	matchRepo.matches[1].Status = models.MatchStatusCompleted
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	_, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(1),
		TeamID:     intPtr(100),
		Minute:     intPtr(90),
		Type:       string(models.GoalRegular),
	})
	if !errors.Is(err, ErrMatchFinalized) {
		t.Fatalf("got error %v, want ErrMatchFinalized", err)
	}
}

func TestRecordEventRetriesOnVersionConflict(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	matchRepo.conflictsLeft = 2
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	match, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(1),
		TeamID:     intPtr(100),
		Minute:     intPtr(15),
		Type:       string(models.GoalRegular),
	})
	if err != nil {
		t.Fatalf("RecordEvent after retries: %v", err)
	}
	if matchRepo.updateCalls != 3 {
		t.Errorf("update attempts = %d, want 3", matchRepo.updateCalls)
	}
	if match.HomeScore != 1 || len(match.Goals) != 1 {
		t.Errorf("event applied more than once after retries: score=%d goals=%d", match.HomeScore, len(match.Goals))
	}
}

func TestRecordEventConflictExhaustsRetries(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	matchRepo.conflictsLeft = maxConflictRetries
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	_, err := svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(1),
		TeamID:     intPtr(100),
		Minute:     intPtr(15),
		Type:       string(models.GoalRegular),
	})
	if !errors.Is(err, ErrMatchUpdateConflict) {
		t.Fatalf("got error %v, want ErrMatchUpdateConflict", err)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.MatchStatus
		to      models.MatchStatus
		wantErr error
	}{
		{name: "upcoming to live", from: models.MatchStatusUpcoming, to: models.MatchStatusLive},
		{name: "upcoming to completed", from: models.MatchStatusUpcoming, to: models.MatchStatusCompleted},
		{name: "live to completed", from: models.MatchStatusLive, to: models.MatchStatusCompleted},
		{name: "same status is a no-op", from: models.MatchStatusLive, to: models.MatchStatusLive},
		{name: "completed back to live", from: models.MatchStatusCompleted, to: models.MatchStatusLive, wantErr: ErrInvalidStatusTransition},
		{name: "live back to upcoming", from: models.MatchStatusLive, to: models.MatchStatusUpcoming, wantErr: ErrInvalidStatusTransition},
		{name: "unknown status", from: models.MatchStatusUpcoming, to: "postponed", wantErr: ErrInvalidMatchStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matchRepo, playerRepo := newMatchFixture()
			matchRepo.matches[1].Status = tt.from
			svc := newMatchServiceForTest(t, matchRepo, playerRepo)

			match, err := svc.SetStatus(context.Background(), 1, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetStatus: %v", err)
			}
			if match.Status != tt.to {
				t.Errorf("status = %s, want %s", match.Status, tt.to)
			}
		})
	}
}

func TestUpdateResultOverwritesAndFreezes(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	match, err := svc.UpdateResult(context.Background(), 1, 4, 2)
	if err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}
	if match.HomeScore != 4 || match.AwayScore != 2 {
		t.Errorf("score = %d:%d, want 4:2", match.HomeScore, match.AwayScore)
	}
	if match.Status != models.MatchStatusCompleted {
		t.Errorf("status = %s, want completed", match.Status)
	}

	// Ручной результат замораживает живые события.
	_, err = svc.RecordEvent(context.Background(), 1, MatchEventPayload{
		UpdateType: EventGoal,
		PlayerID:   intPtr(1),
		TeamID:     intPtr(100),
		Minute:     intPtr(90),
		Type:       string(models.GoalRegular),
	})
	if !errors.Is(err, ErrMatchFinalized) {
		t.Fatalf("got error %v, want ErrMatchFinalized", err)
	}
}

func TestUpdateResultRejectsNegativeScore(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	if _, err := svc.UpdateResult(context.Background(), 1, -1, 0); !errors.Is(err, ErrNegativeScore) {
		t.Fatalf("got error %v, want ErrNegativeScore", err)
	}
}

func TestMarkPlayersPlayedIdempotent(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	// Дубликат внутри одной отправки считается один раз.
	match, err := svc.MarkPlayersPlayed(context.Background(), 1, []int{1, 2, 1})
	if err != nil {
		t.Fatalf("MarkPlayersPlayed: %v", err)
	}
	if len(match.PlayedPlayerIDs) != 2 {
		t.Fatalf("played set has %d entries, want 2", len(match.PlayedPlayerIDs))
	}

	// Повторная отправка пересечением не инкрементирует заново.
	match, err = svc.MarkPlayersPlayed(context.Background(), 1, []int{2, 3})
	if err != nil {
		t.Fatalf("MarkPlayersPlayed (second): %v", err)
	}
	if len(match.PlayedPlayerIDs) != 3 {
		t.Fatalf("played set has %d entries, want 3", len(match.PlayedPlayerIDs))
	}

	for id, want := range map[int]int{1: 1, 2: 1, 3: 1, 4: 0} {
		p, _ := playerRepo.GetByID(context.Background(), nil, id)
		if p.MatchesPlayed != want {
			t.Errorf("player %d matches_played = %d, want %d", id, p.MatchesPlayed, want)
		}
	}

	if _, err := svc.MarkPlayersPlayed(context.Background(), 1, nil); !errors.Is(err, ErrPlayersListRequired) {
		t.Fatalf("got error %v, want ErrPlayersListRequired", err)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	matchRepo, playerRepo := newMatchFixture()
	svc := newMatchServiceForTest(t, matchRepo, playerRepo)

	if _, err := svc.GetMatch(context.Background(), 404); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("got error %v, want ErrMatchNotFound", err)
	}
}
