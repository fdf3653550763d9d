package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/football-tournament-system/models"
	"github.com/Dosada05/football-tournament-system/storage"
)

type fakeUploader struct {
	uploaded []string
	deleted  []string
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.uploaded = append(u.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func openTournament() *models.Tournament {
	now := time.Now()
	return &models.Tournament{
		ID:                10,
		Name:              "Spring Cup",
		Format:            models.FormatLeague,
		NumPlayers:        5,
		NumSubs:           2,
		NumTeams:          2,
		OrganizerID:       1,
		RegistrationStart: now.Add(-time.Hour),
		RegistrationClose: now.Add(time.Hour),
		StartDate:         now.Add(48 * time.Hour),
	}
}

func newTeamServiceForTest(t *testing.T, tournamentRepo *fakeTournamentRepo, teamRepo *fakeTeamRepo, playerRepo *fakePlayerRepo, uploader storage.FileUploader) TeamService {
	t.Helper()
	return NewTeamService(newTestDB(t), teamRepo, tournamentRepo, playerRepo, uploader, newTestLogger())
}

func TestRegisterTeam(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(openTournament())
	teamRepo := newFakeTeamRepo()
	svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, newFakePlayerRepo(), &fakeUploader{})

	team, err := svc.Register(context.Background(), 10, 42, RegisterTeamInput{Name: "Rovers", Manager: "Lee"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if team.ID == 0 || team.TournamentID != 10 || team.CreatedBy != 42 {
		t.Errorf("unexpected team: %+v", team)
	}

	if _, err := svc.Register(context.Background(), 10, 42, RegisterTeamInput{Manager: "Lee"}); !errors.Is(err, ErrTeamNameRequired) {
		t.Errorf("missing name: got %v, want ErrTeamNameRequired", err)
	}
}

func TestRegisterTeamWindowClosed(t *testing.T) {
	tournament := openTournament()
	tournament.RegistrationClose = time.Now().Add(-time.Minute)
	svc := newTeamServiceForTest(t, newFakeTournamentRepo(tournament), newFakeTeamRepo(), newFakePlayerRepo(), &fakeUploader{})

	if _, err := svc.Register(context.Background(), 10, 42, RegisterTeamInput{Name: "Late FC", Manager: "Kim"}); !errors.Is(err, ErrRegistrationNotOpen) {
		t.Fatalf("got %v, want ErrRegistrationNotOpen", err)
	}
}

func TestRegisterTeamTournamentFull(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(openTournament())
	teamRepo := newFakeTeamRepo(
		&models.Team{ID: 1, Name: "First", TournamentID: 10},
		&models.Team{ID: 2, Name: "Second", TournamentID: 10},
	)
	svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, newFakePlayerRepo(), &fakeUploader{})

	if _, err := svc.Register(context.Background(), 10, 42, RegisterTeamInput{Name: "Third", Manager: "Kim"}); !errors.Is(err, ErrRegistrationFull) {
		t.Fatalf("got %v, want ErrRegistrationFull", err)
	}
}

func TestAddPlayersBatch(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(openTournament())
	teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Rovers", TournamentID: 10, CreatedBy: 42})
	playerRepo := newFakePlayerRepo()
	svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, playerRepo, &fakeUploader{})

	team, err := svc.AddPlayers(context.Background(), 1, []NewPlayerInput{
		{Name: "Keeper", JerseyNumber: 1, Position: models.PositionGoalkeeper, IsCaptain: true},
		{Name: "Striker", JerseyNumber: 9, Position: models.PositionForward, IsViceCaptain: true},
	})
	if err != nil {
		t.Fatalf("AddPlayers: %v", err)
	}
	if len(team.Players) != 2 {
		t.Fatalf("roster has %d players, want 2", len(team.Players))
	}
}

func TestAddPlayersRejectsBatchAsUnit(t *testing.T) {
	tests := []struct {
		name     string
		existing []*models.Player
		inputs   []NewPlayerInput
		wantErr  error
	}{
		{
			name:     "jersey number taken by existing player",
			existing: []*models.Player{{ID: 1, TeamID: 1, Name: "Old", JerseyNumber: 7, Position: models.PositionForward}},
			inputs: []NewPlayerInput{
				{Name: "Fresh", JerseyNumber: 10, Position: models.PositionForward},
				{Name: "Clash", JerseyNumber: 7, Position: models.PositionDefender},
			},
			wantErr: ErrJerseyNumberConflict,
		},
		{
			name: "duplicate jersey number inside the batch",
			inputs: []NewPlayerInput{
				{Name: "One", JerseyNumber: 4, Position: models.PositionDefender},
				{Name: "Two", JerseyNumber: 4, Position: models.PositionMidfielder},
			},
			wantErr: ErrJerseyNumberConflict,
		},
		{
			name:     "second captain",
			existing: []*models.Player{{ID: 1, TeamID: 1, Name: "Skipper", JerseyNumber: 2, Position: models.PositionDefender, IsCaptain: true}},
			inputs: []NewPlayerInput{
				{Name: "Pretender", JerseyNumber: 3, Position: models.PositionMidfielder, IsCaptain: true},
			},
			wantErr: ErrCaptainConflict,
		},
		{
			name: "two vice captains in one batch",
			inputs: []NewPlayerInput{
				{Name: "One", JerseyNumber: 5, Position: models.PositionDefender, IsViceCaptain: true},
				{Name: "Two", JerseyNumber: 6, Position: models.PositionDefender, IsViceCaptain: true},
			},
			wantErr: ErrViceCaptainConflict,
		},
		{
			name: "invalid position",
			inputs: []NewPlayerInput{
				{Name: "One", JerseyNumber: 5, Position: "Libero"},
			},
			wantErr: ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tournamentRepo := newFakeTournamentRepo(openTournament())
			teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Rovers", TournamentID: 10})
			playerRepo := newFakePlayerRepo(tt.existing...)
			svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, playerRepo, &fakeUploader{})

			_, err := svc.AddPlayers(context.Background(), 1, tt.inputs)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			// Пачка отклоняется целиком: ни один игрок не записан.
			if playerRepo.batchCalls != 0 {
				t.Errorf("rejected batch reached the repository")
			}
			after, _ := playerRepo.ListByTeam(context.Background(), nil, 1)
			if len(after) != len(tt.existing) {
				t.Errorf("roster changed after rejected batch: %d players, want %d", len(after), len(tt.existing))
			}
		})
	}
}

func TestAddPlayersRosterFull(t *testing.T) {
	tournament := openTournament() // 5 + 2 = 7 мест в заявке
	tournamentRepo := newFakeTournamentRepo(tournament)
	teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Rovers", TournamentID: 10})

	existing := make([]*models.Player, 6)
	for i := range existing {
		existing[i] = &models.Player{ID: i + 1, TeamID: 1, Name: "P", JerseyNumber: i + 1, Position: models.PositionMidfielder}
	}
	playerRepo := newFakePlayerRepo(existing...)
	svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, playerRepo, &fakeUploader{})

	_, err := svc.AddPlayers(context.Background(), 1, []NewPlayerInput{
		{Name: "Seventh", JerseyNumber: 7, Position: models.PositionForward},
		{Name: "Eighth", JerseyNumber: 8, Position: models.PositionForward},
	})
	if !errors.Is(err, ErrRosterFull) {
		t.Fatalf("got %v, want ErrRosterFull", err)
	}
}

func TestDeleteTeamPermissions(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(openTournament()) // организатор - пользователь 1
	teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Rovers", TournamentID: 10, CreatedBy: 42})
	svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, newFakePlayerRepo(), &fakeUploader{})

	if err := svc.Delete(context.Background(), 1, 7); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("stranger delete: got %v, want ErrForbiddenOperation", err)
	}

	// Создатель команды может удалить её.
	if err := svc.Delete(context.Background(), 1, 42); err != nil {
		t.Fatalf("creator delete: %v", err)
	}

	// Организатор турнира может удалить чужую команду.
	team2Repo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Rovers", TournamentID: 10, CreatedBy: 42})
	svc2 := newTeamServiceForTest(t, tournamentRepo, team2Repo, newFakePlayerRepo(), &fakeUploader{})
	if err := svc2.Delete(context.Background(), 1, 1); err != nil {
		t.Fatalf("organizer delete: %v", err)
	}
}

func TestUploadCrestReplacesOldKey(t *testing.T) {
	oldKey := "crests/1/old.png"
	tournamentRepo := newFakeTournamentRepo(openTournament())
	teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Rovers", TournamentID: 10, CrestKey: &oldKey})
	uploader := &fakeUploader{}
	svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, newFakePlayerRepo(), uploader)

	team, err := svc.UploadCrest(context.Background(), 1, "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("UploadCrest: %v", err)
	}
	if team.CrestKey == nil || *team.CrestKey == oldKey {
		t.Errorf("crest key not replaced: %v", team.CrestKey)
	}
	if team.CrestURL == nil || !strings.HasPrefix(*team.CrestURL, "https://cdn.example.com/crests/1/") {
		t.Errorf("crest url = %v", team.CrestURL)
	}
	if len(uploader.uploaded) != 1 || !strings.HasSuffix(uploader.uploaded[0], ".png") {
		t.Errorf("uploaded keys = %v", uploader.uploaded)
	}
	if len(uploader.deleted) != 1 || uploader.deleted[0] != oldKey {
		t.Errorf("old crest not deleted: %v", uploader.deleted)
	}
}

func TestUploadCrestBadContentType(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(openTournament())
	teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Rovers", TournamentID: 10})
	svc := newTeamServiceForTest(t, tournamentRepo, teamRepo, newFakePlayerRepo(), &fakeUploader{})

	if _, err := svc.UploadCrest(context.Background(), 1, "application/pdf", strings.NewReader("x")); !errors.Is(err, ErrCrestContentTypeForbidden) {
		t.Fatalf("got %v, want ErrCrestContentTypeForbidden", err)
	}
}
