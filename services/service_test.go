package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/football-tournament-system/models"
	"github.com/Dosada05/football-tournament-system/repositories"
)

// Заглушка драйвера database/sql: сервисы открывают транзакции через *sql.DB,
// а работу с данными в тестах выполняют фейковые репозитории.
type stubDriver struct{}

type stubConn struct{}

type stubTx struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return stubConn{}, nil }

func (stubConn) Prepare(query string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (stubConn) Close() error                              { return nil }
func (stubConn) Begin() (driver.Tx, error)                 { return stubTx{}, nil }

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("servicetest", stubDriver{})
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("servicetest", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

// --- фейковые репозитории ---

type fakeMatchRepo struct {
	matches map[int]*models.Match
	// Сколько ближайших условных записей вернут конфликт версий.
	conflictsLeft int
	updateCalls   int
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		repo.matches[m.ID] = copyMatch(m)
	}
	return repo
}

func copyMatch(m *models.Match) *models.Match {
	cp := *m
	cp.Goals = append([]models.GoalEvent(nil), m.Goals...)
	cp.YellowCards = append([]models.CardEvent(nil), m.YellowCards...)
	cp.RedCards = append([]models.CardEvent(nil), m.RedCards...)
	cp.Substitutions = append([]models.SubstitutionEvent(nil), m.Substitutions...)
	cp.PlayedPlayerIDs = append([]int(nil), m.PlayedPlayerIDs...)
	return &cp
}

func (r *fakeMatchRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	for i, m := range matches {
		m.ID = len(r.matches) + i + 1
		r.matches[m.ID] = copyMatch(m)
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	// Каждое чтение отдаёт свежую копию, как повторный запрос к БД.
	return copyMatch(m), nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, copyMatch(m))
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateConditional(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.updateCalls++
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return repositories.ErrMatchVersionConflict
	}
	stored, ok := r.matches[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if stored.Version != match.Version {
		return repositories.ErrMatchVersionConflict
	}
	match.Version++
	r.matches[match.ID] = copyMatch(match)
	return nil
}

func (r *fakeMatchRepo) DeleteByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
	nextID  int

	batchCreateErr error
	batchCalls     int
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
	for _, p := range players {
		cp := *p
		repo.players[p.ID] = &cp
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (r *fakePlayerRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, players []*models.Player) error {
	r.batchCalls++
	if r.batchCreateErr != nil {
		return r.batchCreateErr
	}
	for _, p := range players {
		p.ID = r.nextID
		r.nextID++
		cp := *p
		r.players[p.ID] = &cp
	}
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range r.players {
		if p.TeamID == teamID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ListByTeams(ctx context.Context, exec repositories.SQLExecutor, teamIDs []int) ([]*models.Player, error) {
	var out []*models.Player
	for _, teamID := range teamIDs {
		teamPlayers, _ := r.ListByTeam(ctx, exec, teamID)
		out = append(out, teamPlayers...)
	}
	return out, nil
}

func (r *fakePlayerRepo) ListAll(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range r.players {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePlayerRepo) IncrementStats(ctx context.Context, exec repositories.SQLExecutor, playerID int, deltas models.PlayerStatDeltas) error {
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.MatchesPlayed += deltas.MatchesPlayed
	p.Goals += deltas.Goals
	p.Assists += deltas.Assists
	p.YellowCards += deltas.YellowCards
	p.RedCards += deltas.RedCards
	return nil
}

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
	for _, t := range teams {
		cp := *t
		repo.teams[t.ID] = &cp
		if t.ID >= repo.nextID {
			repo.nextID = t.ID + 1
		}
	}
	return repo
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	team.ID = r.nextID
	r.nextID++
	cp := *team
	r.teams[team.ID] = &cp
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Team, error) {
	// Порядок регистрации: по возрастанию ID.
	var out []*models.Team
	for id := 1; id < r.nextID; id++ {
		if t, ok := r.teams[id]; ok && t.TournamentID == tournamentID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, t := range r.teams {
		if t.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTeamRepo) UpdateCrestKey(ctx context.Context, exec repositories.SQLExecutor, id int, crestKey *string) error {
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.CrestKey = crestKey
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		cp := *t
		repo.tournaments[t.ID] = &cp
	}
	return repo
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	tournament.ID = len(r.tournaments) + 1
	cp := *tournament
	r.tournaments[tournament.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, exec repositories.SQLExecutor, limit, offset int) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTournamentRepo) ListByOrganizer(ctx context.Context, exec repositories.SQLExecutor, organizerID int) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.OrganizerID == organizerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}
