package team

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rafiakbrr/scrimhub/internal/player"
	"github.com/rafiakbrr/scrimhub/pkg/apperr"
)

// fakeTeamRepo is an in-memory TeamRepository. WithTeamLock holds a per-team
// mutex for the duration of the callback, mirroring the row-lock contract of
// the real repository, and reports a missing team as gorm.ErrRecordNotFound.
type fakeTeamRepo struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	teams   map[uint]*Team
	members map[uint]map[uint]*TeamMember // teamID -> playerID
	players map[uint]*player.Player
	apps    map[uint]*Application

	nextTeamID uint
	nextAppID  uint
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		locks:   make(map[uint]*sync.Mutex),
		teams:   make(map[uint]*Team),
		members: make(map[uint]map[uint]*TeamMember),
		players: make(map[uint]*player.Player),
		apps:    make(map[uint]*Application),
	}
}

func (f *fakeTeamRepo) WithTransaction(txFunc func(TeamRepository) error) error {
	return txFunc(f)
}

func (f *fakeTeamRepo) WithTeamLock(teamID uint, txFunc func(TeamRepository) error) error {
	f.mu.Lock()
	if _, ok := f.teams[teamID]; !ok {
		f.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	lock, ok := f.locks[teamID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[teamID] = lock
	}
	f.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return txFunc(f)
}

func (f *fakeTeamRepo) CreateTeam(t *Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTeamID++
	t.ID = f.nextTeamID
	copied := *t
	f.teams[t.ID] = &copied
	f.members[t.ID] = make(map[uint]*TeamMember)
	return nil
}

func (f *fakeTeamRepo) GetTeamByID(id uint) (*Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTeamRepo) GetTeamByTag(tag string) (*Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.teams {
		if t.Tag == tag {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTeamRepo) GetTeamByPlayerID(playerID uint) (*Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for teamID, roster := range f.members {
		if _, ok := roster[playerID]; ok {
			copied := *f.teams[teamID]
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTeamRepo) ListTeams(page, limit int, search string) ([]Team, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []Team
	for _, t := range f.teams {
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (f *fakeTeamRepo) UpdateTeam(t *Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *t
	f.teams[t.ID] = &copied
	return nil
}

func (f *fakeTeamRepo) AddMember(member *TeamMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	roster := f.members[member.TeamID]
	if _, exists := roster[member.PlayerID]; exists {
		return gorm.ErrDuplicatedKey
	}
	copied := *member
	roster[member.PlayerID] = &copied
	return nil
}

func (f *fakeTeamRepo) GetMember(teamID, playerID uint) (*TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[teamID][playerID]
	if !ok {
		return nil, nil
	}
	copied := *member
	return &copied, nil
}

func (f *fakeTeamRepo) ListMembers(teamID uint, page, limit int) ([]TeamMember, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []TeamMember
	for _, m := range f.members[teamID] {
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PlayerID < all[j].PlayerID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (f *fakeTeamRepo) RemoveMember(teamID, playerID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[teamID], playerID)
	return nil
}

func (f *fakeTeamRepo) IsPlayerOnAnyTeam(playerID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, roster := range f.members {
		if _, ok := roster[playerID]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTeamRepo) AssignPlayerToTeam(playerID, teamID uint, leader bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[playerID]
	if !ok || p.TeamID != nil {
		return false, nil
	}
	id := teamID
	p.TeamID = &id
	p.IsTeamLeader = leader
	return true, nil
}

func (f *fakeTeamRepo) ClearPlayerTeam(playerID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[playerID]; ok {
		p.TeamID = nil
		p.IsTeamLeader = false
	}
	return nil
}

func (f *fakeTeamRepo) GetPlayer(playerID uint) (*player.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[playerID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeTeamRepo) CreateApplication(app *Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextAppID++
	app.ID = f.nextAppID
	copied := *app
	f.apps[app.ID] = &copied
	return nil
}

func (f *fakeTeamRepo) GetApplicationByID(id uint) (*Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, nil
	}
	copied := *app
	return &copied, nil
}

func (f *fakeTeamRepo) GetPendingApplication(teamID, playerID uint) (*Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.apps {
		if app.TeamID == teamID && app.PlayerID == playerID && app.Status == ApplicationPending {
			copied := *app
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTeamRepo) ListApplicationsByTeam(teamID uint, status string, page, limit int) ([]Application, int64, error) {
	return f.listApps(func(app *Application) bool {
		return app.TeamID == teamID && (status == "" || string(app.Status) == status)
	}, page, limit)
}

func (f *fakeTeamRepo) ListApplicationsByPlayer(playerID uint, status string, page, limit int) ([]Application, int64, error) {
	return f.listApps(func(app *Application) bool {
		return app.PlayerID == playerID && (status == "" || string(app.Status) == status)
	}, page, limit)
}

func (f *fakeTeamRepo) listApps(match func(*Application) bool, page, limit int) ([]Application, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []Application
	for _, app := range f.apps {
		if match(app) {
			all = append(all, *app)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (f *fakeTeamRepo) DeleteApplication(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.apps, id)
	return nil
}

func paginate[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(all) {
		return nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// --- test helpers ---

func setupTeamService(t *testing.T) (*TeamService, *fakeTeamRepo) {
	t.Helper()
	repo := newFakeTeamRepo()
	return NewTeamService(repo), repo
}

func seedPlayer(repo *fakeTeamRepo, id uint, username string) {
	repo.players[id] = &player.Player{
		Model:    gorm.Model{ID: id},
		Username: username,
	}
}

// seedTeam creates a team led by leaderID, with the leader seeded and rostered.
func seedTeam(t *testing.T, svc *TeamService, repo *fakeTeamRepo, leaderID uint, name, tag string) *Team {
	t.Helper()
	seedPlayer(repo, leaderID, name+"_leader")
	created, err := svc.CreateTeam(leaderID, name, tag)
	require.NoError(t, err)
	return created
}

// --- tests ---

func TestCreateTeam(t *testing.T) {
	svc, repo := setupTeamService(t)
	seedPlayer(repo, 1, "fury")

	created, err := svc.CreateTeam(1, "Night Owls", "OWL")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, uint(1), created.LeaderID)

	// The leader is rostered and flagged on their profile.
	member, err := repo.GetMember(created.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, member)
	p, _ := repo.GetPlayer(1)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, created.ID, *p.TeamID)
	assert.True(t, p.IsTeamLeader)
}

func TestCreateTeamValidation(t *testing.T) {
	svc, repo := setupTeamService(t)
	seedPlayer(repo, 1, "fury")

	_, err := svc.CreateTeam(1, "", "OWL")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = svc.CreateTeam(1, "Night Owls", "WAYTOOLONG")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = svc.CreateTeam(99, "Night Owls", "OWL")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateTeamDuplicateTag(t *testing.T) {
	svc, repo := setupTeamService(t)
	seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")

	_, err := svc.CreateTeam(2, "Day Owls", "OWL")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateTeamLeaderAlreadyOnTeam(t *testing.T) {
	svc, repo := setupTeamService(t)
	seedTeam(t, svc, repo, 1, "Night Owls", "OWL")

	_, err := svc.CreateTeam(1, "Second Squad", "SEC")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAddMemberTwiceIsConflict(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")

	require.NoError(t, svc.AddMember(created.ID, 2))

	// Re-adding the same player is a Conflict, never a silent no-op.
	err := svc.AddMember(created.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAddMemberToMissingTeam(t *testing.T) {
	svc, repo := setupTeamService(t)
	seedPlayer(repo, 2, "dawn")

	err := svc.AddMember(42, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveMember(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")
	require.NoError(t, svc.AddMember(created.ID, 2))

	// Only the leader may remove.
	err := svc.RemoveMember(created.ID, 2, 2)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// The leader cannot be removed.
	err = svc.RemoveMember(created.ID, 1, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	require.NoError(t, svc.RemoveMember(created.ID, 1, 2))
	member, _ := repo.GetMember(created.ID, 2)
	assert.Nil(t, member)
	p, _ := repo.GetPlayer(2)
	assert.Nil(t, p.TeamID)

	// Removing again is a NotFound.
	err = svc.RemoveMember(created.ID, 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLeave(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")
	require.NoError(t, svc.AddMember(created.ID, 2))

	// Leaders cannot leave; the roster would be orphaned.
	err := svc.Leave(1)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	require.NoError(t, svc.Leave(2))
	onTeam, _ := repo.IsPlayerOnAnyTeam(2)
	assert.False(t, onTeam)

	err = svc.Leave(2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApply(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")

	app, err := svc.Apply(created.ID, 2, "let me in")
	require.NoError(t, err)
	assert.Equal(t, ApplicationPending, app.Status)

	// One pending application per (team, player).
	_, err = svc.Apply(created.ID, 2, "again")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestApplyWhileOnTeam(t *testing.T) {
	svc, repo := setupTeamService(t)
	first := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	second := seedTeam(t, svc, repo, 2, "Day Owls", "DAY")
	seedPlayer(repo, 3, "dawn")
	require.NoError(t, svc.AddMember(first.ID, 3))

	// A rostered player must leave before applying elsewhere.
	_, err := svc.Apply(second.ID, 3, "jumping ship")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestResolveAccept(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")
	app, err := svc.Apply(created.ID, 2, "")
	require.NoError(t, err)

	// Only the leader resolves.
	_, err = svc.Resolve(app.ID, 2, true)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	resolved, err := svc.Resolve(app.ID, 1, true)
	require.NoError(t, err)
	assert.Equal(t, ApplicationAccepted, resolved.Status)

	member, _ := repo.GetMember(created.ID, 2)
	require.NotNil(t, member)
	p, _ := repo.GetPlayer(2)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, created.ID, *p.TeamID)

	// The application is consumed; a second resolution finds nothing.
	_, err = svc.Resolve(app.ID, 1, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveDecline(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")
	app, err := svc.Apply(created.ID, 2, "")
	require.NoError(t, err)

	resolved, err := svc.Resolve(app.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, ApplicationDeclined, resolved.Status)

	onTeam, _ := repo.IsPlayerOnAnyTeam(2)
	assert.False(t, onTeam)

	// Declining frees the player to apply to the same team again.
	_, err = svc.Apply(created.ID, 2, "second try")
	assert.NoError(t, err)
}

func TestCancelApplication(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")
	app, err := svc.Apply(created.ID, 2, "")
	require.NoError(t, err)

	// Only the applicant may cancel.
	err = svc.CancelApplication(app.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	require.NoError(t, svc.CancelApplication(app.ID, 2))
	err = svc.CancelApplication(app.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApplicationsForTeamLeaderOnly(t *testing.T) {
	svc, repo := setupTeamService(t)
	created := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	seedPlayer(repo, 2, "dawn")
	_, err := svc.Apply(created.ID, 2, "")
	require.NoError(t, err)

	_, _, err = svc.ApplicationsForTeam(created.ID, 2, "", 1, 10)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	apps, total, err := svc.ApplicationsForTeam(created.ID, 1, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, apps, 1)
}

func TestConcurrentResolveAdmitsOnce(t *testing.T) {
	svc, repo := setupTeamService(t)
	first := seedTeam(t, svc, repo, 1, "Night Owls", "OWL")
	second := seedTeam(t, svc, repo, 2, "Day Owls", "DAY")
	seedPlayer(repo, 3, "dawn")

	appA, err := svc.Apply(first.ID, 3, "")
	require.NoError(t, err)
	appB, err := svc.Apply(second.ID, 3, "")
	require.NoError(t, err)

	// Both leaders accept at once. The conditional profile write lets only
	// one roster claim the player.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Resolve(appA.ID, 1, true)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Resolve(appB.ID, 2, true)
	}()
	wg.Wait()

	var conflicts, successes int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	p, _ := repo.GetPlayer(3)
	require.NotNil(t, p.TeamID)
}
