package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digichit/digichit-server/internal/domain"
)

type groupFixture struct {
	users *fakeUserRepo
	repo  *fakeGroupRepo
	svc   *GroupService
	ctx   context.Context
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	users := newFakeUserRepo()
	repo := newFakeGroupRepo(users)
	return &groupFixture{
		users: users,
		repo:  repo,
		svc:   NewGroupService(repo, users),
		ctx:   context.Background(),
	}
}

func (f *groupFixture) addUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, f.users.Create(f.ctx, user))
	return user
}

func (f *groupFixture) createGroup(t *testing.T, adminID string, slots int) *domain.Group {
	t.Helper()
	group, err := f.svc.CreateGroup(f.ctx, adminID, CreateGroupInput{
		Name:          "Family Chit",
		MonthlyAmount: 2000,
		TotalSlots:    slots,
	})
	require.NoError(t, err)
	return group
}

func TestCreateGroup(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")

	group := f.createGroup(t, admin.UserID, 5)

	assert.Equal(t, int64(2000), group.MonthlyAmount)
	assert.Equal(t, 5, group.TotalSlots)
	assert.Equal(t, int64(10000), group.TotalValue())
	assert.Equal(t, 4, group.AvailableSlots())
	assert.True(t, group.IsActive)
	assert.True(t, group.IsMember(admin.UserID), "admin must be a member")
}

func TestCreateGroup_DefaultSlots(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")

	group, err := f.svc.CreateGroup(f.ctx, admin.UserID, CreateGroupInput{
		Name:          "Default Slots",
		MonthlyAmount: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultTotalSlots, group.TotalSlots)
}

func TestCreateGroup_DuplicateName(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	f.createGroup(t, admin.UserID, 5)

	_, err := f.svc.CreateGroup(f.ctx, admin.UserID, CreateGroupInput{
		Name:          "family chit", // same name, different case
		MonthlyAmount: 2000,
		TotalSlots:    5,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestRequestJoin(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	member := f.addUser(t, "Bala", "bala@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	request, err := f.svc.RequestJoin(f.ctx, group.GroupID, member.UserID)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestPending, request.Status)
	assert.Equal(t, member.UserID, request.User.UserID)
	assert.False(t, request.RequestedAt.IsZero())

	// Membership is not granted until the admin approves
	stored, err := f.repo.GetByID(f.ctx, group.GroupID)
	require.NoError(t, err)
	assert.False(t, stored.IsMember(member.UserID))
}

func TestRequestJoin_GroupNotFound(t *testing.T) {
	f := newGroupFixture(t)
	user := f.addUser(t, "Bala", "bala@example.com")

	_, err := f.svc.RequestJoin(f.ctx, "missing", user.UserID)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestRequestJoin_Inactive(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	user := f.addUser(t, "Bala", "bala@example.com")
	group := f.createGroup(t, admin.UserID, 5)
	f.repo.groups[group.GroupID].IsActive = false

	_, err := f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	assert.ErrorIs(t, err, domain.ErrGroupInactive)
}

func TestRequestJoin_AlreadyMember(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	_, err := f.svc.RequestJoin(f.ctx, group.GroupID, admin.UserID)
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestRequestJoin_DuplicatePending(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	user := f.addUser(t, "Bala", "bala@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	_, err := f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	require.NoError(t, err)

	_, err = f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestRequestJoin_Full(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	// Fill the remaining four slots
	for i := 0; i < 4; i++ {
		u := f.addUser(t, "Member", string(rune('a'+i))+"@example.com")
		jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, u.UserID)
		require.NoError(t, err)
		_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, true)
		require.NoError(t, err)
	}

	late := f.addUser(t, "Late", "late@example.com")
	_, err := f.svc.RequestJoin(f.ctx, group.GroupID, late.UserID)
	assert.ErrorIs(t, err, domain.ErrGroupFull)

	// A refused request must not leave a trace
	stored, err := f.repo.GetByID(f.ctx, group.GroupID)
	require.NoError(t, err)
	assert.Len(t, stored.Members, 5)
	for _, jr := range stored.JoinRequests {
		assert.NotEqual(t, late.UserID, jr.User.UserID)
	}
}

func TestRespondToRequest_Approve(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	user := f.addUser(t, "Bala", "bala@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	require.NoError(t, err)

	updated, err := f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, true)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestApproved, updated.Status)
	assert.Equal(t, admin.UserID, updated.RespondedBy)
	require.NotNil(t, updated.RespondedAt)

	stored, err := f.repo.GetByID(f.ctx, group.GroupID)
	require.NoError(t, err)
	assert.True(t, stored.IsMember(user.UserID))
	assert.Len(t, stored.Members, 2)
	assert.Equal(t, 3, stored.AvailableSlots())
}

func TestRespondToRequest_Reject(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	user := f.addUser(t, "Bala", "bala@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	require.NoError(t, err)

	updated, err := f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, false)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestRejected, updated.Status)

	stored, err := f.repo.GetByID(f.ctx, group.GroupID)
	require.NoError(t, err)
	assert.False(t, stored.IsMember(user.UserID))
	assert.Len(t, stored.Members, 1)

	// A rejected user may apply again
	_, err = f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	assert.NoError(t, err)
}

func TestRespondToRequest_Replay(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	user := f.addUser(t, "Bala", "bala@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, true)
	require.NoError(t, err)

	// Replaying the approval must fail without a double mutation
	_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, true)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	stored, err := f.repo.GetByID(f.ctx, group.GroupID)
	require.NoError(t, err)
	assert.Len(t, stored.Members, 2)
}

func TestRespondToRequest_Forbidden(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	user := f.addUser(t, "Bala", "bala@example.com")
	outsider := f.addUser(t, "Chen", "chen@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, user.UserID)
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, outsider.UserID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRespondToRequest_RequestNotFound(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	_, err := f.svc.RespondToRequest(f.ctx, group.GroupID, "missing", admin.UserID, true)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestRespondToRequest_ApproveWhenFull(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	// Two pending requests while one slot remains
	for i := 0; i < 3; i++ {
		u := f.addUser(t, "Member", string(rune('a'+i))+"@example.com")
		jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, u.UserID)
		require.NoError(t, err)
		_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, true)
		require.NoError(t, err)
	}

	first := f.addUser(t, "First", "first@example.com")
	second := f.addUser(t, "Second", "second@example.com")
	jrFirst, err := f.svc.RequestJoin(f.ctx, group.GroupID, first.UserID)
	require.NoError(t, err)
	jrSecond, err := f.svc.RequestJoin(f.ctx, group.GroupID, second.UserID)
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jrFirst.RequestID, admin.UserID, true)
	require.NoError(t, err)

	// The last slot is gone; the second approval must not overflow
	_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jrSecond.RequestID, admin.UserID, true)
	assert.ErrorIs(t, err, domain.ErrGroupFull)

	stored, err := f.repo.GetByID(f.ctx, group.GroupID)
	require.NoError(t, err)
	assert.Len(t, stored.Members, 5)
	assert.True(t, stored.IsMember(admin.UserID))
}

func TestListPendingRequests(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	first := f.addUser(t, "Bala", "bala@example.com")
	second := f.addUser(t, "Chen", "chen@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	jrFirst, err := f.svc.RequestJoin(f.ctx, group.GroupID, first.UserID)
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(f.ctx, group.GroupID, second.UserID)
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jrFirst.RequestID, admin.UserID, false)
	require.NoError(t, err)

	pending, err := f.svc.ListPendingRequests(f.ctx, group.GroupID, admin.UserID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.UserID, pending[0].User.UserID)

	_, err = f.svc.ListPendingRequests(f.ctx, group.GroupID, first.UserID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetDetails(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	member := f.addUser(t, "Bala", "bala@example.com")
	outsider := f.addUser(t, "Chen", "chen@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, member.UserID)
	require.NoError(t, err)
	_, err = f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, true)
	require.NoError(t, err)

	detail, err := f.svc.GetDetails(f.ctx, group.GroupID, member.UserID)
	require.NoError(t, err)
	assert.False(t, detail.IsUserAdmin)
	assert.True(t, detail.IsUserMember)
	assert.Equal(t, 2, detail.MemberCount)
	assert.Len(t, detail.Members, 2)

	adminDetail, err := f.svc.GetDetails(f.ctx, group.GroupID, admin.UserID)
	require.NoError(t, err)
	assert.True(t, adminDetail.IsUserAdmin)

	_, err = f.svc.GetDetails(f.ctx, group.GroupID, outsider.UserID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListMineAndAvailable(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	other := f.addUser(t, "Bala", "bala@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	mine, err := f.svc.ListMine(f.ctx, admin.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, group.GroupID, mine[0].GroupID)
	assert.Equal(t, 4, mine[0].AvailableSlots)
	assert.Equal(t, int64(10000), mine[0].TotalValue)

	available, err := f.svc.ListAvailable(f.ctx, other.UserID)
	require.NoError(t, err)
	require.Len(t, available, 1)

	// Members do not see their own groups as available
	available, err = f.svc.ListAvailable(f.ctx, admin.UserID)
	require.NoError(t, err)
	assert.Empty(t, available)
}

// TestWorkflowInvariants drives a mixed sequence and checks the standing
// invariants: capacity never exceeded, admin always a member, at most one
// pending request per user.
func TestWorkflowInvariants(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.addUser(t, "Asha", "asha@example.com")
	group := f.createGroup(t, admin.UserID, 5)

	users := make([]*domain.User, 8)
	for i := range users {
		users[i] = f.addUser(t, "User", string(rune('a'+i))+"@chit.example.com")
	}

	for i, u := range users {
		jr, err := f.svc.RequestJoin(f.ctx, group.GroupID, u.UserID)
		if err != nil {
			continue
		}
		// Approve evens, reject odds
		_, _ = f.svc.RespondToRequest(f.ctx, group.GroupID, jr.RequestID, admin.UserID, i%2 == 0)
	}

	stored, err := f.repo.GetByID(f.ctx, group.GroupID)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(stored.Members), stored.TotalSlots)
	assert.True(t, stored.IsMember(admin.UserID))

	pendingPerUser := map[string]int{}
	for _, jr := range stored.JoinRequests {
		if jr.IsPending() {
			pendingPerUser[jr.User.UserID]++
		}
	}
	for userID, n := range pendingPerUser {
		assert.Equal(t, 1, n, "user %s has %d pending requests", userID, n)
	}
}
