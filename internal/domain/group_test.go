package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testGroup() *Group {
	admin := UserRef{UserID: "admin-1", Name: "Asha", Email: "asha@example.com"}
	return &Group{
		GroupID:       "group-1",
		Name:          "Family Chit",
		Admin:         admin,
		Members:       []UserRef{admin},
		MonthlyAmount: 2000,
		TotalSlots:    5,
		IsActive:      true,
	}
}

func TestGroupArithmetic(t *testing.T) {
	g := testGroup()

	assert.Equal(t, int64(10000), g.TotalValue())
	assert.Equal(t, 4, g.AvailableSlots())
	assert.False(t, g.IsFull())

	for i := 0; i < 4; i++ {
		g.Members = append(g.Members, UserRef{UserID: "m"})
	}
	assert.Equal(t, 0, g.AvailableSlots())
	assert.True(t, g.IsFull())
}

func TestGroupMembership(t *testing.T) {
	g := testGroup()

	assert.True(t, g.IsAdmin("admin-1"))
	assert.False(t, g.IsAdmin("other"))
	assert.True(t, g.IsMember("admin-1"))
	assert.False(t, g.IsMember("other"))
}

func TestPendingRequests(t *testing.T) {
	g := testGroup()
	g.JoinRequests = []JoinRequest{
		{RequestID: "r1", User: UserRef{UserID: "u1"}, Status: RequestRejected},
		{RequestID: "r2", User: UserRef{UserID: "u1"}, Status: RequestPending},
		{RequestID: "r3", User: UserRef{UserID: "u2"}, Status: RequestApproved},
	}

	assert.True(t, g.HasPendingRequest("u1"))
	assert.False(t, g.HasPendingRequest("u2"))

	pending := g.PendingRequests()
	assert.Len(t, pending, 1)
	assert.Equal(t, "r2", pending[0].RequestID)
}

func TestGroupProjections(t *testing.T) {
	g := testGroup()
	g.CreatedAt = time.Now()

	summary := g.Summary()
	assert.Equal(t, g.GroupID, summary.GroupID)
	assert.Equal(t, 1, summary.MemberCount)
	assert.Equal(t, 4, summary.AvailableSlots)
	assert.Equal(t, int64(10000), summary.TotalValue)

	detail := g.Detail("admin-1")
	assert.True(t, detail.IsUserAdmin)
	assert.True(t, detail.IsUserMember)
	assert.Len(t, detail.Members, 1)

	outsider := g.Detail("other")
	assert.False(t, outsider.IsUserAdmin)
	assert.False(t, outsider.IsUserMember)
}
