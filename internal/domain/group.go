package domain

import "time"

// Validation bounds for chit groups
const (
	MinTotalSlots    = 5
	MaxTotalSlots    = 50
	MinMonthlyAmount = 1000
	MaxMonthlyAmount = 100000

	DefaultTotalSlots = 20
)

// JoinRequestStatus represents the state of a join request
type JoinRequestStatus string

// A request starts as pending and terminates as approved or rejected;
// there is no transition out of a terminal state.
const (
	RequestPending  JoinRequestStatus = "pending"
	RequestApproved JoinRequestStatus = "approved"
	RequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest represents a membership application awaiting admin approval.
// It is owned by exactly one group and has no lifecycle of its own.
type JoinRequest struct {
	RequestID   string            `json:"id"`
	GroupID     string            `json:"group_id"`
	User        UserRef           `json:"user"`
	Status      JoinRequestStatus `json:"status"`
	RequestedAt time.Time         `json:"requested_at"`
	RespondedAt *time.Time        `json:"responded_at,omitempty"`
	RespondedBy string            `json:"responded_by,omitempty"`
}

// IsPending reports whether the request still awaits a response
func (jr *JoinRequest) IsPending() bool {
	return jr.Status == RequestPending
}

// Group represents a chit group: a rotating-savings circle with a fixed
// monthly contribution and a fixed member capacity.
type Group struct {
	GroupID     string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Admin       UserRef   `json:"admin"`
	Members     []UserRef `json:"members"`

	MonthlyAmount int64 `json:"monthly_amount"`
	TotalSlots    int   `json:"total_slots"`

	// Cycle fields are persisted for the client dashboard but drive no
	// server-side workflow yet.
	CurrentSlot int        `json:"current_slot"`
	IsStarted   bool       `json:"is_started"`
	StartDate   *time.Time `json:"start_date,omitempty"`

	IsActive     bool          `json:"is_active"`
	JoinRequests []JoinRequest `json:"join_requests,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailableSlots returns the number of free membership slots
func (g *Group) AvailableSlots() int {
	return g.TotalSlots - len(g.Members)
}

// TotalValue returns the full chit value (monthly amount times slots)
func (g *Group) TotalValue() int64 {
	return g.MonthlyAmount * int64(g.TotalSlots)
}

// IsFull reports whether every slot is taken
func (g *Group) IsFull() bool {
	return len(g.Members) >= g.TotalSlots
}

// IsAdmin reports whether the user owns the group
func (g *Group) IsAdmin(userID string) bool {
	return g.Admin.UserID == userID
}

// IsMember reports whether the user is in the member list
func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// HasPendingRequest reports whether the user already has a pending join request
func (g *Group) HasPendingRequest(userID string) bool {
	for i := range g.JoinRequests {
		if g.JoinRequests[i].User.UserID == userID && g.JoinRequests[i].IsPending() {
			return true
		}
	}
	return false
}

// PendingRequests returns pending join requests in insertion order
func (g *Group) PendingRequests() []JoinRequest {
	pending := []JoinRequest{}
	for _, jr := range g.JoinRequests {
		if jr.IsPending() {
			pending = append(pending, jr)
		}
	}
	return pending
}

// GroupSummary is the list projection shared by my-groups and available
type GroupSummary struct {
	GroupID        string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	MonthlyAmount  int64     `json:"monthly_amount"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
	TotalValue     int64     `json:"total_value"`
	Admin          UserRef   `json:"admin"`
	MemberCount    int       `json:"member_count"`
	IsActive       bool      `json:"is_active"`
	IsStarted      bool      `json:"is_started"`
	CurrentSlot    int       `json:"current_slot"`
	CreatedAt      time.Time `json:"created_at"`
}

// GroupDetail extends the summary with the member list and the caller's
// relation to the group
type GroupDetail struct {
	GroupSummary
	Members      []UserRef `json:"members"`
	IsUserAdmin  bool      `json:"is_user_admin"`
	IsUserMember bool      `json:"is_user_member"`
}

// Summary builds the list projection of the group
func (g *Group) Summary() GroupSummary {
	return GroupSummary{
		GroupID:        g.GroupID,
		Name:           g.Name,
		Description:    g.Description,
		Location:       g.Location,
		MonthlyAmount:  g.MonthlyAmount,
		TotalSlots:     g.TotalSlots,
		AvailableSlots: g.AvailableSlots(),
		TotalValue:     g.TotalValue(),
		Admin:          g.Admin,
		MemberCount:    len(g.Members),
		IsActive:       g.IsActive,
		IsStarted:      g.IsStarted,
		CurrentSlot:    g.CurrentSlot,
		CreatedAt:      g.CreatedAt,
	}
}

// Detail builds the full projection of the group as seen by userID
func (g *Group) Detail(userID string) GroupDetail {
	return GroupDetail{
		GroupSummary: g.Summary(),
		Members:      g.Members,
		IsUserAdmin:  g.IsAdmin(userID),
		IsUserMember: g.IsMember(userID),
	}
}
