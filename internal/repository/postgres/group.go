package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digichit/digichit-server/internal/domain"
)

// GroupRepository implements repository.GroupRepository for PostgreSQL.
//
// Join-request mutations lock the group row (SELECT ... FOR UPDATE) for the
// duration of the transaction. Every writer takes the same lock, so the
// capacity check and the membership/status mutation always observe and
// commit against the current persisted state. A partial unique index on
// (group_id, user_id) WHERE status = 'pending' backstops the single-pending
// invariant at the schema level.
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group and its admin membership in one transaction
func (r *GroupRepository) Create(ctx context.Context, g *domain.Group) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx) // no-op once committed
	}()

	now := time.Now().UTC()
	if g.GroupID == "" {
		g.GroupID = uuid.NewString()
	}
	g.CreatedAt = now
	g.UpdatedAt = now

	query := `
		INSERT INTO groups (group_id, name, description, location, admin_id,
		                    monthly_amount, total_slots, current_slot, is_started, is_active,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, false, true, $8, $8)
	`

	_, err = tx.Exec(ctx, query,
		g.GroupID, g.Name, g.Description, g.Location, g.Admin.UserID,
		g.MonthlyAmount, g.TotalSlots, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on (admin_id, lower(name))
				return domain.ErrDuplicateName
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return domain.ErrUserNotFound
			}
		}
		return err
	}

	// The admin is always a member
	memberQuery := `INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, memberQuery, g.GroupID, g.Admin.UserID, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID fetches a group with its member list and join requests
func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (*domain.Group, error) {
	query := `
		SELECT g.group_id, g.name, g.description, g.location,
		       a.user_id, a.name, a.email,
		       g.monthly_amount, g.total_slots, g.current_slot,
		       g.is_started, g.start_date, g.is_active, g.created_at, g.updated_at
		FROM groups g
		JOIN users a ON a.user_id = g.admin_id
		WHERE g.group_id = $1
	`

	var g domain.Group
	err := r.db.QueryRow(ctx, query, groupID).Scan(
		&g.GroupID, &g.Name, &g.Description, &g.Location,
		&g.Admin.UserID, &g.Admin.Name, &g.Admin.Email,
		&g.MonthlyAmount, &g.TotalSlots, &g.CurrentSlot,
		&g.IsStarted, &g.StartDate, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}

	membersQuery := `
		SELECT u.user_id, u.name, u.email
		FROM group_members m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at
	`

	rows, err := r.db.Query(ctx, membersQuery, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ref domain.UserRef
		if err := rows.Scan(&ref.UserID, &ref.Name, &ref.Email); err != nil {
			return nil, err
		}
		g.Members = append(g.Members, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	requestsQuery := `
		SELECT jr.request_id, jr.group_id, u.user_id, u.name, u.email,
		       jr.status, jr.requested_at, jr.responded_at, jr.responded_by
		FROM join_requests jr
		JOIN users u ON u.user_id = jr.user_id
		WHERE jr.group_id = $1
		ORDER BY jr.requested_at
	`

	reqRows, err := r.db.Query(ctx, requestsQuery, groupID)
	if err != nil {
		return nil, err
	}
	defer reqRows.Close()

	for reqRows.Next() {
		var jr domain.JoinRequest
		var respondedBy *string
		if err := reqRows.Scan(
			&jr.RequestID, &jr.GroupID, &jr.User.UserID, &jr.User.Name, &jr.User.Email,
			&jr.Status, &jr.RequestedAt, &jr.RespondedAt, &respondedBy,
		); err != nil {
			return nil, err
		}
		if respondedBy != nil {
			jr.RespondedBy = *respondedBy
		}
		g.JoinRequests = append(g.JoinRequests, jr)
	}

	return &g, reqRows.Err()
}

const summaryColumns = `
	SELECT g.group_id, g.name, g.description, g.location,
	       g.monthly_amount, g.total_slots,
	       a.user_id, a.name, a.email,
	       (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.group_id) AS member_count,
	       g.is_active, g.is_started, g.current_slot, g.created_at
	FROM groups g
	JOIN users a ON a.user_id = g.admin_id
`

// ListByMember returns summaries of all groups where the user is a member.
// The admin always has a membership row, so this covers owned groups too.
func (r *GroupRepository) ListByMember(ctx context.Context, userID string) ([]domain.GroupSummary, error) {
	query := summaryColumns + `
		WHERE EXISTS (
			SELECT 1 FROM group_members m
			WHERE m.group_id = g.group_id AND m.user_id = $1
		)
		ORDER BY g.created_at DESC
	`

	return r.listSummaries(ctx, query, userID)
}

// ListAvailable returns summaries of active groups the user could request to join
func (r *GroupRepository) ListAvailable(ctx context.Context, userID string) ([]domain.GroupSummary, error) {
	query := summaryColumns + `
		WHERE g.is_active = true
		  AND NOT EXISTS (
			SELECT 1 FROM group_members m
			WHERE m.group_id = g.group_id AND m.user_id = $1
		  )
		  AND (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.group_id) < g.total_slots
		ORDER BY g.created_at DESC
	`

	return r.listSummaries(ctx, query, userID)
}

func (r *GroupRepository) listSummaries(ctx context.Context, query, userID string) ([]domain.GroupSummary, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.GroupSummary{}
	for rows.Next() {
		var s domain.GroupSummary
		if err := rows.Scan(
			&s.GroupID, &s.Name, &s.Description, &s.Location,
			&s.MonthlyAmount, &s.TotalSlots,
			&s.Admin.UserID, &s.Admin.Name, &s.Admin.Email,
			&s.MemberCount, &s.IsActive, &s.IsStarted, &s.CurrentSlot, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.AvailableSlots = s.TotalSlots - s.MemberCount
		s.TotalValue = s.MonthlyAmount * int64(s.TotalSlots)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// AddJoinRequest appends a pending join request, re-checking every guard
// against the locked group row
func (r *GroupRepository) AddJoinRequest(ctx context.Context, groupID, userID string) (*domain.JoinRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	isActive, totalSlots, err := r.lockGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	if !isActive {
		return nil, domain.ErrGroupInactive
	}

	memberCount, isMember, err := r.membership(ctx, tx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, domain.ErrAlreadyMember
	}
	if memberCount >= totalSlots {
		return nil, domain.ErrGroupFull
	}

	var hasPending bool
	pendingQuery := `
		SELECT EXISTS(
			SELECT 1 FROM join_requests
			WHERE group_id = $1 AND user_id = $2 AND status = 'pending'
		)
	`
	if err := tx.QueryRow(ctx, pendingQuery, groupID, userID).Scan(&hasPending); err != nil {
		return nil, err
	}
	if hasPending {
		return nil, domain.ErrDuplicateRequest
	}

	jr := &domain.JoinRequest{
		RequestID:   uuid.NewString(),
		GroupID:     groupID,
		Status:      domain.RequestPending,
		RequestedAt: time.Now().UTC(),
	}

	insertQuery := `
		INSERT INTO join_requests (request_id, group_id, user_id, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertQuery, jr.RequestID, groupID, userID, jr.Status, jr.RequestedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // partial unique index on pending requests
				return nil, domain.ErrDuplicateRequest
			}
			if pgErr.Code == "23503" {
				return nil, domain.ErrUserNotFound
			}
		}
		return nil, err
	}

	userQuery := `SELECT user_id, name, email FROM users WHERE user_id = $1`
	if err := tx.QueryRow(ctx, userQuery, userID).Scan(&jr.User.UserID, &jr.User.Name, &jr.User.Email); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return jr, nil
}

// RespondToRequest resolves a pending join request under the group row lock
func (r *GroupRepository) RespondToRequest(ctx context.Context, groupID, requestID, adminID string, approve bool) (*domain.JoinRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, totalSlots, err := r.lockGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	requestQuery := `
		SELECT jr.request_id, u.user_id, u.name, u.email, jr.status, jr.requested_at
		FROM join_requests jr
		JOIN users u ON u.user_id = jr.user_id
		WHERE jr.request_id = $1 AND jr.group_id = $2
	`

	var jr domain.JoinRequest
	jr.GroupID = groupID
	err = tx.QueryRow(ctx, requestQuery, requestID, groupID).Scan(
		&jr.RequestID, &jr.User.UserID, &jr.User.Name, &jr.User.Email,
		&jr.Status, &jr.RequestedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	if !jr.IsPending() {
		return nil, domain.ErrAlreadyProcessed
	}

	if approve {
		memberCount, _, err := r.membership(ctx, tx, groupID, jr.User.UserID)
		if err != nil {
			return nil, err
		}
		// Capacity may have been exhausted by a concurrent approval
		if memberCount >= totalSlots {
			return nil, domain.ErrGroupFull
		}

		memberQuery := `INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, NOW())`
		if _, err := tx.Exec(ctx, memberQuery, groupID, jr.User.UserID); err != nil {
			return nil, err
		}
		jr.Status = domain.RequestApproved
	} else {
		jr.Status = domain.RequestRejected
	}

	respondedAt := time.Now().UTC()
	updateQuery := `
		UPDATE join_requests
		SET status = $1, responded_at = $2, responded_by = $3
		WHERE request_id = $4
	`
	if _, err := tx.Exec(ctx, updateQuery, jr.Status, respondedAt, adminID, requestID); err != nil {
		return nil, err
	}
	jr.RespondedAt = &respondedAt
	jr.RespondedBy = adminID

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &jr, nil
}

// lockGroup takes the row lock serializing all membership writers for the group
func (r *GroupRepository) lockGroup(ctx context.Context, tx pgx.Tx, groupID string) (isActive bool, totalSlots int, err error) {
	query := `SELECT is_active, total_slots FROM groups WHERE group_id = $1 FOR UPDATE`

	err = tx.QueryRow(ctx, query, groupID).Scan(&isActive, &totalSlots)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrGroupNotFound
		}
		return false, 0, err
	}
	return isActive, totalSlots, nil
}

func (r *GroupRepository) membership(ctx context.Context, tx pgx.Tx, groupID, userID string) (count int, isMember bool, err error) {
	query := `
		SELECT COUNT(*), bool_or(user_id = $2)
		FROM group_members
		WHERE group_id = $1
	`

	var member *bool
	if err := tx.QueryRow(ctx, query, groupID, userID).Scan(&count, &member); err != nil {
		return 0, false, err
	}
	// bool_or is NULL when the group has no members
	if member != nil {
		isMember = *member
	}
	return count, isMember, nil
}
