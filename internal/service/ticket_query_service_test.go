package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/repository"
	"github.com/azis003/tick-track/internal/taskqueue"
)

type stubUserRepo struct {
	users []domain.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (r *stubUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			return &r.users[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) ListActiveByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role && user.Active {
			result = append(result, user)
		}
	}
	return result, nil
}

type stubTicketRepo struct {
	openCounts map[int64]int
}

func (r *stubTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubTicketRepo) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *stubTicketRepo) ListByUnit(ctx context.Context, unitID int64, limit, offset int) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *stubTicketRepo) ListQueue(ctx context.Context, criteria taskqueue.Criteria, limit, offset int) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *stubTicketRepo) CountQueue(ctx context.Context, criteria taskqueue.Criteria) (int, error) {
	return 0, nil
}

func (r *stubTicketRepo) CountOpenByAssignee(ctx context.Context) (map[int64]int, error) {
	return r.openCounts, nil
}

func TestListAvailableAssigneesOrdersByWorkload(t *testing.T) {
	users := &stubUserRepo{users: []domain.User{
		{ID: 1, Name: "Budi", Role: domain.RoleTechnician, Active: true},
		{ID: 2, Name: "Sari", Role: domain.RoleTechnician, Active: true},
		{ID: 3, Name: "Tono", Role: domain.RoleTechnician, Active: true},
		{ID: 4, Name: "Dewi", Role: domain.RoleHelpdesk, Active: true},
		{ID: 5, Name: "Rani", Role: domain.RoleTechnician, Active: false},
	}}
	tickets := &stubTicketRepo{openCounts: map[int64]int{1: 4, 2: 1}}

	svc := NewTicketQueryService(QueryDependencies{TicketRepo: tickets, UserRepo: users})

	workloads, err := svc.ListAvailableAssignees(context.Background())
	require.NoError(t, err)

	// only active technicians, least loaded first
	require.Len(t, workloads, 3)
	assert.Equal(t, int64(3), workloads[0].User.ID)
	assert.Equal(t, 0, workloads[0].OpenTickets)
	assert.Equal(t, int64(2), workloads[1].User.ID)
	assert.Equal(t, 1, workloads[1].OpenTickets)
	assert.Equal(t, int64(1), workloads[2].User.ID)
	assert.Equal(t, 4, workloads[2].OpenTickets)
}
