package workflow

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azis003/tick-track/internal/domain"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

var (
	employee  = &domain.User{ID: 1, Name: "Rani", Role: domain.RoleEmployee, Active: true}
	helpdesk  = &domain.User{ID: 2, Name: "Dewi", Role: domain.RoleHelpdesk, Active: true}
	tech      = &domain.User{ID: 3, Name: "Budi", Role: domain.RoleTechnician, Active: true}
	otherTech = &domain.User{ID: 4, Name: "Sari", Role: domain.RoleTechnician, Active: true}
	manager   = &domain.User{ID: 5, Name: "Agus", Role: domain.RoleManager, Active: true}
	outsider  = &domain.User{ID: 6, Name: "Tono", Role: domain.RoleEmployee, Active: true}
)

type engineFixture struct {
	engine *Engine
	store  *memStore
	clock  *time.Time
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store := newMemStore()
	engine := NewEngine(Dependencies{
		Store:           store,
		AutoCloseWindow: 72 * time.Hour,
		Now:             func() time.Time { return now },
	})
	return &engineFixture{engine: engine, store: store, clock: &now}
}

func (f *engineFixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.engine.Create(context.Background(), employee, CreateInput{
		Title:          "Printer offline",
		Description:    "The 3rd floor printer does not respond",
		CategoryID:     1,
		UserPriorityID: 2,
	})
	require.NoError(t, err)
	return ticket
}

// advanceTo walks a fresh ticket through the lifecycle up to target.
func (f *engineFixture) advanceTo(t *testing.T, target domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ctx := context.Background()
	ticket := f.createTicket(t)
	if target == domain.TicketStatusNew {
		return ticket
	}

	ticket, err := f.engine.Triage(ctx, helpdesk, ticket.ID, TriageInput{FinalPriorityID: 3})
	require.NoError(t, err)
	if target == domain.TicketStatusTriage {
		return ticket
	}

	ticket, err = f.engine.Assign(ctx, helpdesk, ticket.ID, AssignInput{TechnicianID: tech.ID})
	require.NoError(t, err)
	if target == domain.TicketStatusAssigned {
		return ticket
	}

	ticket, err = f.engine.Accept(ctx, tech, ticket.ID)
	require.NoError(t, err)
	if target == domain.TicketStatusInProgress {
		return ticket
	}

	switch target {
	case domain.TicketStatusPendingUser:
		ticket, err = f.engine.SetPending(ctx, tech, ticket.ID, PendingInput{Type: domain.PendingTypeUser, Reason: "need more info"})
	case domain.TicketStatusPendingExternal:
		ticket, err = f.engine.SetPending(ctx, tech, ticket.ID, PendingInput{Type: domain.PendingTypeExternal, Reason: "vendor part on order"})
	case domain.TicketStatusWaitingApproval:
		ticket, err = f.engine.RequestApproval(ctx, tech, ticket.ID, ApprovalRequestInput{RequestType: "purchase", RequestReason: "replacement fuser"})
	case domain.TicketStatusResolved:
		ticket, err = f.engine.Resolve(ctx, tech, ticket.ID, ResolveInput{Resolution: "power cycled and re-added to print server"})
	default:
		t.Fatalf("advanceTo does not support %s", target)
	}
	require.NoError(t, err)
	return ticket
}

// ---------------------------------------------------------------------------
// creation
// ---------------------------------------------------------------------------

func TestCreateAssignsSequentialTicketNumbers(t *testing.T) {
	f := newFixture(t)

	first := f.createTicket(t)
	second := f.createTicket(t)

	assert.Equal(t, "TKT0000001", first.TicketNumber)
	assert.Equal(t, "TKT0000002", second.TicketNumber)
	assert.Equal(t, domain.TicketStatusNew, first.Status)
	assert.Equal(t, employee.ID, first.ReporterID)
	assert.Equal(t, employee.ID, first.CreatedByID)

	logs := f.store.logsFor(first.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.LogActionCreate, logs[0].Action)
	assert.Nil(t, logs[0].FromStatus)
	assert.Equal(t, domain.TicketStatusNew, logs[0].ToStatus)
}

func TestCreateConcurrentNumbersAreUnique(t *testing.T) {
	f := newFixture(t)

	const n = 20
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := f.engine.Create(context.Background(), employee, CreateInput{
				Title:          "bulk",
				Description:    "bulk",
				CategoryID:     1,
				UserPriorityID: 1,
			})
			if assert.NoError(t, err) {
				numbers <- ticket.TicketNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate ticket number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestCreateForOtherReporter(t *testing.T) {
	f := newFixture(t)

	reporterID := employee.ID
	ticket, err := f.engine.Create(context.Background(), helpdesk, CreateInput{
		Title:          "Phoned in: laptop broken",
		Description:    "reported over the phone",
		CategoryID:     1,
		UserPriorityID: 1,
		ReporterID:     &reporterID,
	})
	require.NoError(t, err)
	assert.Equal(t, employee.ID, ticket.ReporterID)
	assert.Equal(t, helpdesk.ID, ticket.CreatedByID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing title", CreateInput{Description: "d", CategoryID: 1, UserPriorityID: 1}},
		{"missing description", CreateInput{Title: "t", CategoryID: 1, UserPriorityID: 1}},
		{"missing category", CreateInput{Title: "t", Description: "d", UserPriorityID: 1}},
		{"missing priority", CreateInput{Title: "t", Description: "d", CategoryID: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Create(context.Background(), employee, tc.input)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		})
	}
}

// ---------------------------------------------------------------------------
// routing: triage, assign, accept, return
// ---------------------------------------------------------------------------

func TestTriageThenAssignRecordsTrail(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusAssigned)

	assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)
	require.NotNil(t, ticket.FinalPriorityID)
	assert.Equal(t, int64(3), *ticket.FinalPriorityID)
	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, tech.ID, *ticket.AssignedToID)
	require.NotNil(t, ticket.AssignedByID)
	assert.Equal(t, helpdesk.ID, *ticket.AssignedByID)
	assert.NotNil(t, ticket.AssignedAt)

	logs := f.store.logsFor(ticket.ID)
	require.Len(t, logs, 3)
	assert.Equal(t, domain.LogActionCreate, logs[0].Action)
	assert.Equal(t, domain.LogActionTriage, logs[1].Action)
	assert.Equal(t, domain.LogActionAssign, logs[2].Action)
	require.NotNil(t, logs[2].FromStatus)
	assert.Equal(t, domain.TicketStatusTriage, *logs[2].FromStatus)
	assert.Equal(t, domain.TicketStatusAssigned, logs[2].ToStatus)
}

func TestReassignFromAssigned(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusAssigned)

	updated, err := f.engine.Assign(context.Background(), helpdesk, ticket.ID, AssignInput{TechnicianID: otherTech.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAssigned, updated.Status)
	assert.Equal(t, otherTech.ID, *updated.AssignedToID)
}

func TestSelfHandleSkipsAssignment(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusTriage)

	updated, err := f.engine.SelfHandle(context.Background(), helpdesk, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, helpdesk.ID, *updated.AssignedToID)
	assert.NotNil(t, updated.StartedAt)
}

func TestAcceptRequiresAssignee(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusAssigned)

	_, err := f.engine.Accept(context.Background(), otherTech, ticket.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	updated, err := f.engine.Accept(context.Background(), tech, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.NotNil(t, updated.StartedAt)
}

func TestReturnClearsAssignment(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusInProgress)

	_, err := f.engine.Return(context.Background(), tech, ticket.ID, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	updated, err := f.engine.Return(context.Background(), tech, ticket.ID, "needs network team")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusTriage, updated.Status)
	assert.Nil(t, updated.AssignedToID)
	assert.Nil(t, updated.StartedAt)
	require.NotNil(t, updated.ReturnReason)
	assert.Equal(t, "needs network team", *updated.ReturnReason)
}

// ---------------------------------------------------------------------------
// pending and resume
// ---------------------------------------------------------------------------

func TestSetPendingAddsAutoComment(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusPendingUser)

	assert.Equal(t, domain.TicketStatusPendingUser, ticket.Status)
	require.NotNil(t, ticket.PendingType)
	assert.Equal(t, domain.PendingTypeUser, *ticket.PendingType)

	comments := f.store.commentsFor(ticket.ID)
	require.Len(t, comments, 1)
	assert.True(t, strings.HasPrefix(comments[0].Content, "[Returned to reporter]"))
	assert.Contains(t, comments[0].Content, "need more info")
}

func TestResumeAuthorization(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusPendingUser)

	_, err := f.engine.Resume(context.Background(), outsider, ticket.ID, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	updated, err := f.engine.Resume(context.Background(), employee, ticket.ID, "replied with the asset tag")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Nil(t, updated.PendingType)
	assert.Nil(t, updated.PendingReason)
}

func TestResumePendingExternalOnlyAssignee(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusPendingExternal)

	_, err := f.engine.Resume(context.Background(), employee, ticket.ID, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	updated, err := f.engine.Resume(context.Background(), tech, ticket.ID, "part arrived")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
}

// ---------------------------------------------------------------------------
// approvals
// ---------------------------------------------------------------------------

func TestApprovalCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.advanceTo(t, domain.TicketStatusWaitingApproval)

	// rejecting without notes is not allowed
	_, err := f.engine.DecideApproval(ctx, manager, ticket.ID, ApprovalDecisionInput{Approve: false})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	updated, err := f.engine.DecideApproval(ctx, manager, ticket.ID, ApprovalDecisionInput{Approve: false, Notes: "too expensive, find alternative"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	logs := f.store.logsFor(ticket.ID)
	last := logs[len(logs)-1]
	assert.Equal(t, domain.LogActionApprovalRejected, last.Action)

	comments := f.store.commentsFor(ticket.ID)
	require.NotEmpty(t, comments)
	assert.True(t, strings.HasPrefix(comments[len(comments)-1].Content, "[Approval rejected]"))

	// no pending approval remains
	_, err = f.engine.DecideApproval(ctx, manager, ticket.ID, ApprovalDecisionInput{Approve: true})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestApprovalApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.advanceTo(t, domain.TicketStatusWaitingApproval)

	updated, err := f.engine.DecideApproval(ctx, manager, ticket.ID, ApprovalDecisionInput{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	logs := f.store.logsFor(ticket.ID)
	assert.Equal(t, domain.LogActionApprovalApproved, logs[len(logs)-1].Action)
}

// ---------------------------------------------------------------------------
// resolve, close, reopen, auto-close
// ---------------------------------------------------------------------------

func TestResolveSchedulesAutoClose(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusResolved)

	require.NotNil(t, ticket.ResolvedAt)
	require.NotNil(t, ticket.AutoCloseAt)
	assert.Equal(t, ticket.ResolvedAt.Add(72*time.Hour), *ticket.AutoCloseAt)
	require.NotNil(t, ticket.Resolution)
}

func TestResolveRequiresAssignee(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusInProgress)

	_, err := f.engine.Resolve(context.Background(), otherTech, ticket.ID, ResolveInput{Resolution: "done"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestResolveFromWaitingApprovalRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.advanceTo(t, domain.TicketStatusWaitingApproval)

	before, err := f.store.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	logsBefore := f.store.logsFor(ticket.ID)

	_, err = f.engine.Resolve(ctx, tech, ticket.ID, ResolveInput{Resolution: "done anyway"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	// a refused transition leaves the ticket and its trail untouched
	after, err := f.store.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
	assert.Equal(t, logsBefore, f.store.logsFor(ticket.ID))
}

func TestCloseOnlyByCreator(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusResolved)

	_, err := f.engine.Close(context.Background(), tech, ticket.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	updated, err := f.engine.Close(context.Background(), employee, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	assert.NotNil(t, updated.ClosedAt)
}

func TestReopenResetsResolutionState(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusResolved)

	updated, err := f.engine.Reopen(context.Background(), employee, ticket.ID, "printer is offline again")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusReopened, updated.Status)
	assert.Equal(t, 1, updated.ReopenCount)
	assert.Nil(t, updated.Resolution)
	assert.Nil(t, updated.ResolvedAt)
	assert.Nil(t, updated.AutoCloseAt)
}

func TestSweepAutoClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := f.advanceTo(t, domain.TicketStatusResolved)
	notDue := f.advanceTo(t, domain.TicketStatusResolved)

	// push only the first ticket past its deadline
	earlier := f.clock.Add(-80 * time.Hour)
	f.store.mu.Lock()
	f.store.tickets[due.ID].AutoCloseAt = &earlier
	f.store.mu.Unlock()

	closed, err := f.engine.SweepAutoClose(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	closedTicket, err := f.store.GetTicket(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closedTicket.Status)

	stillResolved, err := f.store.GetTicket(ctx, notDue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stillResolved.Status)

	logs := f.store.logsFor(due.ID)
	last := logs[len(logs)-1]
	assert.Equal(t, domain.LogActionAutoClose, last.Action)
	assert.Nil(t, last.UserID)
}

func TestSweepSkipsConcurrentlyMovedTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket := f.advanceTo(t, domain.TicketStatusResolved)
	earlier := f.clock.Add(-80 * time.Hour)

	stale := staleStore{memStore: f.store}
	stale.extra = append(stale.extra, func() domain.Ticket {
		t, _ := f.store.GetTicket(ctx, ticket.ID)
		t.AutoCloseAt = &earlier
		return *t
	}())

	// a user reopens before the sweep runs
	f.store.setStatus(ticket.ID, domain.TicketStatusReopened)

	engine := NewEngine(Dependencies{Store: &stale, Now: func() time.Time { return *f.clock }})
	closed, err := engine.SweepAutoClose(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	current, err := f.store.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusReopened, current.Status)
}

// staleStore serves a fixed due list, simulating a ticket moved between the
// sweep's read and its write.
type staleStore struct {
	*memStore
	extra []domain.Ticket
}

func (s *staleStore) ListAutoCloseDue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	return s.extra, nil
}

// ---------------------------------------------------------------------------
// comments
// ---------------------------------------------------------------------------

func TestAddCommentRejectedOnTerminalStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resolved := f.advanceTo(t, domain.TicketStatusResolved)
	_, err := f.engine.AddComment(ctx, tech, resolved.ID, CommentInput{Content: "late note"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	closedTicket, err := f.engine.Close(ctx, employee, resolved.ID)
	require.NoError(t, err)
	_, err = f.engine.AddComment(ctx, employee, closedTicket.ID, CommentInput{Content: "too late"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestAddCommentStrictPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inProgress := f.advanceTo(t, domain.TicketStatusInProgress)

	// non-staff outsider has no access at all
	_, err := f.engine.AddComment(ctx, outsider, inProgress.ID, CommentInput{Content: "me too"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	// creator may not comment outside pending_user under the strict policy
	_, err = f.engine.AddComment(ctx, employee, inProgress.ID, CommentInput{Content: "any update?"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	// staff comment fine at any active state
	comment, err := f.engine.AddComment(ctx, tech, inProgress.ID, CommentInput{Content: "investigating"})
	require.NoError(t, err)
	assert.False(t, comment.IsInternal)
}

func TestInternalCommentRequiresStaff(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusPendingUser)

	_, err := f.engine.AddComment(context.Background(), employee, ticket.ID, CommentInput{Content: "secret", IsInternal: true})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	comment, err := f.engine.AddComment(context.Background(), tech, ticket.ID, CommentInput{Content: "vendor ticket 4711", IsInternal: true})
	require.NoError(t, err)
	assert.True(t, comment.IsInternal)
}

func TestCreatorCommentAutoResumesPendingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.advanceTo(t, domain.TicketStatusPendingUser)

	comment, err := f.engine.AddComment(ctx, employee, ticket.ID, CommentInput{Content: "the asset tag is IT-0042"})
	require.NoError(t, err)
	assert.Equal(t, employee.ID, comment.UserID)

	resumed, err := f.store.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, resumed.Status)
	assert.Nil(t, resumed.PendingType)

	logs := f.store.logsFor(ticket.ID)
	last := logs[len(logs)-1]
	assert.Equal(t, domain.LogActionResume, last.Action)
	require.NotNil(t, last.Notes)
	assert.Contains(t, *last.Notes, "responded")
}

func TestBroadPolicyAllowsReporterCommentsWhileNew(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(Dependencies{Store: store, CommentPolicy: CommentPolicyBroad})

	ticket, err := engine.Create(context.Background(), employee, CreateInput{
		Title: "t", Description: "d", CategoryID: 1, UserPriorityID: 1,
	})
	require.NoError(t, err)

	comment, err := engine.AddComment(context.Background(), employee, ticket.ID, CommentInput{Content: "forgot to mention the floor"})
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	// new state means no auto-resume
	current, err := store.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, current.Status)
}

func TestBroadPolicyCommentDoesNotAutoResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.advanceTo(t, domain.TicketStatusPendingUser)

	broad := NewEngine(Dependencies{
		Store:         f.store,
		CommentPolicy: CommentPolicyBroad,
		Now:           func() time.Time { return *f.clock },
	})

	comment, err := broad.AddComment(ctx, employee, ticket.ID, CommentInput{Content: "still broken by the way"})
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	// resuming stays an explicit action under the broad policy
	current, err := f.store.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPendingUser, current.Status)
	require.NotNil(t, current.PendingType)

	logs := f.store.logsFor(ticket.ID)
	assert.NotEqual(t, domain.LogActionResume, logs[len(logs)-1].Action)
}

// ---------------------------------------------------------------------------
// concurrency guard
// ---------------------------------------------------------------------------

func TestTransitionConflictDetected(t *testing.T) {
	f := newFixture(t)
	ticket := f.advanceTo(t, domain.TicketStatusResolved)

	// a stale bundle built against resolved loses after the ticket moved
	f.store.setStatus(ticket.ID, domain.TicketStatusReopened)

	now := *f.clock
	updated := *ticket
	updated.Status = domain.TicketStatusClosed
	err := f.store.ApplyTransition(context.Background(), &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: domain.TicketStatusResolved,
		Log:            newLog(&ticket.ID, &employee.ID, domain.LogActionClose, &ticket.Status, domain.TicketStatusClosed, "", now),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConcurrentModification))
}
