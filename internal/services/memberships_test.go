package services

import (
	"testing"

	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"github.com/Sean-Pereira-945/TaskManager/internal/testutil"
	"github.com/Sean-Pereira-945/TaskManager/internal/types"
)

func TestRequireMember_DistinguishesMissingProjectFromNonMember(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")
	outsider := testutil.CreateUser(t, "X", "x@example.com")

	project, err := CreateProject("P", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := RequireMember(9999, owner.ID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected NotFound for missing project, got %v", err)
	}

	if _, err := RequireMember(project.ID, outsider.ID); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("expected Forbidden for non-member, got %v", err)
	}

	if _, err := RequireMember(project.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error for member: %v", err)
	}
}

func TestRequireOwner_RejectsPlainMember(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")
	member := testutil.CreateUser(t, "M", "m@example.com")

	project, err := CreateProject("P", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := AddMember(project.ID, member.Email, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := RequireOwner(project.ID, member.ID); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	if _, err := RequireOwner(project.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error for owner: %v", err)
	}
}

func TestAddMember_Rules(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")
	member := testutil.CreateUser(t, "M", "m@example.com")

	project, err := CreateProject("P", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Invites are owner-only; a non-member cannot invite at all.
	if _, err := AddMember(project.ID, owner.Email, member.ID); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	if _, err := AddMember(project.ID, "nobody@example.com", owner.ID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected NotFound for unknown email, got %v", err)
	}

	if _, err := AddMember(project.ID, owner.Email, owner.ID); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected Validation for self-invite, got %v", err)
	}

	membership, err := AddMember(project.ID, "M@Example.COM", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if membership.Role != models.RoleMember {
		t.Fatalf("expected role member, got %q", membership.Role)
	}

	if _, err := AddMember(project.ID, member.Email, owner.ID); !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected Conflict for duplicate invite, got %v", err)
	}
}

func TestRemoveMember_BlockedByOpenAssignmentsThenSucceeds(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")
	member := testutil.CreateUser(t, "M", "m@example.com")

	project, err := CreateProject("P", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := AddMember(project.ID, member.Email, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, err := CreateTask(CreateTaskInput{
		Title:      "open work",
		ProjectID:  project.ID,
		AssigneeID: &member.ID,
	}, owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = RemoveMember(project.ID, member.ID, owner.ID)

	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected Conflict while member holds an open task, got %v", err)
	}

	// Reassign the task to the owner, then removal goes through.
	if _, err := UpdateTask(task.ID, TaskPatch{AssigneeID: types.Some(owner.ID)}, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := RemoveMember(project.ID, member.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	membership, err := Membership(project.ID, member.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if membership != nil {
		t.Fatal("expected membership removed")
	}

	// Removal must not block a later re-invite.
	if _, err := AddMember(project.ID, member.Email, owner.ID); err != nil {
		t.Fatalf("unexpected error on re-invite: %v", err)
	}
}

func TestRemoveMember_DoneAssignmentsDoNotBlock(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")
	member := testutil.CreateUser(t, "M", "m@example.com")

	project, err := CreateProject("P", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := AddMember(project.ID, member.Email, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := CreateTask(CreateTaskInput{
		Title:      "finished work",
		Status:     models.TaskStatusDone,
		ProjectID:  project.ID,
		AssigneeID: &member.ID,
	}, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := RemoveMember(project.ID, member.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveMember_SelfRemovalRejected(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")

	project, err := CreateProject("P", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := RemoveMember(project.ID, owner.ID, owner.ID); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected Validation, got %v", err)
	}
}
