package services

import (
	"testing"

	"github.com/Sean-Pereira-945/TaskManager/db"
	"github.com/Sean-Pereira-945/TaskManager/internal/apperrors"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"github.com/Sean-Pereira-945/TaskManager/internal/testutil"
)

func TestCreateProject_InsertsOwnerMembership(t *testing.T) {
	testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, "U", "u@example.com")

	project, err := CreateProject("Alpha", "first project", user.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	membership, err := Membership(project.ID, user.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if membership == nil {
		t.Fatal("expected owner membership row")
	}

	if membership.Role != models.RoleOwner {
		t.Fatalf("expected role owner, got %q", membership.Role)
	}
}

func TestCreateProject_RollsBackWhenMembershipInsertFails(t *testing.T) {
	testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, "U", "u@example.com")

	// Simulate a failure between the project insert and the membership
	// insert: without the membership table the second statement fails.
	if err := db.DB.Migrator().DropTable(&models.ProjectMembership{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	if _, err := CreateProject("Alpha", "", user.ID); err == nil {
		t.Fatal("expected error")
	}

	var projects int64

	if err := db.DB.Model(&models.Project{}).Count(&projects).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if projects != 0 {
		t.Fatalf("expected project insert rolled back, found %d rows", projects)
	}
}

func TestEnsureDefaultProject_IdempotentAndAdoptsLegacyTasks(t *testing.T) {
	testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, "U", "u@example.com")

	legacy := models.Task{
		Title:     "old task",
		Status:    models.TaskStatusTodo,
		CreatorID: user.ID,
	}

	if err := db.DB.Create(&legacy).Error; err != nil {
		t.Fatalf("failed to seed legacy task: %v", err)
	}

	if err := EnsureDefaultProject(user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := EnsureDefaultProject(user.ID); err != nil {
		t.Fatalf("unexpected error on repeat call: %v", err)
	}

	var projects int64

	if err := db.DB.Model(&models.Project{}).Count(&projects).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if projects != 1 {
		t.Fatalf("expected exactly one project, got %d", projects)
	}

	var adopted models.Task

	if err := db.DB.First(&adopted, legacy.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if adopted.ProjectID == 0 {
		t.Fatal("expected legacy task adopted into the default project")
	}

	membership, err := Membership(adopted.ProjectID, user.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if membership == nil || membership.Role != models.RoleOwner {
		t.Fatal("expected owner membership in the default project")
	}
}

func TestListProjects_ReturnsMemberProjectsOnly(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")
	member := testutil.CreateUser(t, "M", "m@example.com")
	outsider := testutil.CreateUser(t, "X", "x@example.com")

	project, err := CreateProject("Shared", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := AddMember(project.ID, member.Email, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	memberProjects, err := ListProjects(member.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false

	for _, p := range memberProjects {
		if p.ID == project.ID {
			found = true
		}
	}

	if !found {
		t.Fatal("expected member to see the shared project")
	}

	outsiderProjects, err := ListProjects(outsider.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range outsiderProjects {
		if p.ID == project.ID {
			t.Fatal("outsider must not see the shared project")
		}
	}
}

func TestDeleteProject_OwnerOnlyAndCascades(t *testing.T) {
	testutil.OpenTestDB(t)
	owner := testutil.CreateUser(t, "O", "o@example.com")
	member := testutil.CreateUser(t, "M", "m@example.com")

	project, err := CreateProject("Doomed", "", owner.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := AddMember(project.ID, member.Email, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, err := CreateTask(CreateTaskInput{Title: "T", ProjectID: project.ID}, member.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = DeleteProject(project.ID, member.ID)

	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Fatalf("expected Forbidden for non-owner, got %v", err)
	}

	if err := DeleteProject(project.ID, owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := GetTask(task.ID, member.ID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected task gone, got %v", err)
	}

	membership, err := Membership(project.ID, member.ID)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if membership != nil {
		t.Fatal("expected membership removed with the project")
	}
}
