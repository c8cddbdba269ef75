package airtable

import (
	"context"
	"testing"

	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/core/school"
	"github.com/shakhna/portal/core/user"
)

var testTables = core.TableNames{
	Users:       "Users",
	Groups:      "Groups",
	Homeworks:   "Homeworks",
	Payments:    "Payments",
	AssignTests: "Assign_Tests",
	TestResults: "Test_Results",
}

func TestUserRepository_GetUserByCredentials(t *testing.T) {
	store := newFakeStore()
	store.seed("Users", map[string]interface{}{
		"Email":    "awe@test.cd",
		"Password": "mdr",
		"Name":     "awe",
		"Role":     "Student",
		"Group":    []interface{}{"recGroup"},
	})
	repo := NewUserRepository(newTestClient(t, store), "Users")

	usr, err := repo.GetUserByCredentials(context.Background(), "awe@test.cd", "mdr")
	if err != nil {
		t.Fatalf("GetUserByCredentials() failed: %v", err)
	}
	if usr.Email != "awe@test.cd" || usr.Role != "Student" {
		t.Errorf("user = %+v", usr)
	}
	if usr.GroupID.String != "recGroup" {
		t.Errorf("GroupID = %q; want the first linked id", usr.GroupID.String)
	}

	// both columns are matched in one store-side filter
	want := `AND( {Email} = "awe@test.cd", {Password} = "mdr" )`
	if store.lastFilter != want {
		t.Errorf("filter = %q; want %q", store.lastFilter, want)
	}
}

func TestUserRepository_GetUserByCredentials_miss(t *testing.T) {
	store := newFakeStore()
	repo := NewUserRepository(newTestClient(t, store), "Users")

	// the fake store ignores filters and returns the table as-is; an empty
	// table is an empty first page, which must read as not-found
	if _, err := repo.GetUserByCredentials(context.Background(), "awe@test.cd", "wrong"); err != user.ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func TestSchoolRepository_GetGroup(t *testing.T) {
	store := newFakeStore()
	rec := store.seed("Groups", map[string]interface{}{
		"Name":       "B2",
		"Start Date": "2024-09-01",
		"Users":      []interface{}{"recS1", "recS2"},
		"Homeworks":  []interface{}{"recH1"},
	})
	repo := NewSchoolRepository(newTestClient(t, store), testTables)

	grp, err := repo.GetGroup(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetGroup() failed: %v", err)
	}
	if grp.Name != "B2" || len(grp.StudentIDs) != 2 || len(grp.HomeworkIDs) != 1 {
		t.Errorf("group = %+v", grp)
	}
	if grp.StartDate.Display() != "2024-09-01" {
		t.Errorf("StartDate = %s", grp.StartDate.Display())
	}

	if _, err := repo.GetGroup(context.Background(), "recMissing"); err != school.ErrNotFound {
		t.Errorf("missing group err = %v; want ErrNotFound", err)
	}
}

func TestSchoolRepository_QueryTestsByGroup_filter(t *testing.T) {
	store := newFakeStore()
	store.seed("Assign_Tests", map[string]interface{}{
		"Test Title": "Unit 3",
		"Group":      []interface{}{"recGroup"},
		"Due Date":   "2025-01-15",
		"Test File":  []interface{}{map[string]interface{}{"url": "https://portal/tests/unit3.html"}},
	})
	repo := NewSchoolRepository(newTestClient(t, store), testTables)

	tests, err := repo.QueryTestsByGroup(context.Background(), "recGroup")
	if err != nil {
		t.Fatalf("QueryTestsByGroup() failed: %v", err)
	}
	if len(tests) != 1 || tests[0].Title != "Unit 3" || tests[0].FileURL != "https://portal/tests/unit3.html" {
		t.Errorf("tests = %+v", tests)
	}

	want := `SEARCH("recGroup", ARRAYJOIN({Group}))`
	if store.lastFilter != want {
		t.Errorf("filter = %q; want %q", store.lastFilter, want)
	}
}

func TestSchoolRepository_CreateHomework(t *testing.T) {
	store := newFakeStore()
	repo := NewSchoolRepository(newTestClient(t, store), testTables)

	hw, err := repo.CreateHomework(context.Background(), school.NewHomework{
		Title:   "Essay",
		GroupID: "recGroup",
		DueDate: "2025-01-20",
		Attachments: []school.Attachment{
			{URL: "https://cdn/task.pdf", Filename: "task.pdf"},
		},
	})
	if err != nil {
		t.Fatalf("CreateHomework() failed: %v", err)
	}
	if hw.ID == "" || hw.Title != "Essay" {
		t.Errorf("homework = %+v", hw)
	}
	if hw.DueDate.Display() != "2025-01-20" {
		t.Errorf("DueDate = %s", hw.DueDate.Display())
	}
	if len(hw.Attachments) != 1 || hw.Attachments[0].Filename != "task.pdf" {
		t.Errorf("Attachments = %+v", hw.Attachments)
	}
}

func TestSchoolRepository_legacyTitleColumn(t *testing.T) {
	store := newFakeStore()
	store.seed("Assign_Tests", map[string]interface{}{
		"Title": "Old naming",
		"Group": []interface{}{"recGroup"},
	})
	repo := NewSchoolRepository(newTestClient(t, store), testTables)

	tests, err := repo.QueryAllTests(context.Background())
	if err != nil {
		t.Fatalf("QueryAllTests() failed: %v", err)
	}
	if len(tests) != 1 || tests[0].Title != "Old naming" {
		t.Errorf("tests = %+v; the legacy Title column must still be read", tests)
	}
}
