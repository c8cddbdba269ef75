package airtable

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/core/school"
)

type schoolRepository struct {
	client *Client
	tables core.TableNames
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(client *Client, tables core.TableNames) school.Repository {
	return &schoolRepository{client: client, tables: tables}
}

func (repo *schoolRepository) GetGroup(ctx context.Context, id string) (school.Group, error) {
	rec, err := repo.client.Get(ctx, repo.tables.Groups, id)
	if err != nil {
		if isNotFound(err) {
			return school.Group{}, school.ErrNotFound
		}
		return school.Group{}, err
	}
	return groupFromRecord(rec), nil
}

func (repo *schoolRepository) QueryAllGroups(ctx context.Context) ([]school.Group, error) {
	recs, err := repo.client.List(ctx, repo.tables.Groups, "")
	if err != nil {
		return nil, err
	}
	groups := make([]school.Group, 0, len(recs))
	for _, rec := range recs {
		groups = append(groups, groupFromRecord(rec))
	}
	return groups, nil
}

func (repo *schoolRepository) GetStudent(ctx context.Context, id string) (school.StudentRef, error) {
	rec, err := repo.client.Get(ctx, repo.tables.Users, id)
	if err != nil {
		if isNotFound(err) {
			return school.StudentRef{}, school.ErrNotFound
		}
		return school.StudentRef{}, err
	}
	return school.StudentRef{ID: rec.ID, Name: rec.Str("Name")}, nil
}

func (repo *schoolRepository) GetHomework(ctx context.Context, id string) (school.Homework, error) {
	rec, err := repo.client.Get(ctx, repo.tables.Homeworks, id)
	if err != nil {
		if isNotFound(err) {
			return school.Homework{}, school.ErrNotFound
		}
		return school.Homework{}, err
	}
	return homeworkFromRecord(rec), nil
}

func (repo *schoolRepository) CreateHomework(ctx context.Context, nh school.NewHomework) (school.Homework, error) {
	fields := map[string]interface{}{
		"Title":    nh.Title,
		"Due Date": nh.DueDate,
		"Group":    []string{nh.GroupID},
	}
	if nh.Description != "" {
		fields["Description"] = nh.Description
	}
	if len(nh.Attachments) > 0 {
		atts := make([]map[string]interface{}, 0, len(nh.Attachments))
		for _, a := range nh.Attachments {
			atts = append(atts, map[string]interface{}{"url": a.URL, "filename": a.Filename})
		}
		fields["Attachments"] = atts
	}
	rec, err := repo.client.Create(ctx, repo.tables.Homeworks, fields)
	if err != nil {
		return school.Homework{}, err
	}
	return homeworkFromRecord(rec), nil
}

func (repo *schoolRepository) SetHomeworkDone(ctx context.Context, id string, done bool) (school.Homework, error) {
	rec, err := repo.client.Update(ctx, repo.tables.Homeworks, id, map[string]interface{}{"done": done})
	if err != nil {
		return school.Homework{}, err
	}
	return homeworkFromRecord(rec), nil
}

func (repo *schoolRepository) QueryAllPayments(ctx context.Context) ([]school.Payment, error) {
	recs, err := repo.client.List(ctx, repo.tables.Payments, "")
	if err != nil {
		return nil, err
	}
	payments := make([]school.Payment, 0, len(recs))
	for _, rec := range recs {
		payments = append(payments, school.Payment{
			ID:         rec.ID,
			StudentIDs: rec.IDs("Student"),
			Month:      rec.Str("Month"),
			Status:     rec.Str("Status"),
		})
	}
	return payments, nil
}

func (repo *schoolRepository) QueryAllTests(ctx context.Context) ([]school.AssignedTest, error) {
	return repo.listTests(ctx, "")
}

func (repo *schoolRepository) QueryTestsByGroup(ctx context.Context, groupID string) ([]school.AssignedTest, error) {
	return repo.listTests(ctx, SearchInJoined(groupID, "Group"))
}

func (repo *schoolRepository) listTests(ctx context.Context, filter string) ([]school.AssignedTest, error) {
	recs, err := repo.client.List(ctx, repo.tables.AssignTests, filter)
	if err != nil {
		return nil, err
	}
	tests := make([]school.AssignedTest, 0, len(recs))
	for _, rec := range recs {
		tests = append(tests, testFromRecord(rec))
	}
	return tests, nil
}

func (repo *schoolRepository) CreateTest(ctx context.Context, nt school.NewTest) (school.AssignedTest, error) {
	fields := map[string]interface{}{
		"Test Title": nt.Title,
		"Test File":  []map[string]interface{}{{"url": nt.FileURL}},
		"Group":      []string{nt.GroupID},
		"Due Date":   nt.DueDate,
	}
	rec, err := repo.client.Create(ctx, repo.tables.AssignTests, fields)
	if err != nil {
		return school.AssignedTest{}, err
	}
	return testFromRecord(rec), nil
}

func (repo *schoolRepository) QueryResultsByTest(ctx context.Context, testID string) ([]school.TestResult, error) {
	recs, err := repo.client.List(ctx, repo.tables.TestResults, SearchInJoined(testID, "Test"))
	if err != nil {
		return nil, err
	}
	results := make([]school.TestResult, 0, len(recs))
	for _, rec := range recs {
		results = append(results, school.TestResult{
			ID:         rec.ID,
			TestIDs:    rec.IDs("Test"),
			StudentIDs: rec.IDs("Student"),
			Status:     rec.Str("Status"),
		})
	}
	return results, nil
}

func groupFromRecord(rec Record) school.Group {
	return school.Group{
		ID:          rec.ID,
		Name:        rec.Str("Name"),
		StartDate:   rec.Date("Start Date"),
		StudentIDs:  rec.IDs("Users"),
		HomeworkIDs: rec.IDs("Homeworks"),
	}
}

func homeworkFromRecord(rec Record) school.Homework {
	hw := school.Homework{
		ID:          rec.ID,
		Title:       rec.Str("Title"),
		DueDate:     rec.Date("Due Date"),
		Done:        rec.Bool("done"),
		GroupIDs:    rec.IDs("Group"),
		Attachments: rec.Attachments("Attachments"),
	}
	if desc := rec.Str("Description"); desc != "" {
		hw.Description = null.StringFrom(desc)
	}
	return hw
}

func testFromRecord(rec Record) school.AssignedTest {
	t := school.AssignedTest{
		ID:       rec.ID,
		Title:    rec.Str("Test Title"),
		GroupIDs: rec.IDs("Group"),
		DueDate:  rec.Date("Due Date"),
	}
	if atts := rec.Attachments("Test File"); len(atts) > 0 {
		t.FileURL = atts[0].URL
	}
	if t.Title == "" {
		t.Title = rec.Str("Title")
	}
	return t
}
