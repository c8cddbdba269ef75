package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/shakhna/portal/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) GetGroup(_ context.Context, id string) (school.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grp, ok := repo.db.groups[id]; ok {
		return *grp, nil
	}
	return school.Group{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryAllGroups(_ context.Context) ([]school.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	groups := make([]school.Group, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (repo *schoolRepository) GetStudent(_ context.Context, id string) (school.StudentRef, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return school.StudentRef{ID: usr.ID, Name: usr.Name}, nil
	}
	return school.StudentRef{}, school.ErrNotFound
}

func (repo *schoolRepository) GetHomework(_ context.Context, id string) (school.Homework, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if hw, ok := repo.db.homeworks[id]; ok {
		return *hw, nil
	}
	return school.Homework{}, school.ErrNotFound
}

func (repo *schoolRepository) CreateHomework(_ context.Context, nh school.NewHomework) (school.Homework, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	hw := school.Homework{
		ID:          repo.db.nextID(),
		Title:       nh.Title,
		DueDate:     school.ParseDate(nh.DueDate),
		GroupIDs:    []string{nh.GroupID},
		Attachments: nh.Attachments,
	}
	if nh.Description != "" {
		hw.Description = null.StringFrom(nh.Description)
	}
	repo.db.homeworks[hw.ID] = &hw

	// the store maintains the reverse link on the group
	if grp, ok := repo.db.groups[nh.GroupID]; ok {
		grp.HomeworkIDs = append(grp.HomeworkIDs, hw.ID)
	}
	return hw, nil
}

func (repo *schoolRepository) SetHomeworkDone(_ context.Context, id string, done bool) (school.Homework, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	hw, ok := repo.db.homeworks[id]
	if !ok {
		return school.Homework{}, school.ErrNotFound
	}
	hw.Done = done
	return *hw, nil
}

func (repo *schoolRepository) QueryAllPayments(_ context.Context) ([]school.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	payments := make([]school.Payment, 0, len(repo.db.payments))
	for _, p := range repo.db.payments {
		payments = append(payments, *p)
	}
	return payments, nil
}

func (repo *schoolRepository) QueryAllTests(_ context.Context) ([]school.AssignedTest, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tests := make([]school.AssignedTest, 0, len(repo.db.tests))
	for _, t := range repo.db.tests {
		tests = append(tests, *t)
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].ID < tests[j].ID })
	return tests, nil
}

func (repo *schoolRepository) QueryTestsByGroup(ctx context.Context, groupID string) ([]school.AssignedTest, error) {
	all, err := repo.QueryAllTests(ctx)
	if err != nil {
		return nil, err
	}
	tests := make([]school.AssignedTest, 0, len(all))
	for _, t := range all {
		if contains(t.GroupIDs, groupID) {
			tests = append(tests, t)
		}
	}
	return tests, nil
}

func (repo *schoolRepository) CreateTest(_ context.Context, nt school.NewTest) (school.AssignedTest, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t := school.AssignedTest{
		ID:       repo.db.nextID(),
		Title:    nt.Title,
		GroupIDs: []string{nt.GroupID},
		DueDate:  school.ParseDate(nt.DueDate),
		FileURL:  nt.FileURL,
	}
	repo.db.tests[t.ID] = &t
	return t, nil
}

func (repo *schoolRepository) QueryResultsByTest(_ context.Context, testID string) ([]school.TestResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	results := make([]school.TestResult, 0, len(repo.db.results))
	for _, res := range repo.db.results {
		if contains(res.TestIDs, testID) {
			results = append(results, *res)
		}
	}
	return results, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
