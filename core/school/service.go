package school

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/shakhna/portal/core"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrGroupNotLinked = errors.New("no group linked to this account")
)

// PlaceholderStudentName substitutes for a linked student whose record could
// not be fetched; the aggregate keeps its shape instead of failing whole.
const PlaceholderStudentName = "Unnamed Student"

type (
	Repository interface {
		GetGroup(ctx context.Context, id string) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		GetStudent(ctx context.Context, id string) (StudentRef, error)

		GetHomework(ctx context.Context, id string) (Homework, error)
		CreateHomework(ctx context.Context, nh NewHomework) (Homework, error)
		SetHomeworkDone(ctx context.Context, id string, done bool) (Homework, error)

		// QueryAllPayments returns the store's first page; callers tolerate
		// truncation.
		QueryAllPayments(ctx context.Context) ([]Payment, error)

		QueryAllTests(ctx context.Context) ([]AssignedTest, error)
		QueryTestsByGroup(ctx context.Context, groupID string) ([]AssignedTest, error)
		CreateTest(ctx context.Context, nt NewTest) (AssignedTest, error)
		QueryResultsByTest(ctx context.Context, testID string) ([]TestResult, error)
	}

	Service struct {
		repo    Repository
		logger  core.Logger
		gens    Generations
		nowFunc func() time.Time
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// View models. Each aggregate carries the generation token of the request that
// produced it; consumers drop results that Generations reports stale.

type (
	HomeworkCard struct {
		Homework
		Due     string `json:"due"`
		Expired bool   `json:"expired"`
		Status  string `json:"status"`
	}

	HomeworkList struct {
		Generation uint64         `json:"generation"`
		Cards      []HomeworkCard `json:"cards"`
	}

	TestRow struct {
		AssignedTest
		GroupName string `json:"group_name,omitempty"`
		Due       string `json:"due"`
		Expired   bool   `json:"expired"`
		Status    string `json:"status"`
	}

	TestsPanel struct {
		Generation uint64    `json:"generation"`
		Tests      []TestRow `json:"tests"`
	}

	TestStats struct {
		Generation uint64       `json:"generation"`
		TestID     string       `json:"test_id"`
		Title      string       `json:"title"`
		Total      int          `json:"total"`
		Completed  []StudentRef `json:"completed"`
		Pending    []StudentRef `json:"pending"`
	}

	GroupOption struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
)

// Generations exposes the service's token source so consumers can check
// whether a held aggregate has been superseded.
func (svc *Service) Generations() *Generations {
	return &svc.gens
}

// StudentHomework expands the student's group into display-ready homework
// cards: linked homework ids are resolved in parallel, failed legs are dropped
// and the rest sorted by due date, newest first.
func (svc *Service) StudentHomework(ctx context.Context, groupID string) (HomeworkList, error) {
	gen := svc.gens.Next()
	if groupID == "" {
		return HomeworkList{}, ErrGroupNotLinked
	}

	grp, err := svc.repo.GetGroup(ctx, groupID)
	if err != nil {
		return HomeworkList{}, errors.Wrap(err, "fetching group "+groupID)
	}

	homeworks := svc.resolveHomework(ctx, grp.HomeworkIDs)
	sort.SliceStable(homeworks, func(i, j int) bool {
		return homeworks[j].DueDate.Before(homeworks[i].DueDate.Time)
	})

	now := svc.nowFunc()
	cards := make([]HomeworkCard, 0, len(homeworks))
	for _, hw := range homeworks {
		expired := hw.DueDate.Expired(now)
		status := StatusActive
		if expired {
			status = StatusOverdue
		}
		cards = append(cards, HomeworkCard{
			Homework: hw,
			Due:      hw.DueDate.Display(),
			Expired:  expired,
			Status:   status,
		})
	}
	return HomeworkList{Generation: gen, Cards: cards}, nil
}

// TestStatistics partitions a test's group into completed and pending
// students. The two sets always cover the resolved students exactly: a student
// is completed iff their id appears in a Completed result for this test.
func (svc *Service) TestStatistics(ctx context.Context, testID, title, groupID string) (TestStats, error) {
	gen := svc.gens.Next()

	grp, err := svc.repo.GetGroup(ctx, groupID)
	if err != nil {
		return TestStats{}, errors.Wrap(err, "fetching group "+groupID)
	}
	students := svc.resolveStudents(ctx, grp.StudentIDs)

	results, err := svc.repo.QueryResultsByTest(ctx, testID)
	if err != nil {
		return TestStats{}, errors.Wrap(err, "fetching results for test "+testID)
	}

	completedIDs := make(map[string]bool, len(results))
	for _, res := range results {
		if res.Status == ResultCompleted && len(res.StudentIDs) > 0 {
			completedIDs[res.StudentIDs[0]] = true
		}
	}

	stats := TestStats{
		Generation: gen,
		TestID:     testID,
		Title:      title,
		Total:      len(students),
		Completed:  make([]StudentRef, 0, len(students)),
		Pending:    make([]StudentRef, 0, len(students)),
	}
	for _, s := range students {
		if completedIDs[s.ID] {
			stats.Completed = append(stats.Completed, s)
		} else {
			stats.Pending = append(stats.Pending, s)
		}
	}
	return stats, nil
}

// StudentPayments derives the student's payment schedule from the group's
// start date (September 1st of the current year when absent).
func (svc *Service) StudentPayments(ctx context.Context, studentID, groupID string) (PaymentSchedule, error) {
	gen := svc.gens.Next()

	payments, err := svc.repo.QueryAllPayments(ctx)
	if err != nil {
		return PaymentSchedule{}, errors.Wrap(err, "fetching payments")
	}

	today := svc.nowFunc()
	start := DefaultStartDate(today)
	if groupID != "" {
		if grp, err := svc.repo.GetGroup(ctx, groupID); err != nil {
			svc.logger.Warn("fetching group "+groupID+": falling back to default start date", err)
		} else if !grp.StartDate.IsZero() {
			start = grp.StartDate.Time
		}
	}

	entries, hasUnpaid := buildSchedule(start, today, payments, studentID)
	return PaymentSchedule{Generation: gen, Entries: entries, HasUnpaid: hasUnpaid}, nil
}

// StudentTests lists the tests assigned to the student's group.
func (svc *Service) StudentTests(ctx context.Context, groupID string) (TestsPanel, error) {
	gen := svc.gens.Next()
	if groupID == "" {
		return TestsPanel{}, ErrGroupNotLinked
	}

	tests, err := svc.repo.QueryTestsByGroup(ctx, groupID)
	if err != nil {
		return TestsPanel{}, errors.Wrap(err, "fetching tests for group "+groupID)
	}

	now := svc.nowFunc()
	rows := make([]TestRow, 0, len(tests))
	for _, t := range tests {
		expired := t.DueDate.Expired(now)
		status := StatusUpcoming
		if expired {
			status = StatusExpired
		}
		rows = append(rows, TestRow{
			AssignedTest: t,
			Due:          t.DueDate.Display(),
			Expired:      expired,
			Status:       status,
		})
	}
	return TestsPanel{Generation: gen, Tests: rows}, nil
}

// TeacherTests builds the teacher panel: every assigned test with its group
// name resolved. Groups and tests are fetched concurrently.
func (svc *Service) TeacherTests(ctx context.Context) (TestsPanel, error) {
	gen := svc.gens.Next()

	var (
		groups []Group
		tests  []AssignedTest
		gErr   error
		tErr   error
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		groups, gErr = svc.repo.QueryAllGroups(ctx)
	}()
	go func() {
		defer wg.Done()
		tests, tErr = svc.repo.QueryAllTests(ctx)
	}()
	wg.Wait()
	if gErr != nil {
		return TestsPanel{}, errors.Wrap(gErr, "fetching groups")
	}
	if tErr != nil {
		return TestsPanel{}, errors.Wrap(tErr, "fetching tests")
	}

	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	now := svc.nowFunc()
	rows := make([]TestRow, 0, len(tests))
	for _, t := range tests {
		name := "Unknown group"
		if len(t.GroupIDs) > 0 {
			if n, ok := names[t.GroupIDs[0]]; ok && n != "" {
				name = n
			}
		}
		expired := t.DueDate.Expired(now)
		status := StatusActive
		if expired {
			status = StatusExpired
		}
		rows = append(rows, TestRow{
			AssignedTest: t,
			GroupName:    name,
			Due:          t.DueDate.Display(),
			Expired:      expired,
			Status:       status,
		})
	}
	return TestsPanel{Generation: gen, Tests: rows}, nil
}

// GroupOptions lists groups for the assign/create forms; unnamed groups are
// skipped.
func (svc *Service) GroupOptions(ctx context.Context) ([]GroupOption, error) {
	groups, err := svc.repo.QueryAllGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching groups")
	}
	opts := make([]GroupOption, 0, len(groups))
	for _, g := range groups {
		if g.Name == "" {
			continue
		}
		opts = append(opts, GroupOption{ID: g.ID, Name: g.Name})
	}
	return opts, nil
}

func (svc *Service) CreateHomework(ctx context.Context, nh NewHomework) (Homework, error) {
	return svc.repo.CreateHomework(ctx, nh)
}

func (svc *Service) MarkHomeworkDone(ctx context.Context, id string, done bool) (Homework, error) {
	return svc.repo.SetHomeworkDone(ctx, id, done)
}

func (svc *Service) AssignTest(ctx context.Context, nt NewTest) (AssignedTest, error) {
	return svc.repo.CreateTest(ctx, nt)
}

// resolveStudents fans out one fetch per linked id and joins on an
// all-complete barrier. A failed leg degrades to a placeholder record and
// never cancels its siblings.
func (svc *Service) resolveStudents(ctx context.Context, ids []string) []StudentRef {
	refs := make([]StudentRef, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			ref, err := svc.repo.GetStudent(ctx, id)
			if err != nil {
				svc.logger.Warn("resolving student "+id, err)
				ref = StudentRef{ID: id, Name: PlaceholderStudentName}
			}
			refs[i] = ref
		}(i, id)
	}
	wg.Wait()
	return refs
}

// resolveHomework fans out like resolveStudents but drops failed legs: a
// missing homework record has no useful placeholder shape.
func (svc *Service) resolveHomework(ctx context.Context, ids []string) []Homework {
	fetched := make([]*Homework, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			hw, err := svc.repo.GetHomework(ctx, id)
			if err != nil {
				svc.logger.Warn("resolving homework "+id, err)
				return
			}
			fetched[i] = &hw
		}(i, id)
	}
	wg.Wait()

	homeworks := make([]Homework, 0, len(ids))
	for _, hw := range fetched {
		if hw != nil {
			homeworks = append(homeworks, *hw)
		}
	}
	return homeworks
}
