package tracker

import (
	"spendwatch/internal/analytics"
	"spendwatch/internal/budget"
	"spendwatch/internal/core"
	"spendwatch/internal/filter"
	"spendwatch/internal/store"
)

// DashboardView is the record table plus the summary cards. The table is
// filtered; the cards always cover every record.
type DashboardView struct {
	Records  []core.Expense
	Criteria filter.Criteria
	Summary  analytics.DashboardSummary
}

// HomeView is the landing page.
type HomeView struct {
	FirstName string
	Initials  string
	analytics.HomeSummary
}

// BudgetView is the budget page for the current month.
type BudgetView struct {
	Month     core.Date
	Budget    core.Budget
	HasBudget bool
	Status    budget.Status
}

func (s *Service) Dashboard(c filter.Criteria) DashboardView {
	snap, _ := s.Snapshot()
	return DashboardView{
		Records:  filter.Apply(snap.Records, c),
		Criteria: c,
		Summary:  analytics.Dashboard(snap.Records, s.Today()),
	}
}

func (s *Service) Analytics() analytics.AnalyticsSummary {
	snap, _ := s.Snapshot()
	return analytics.Overview(snap.Records)
}

func (s *Service) Home() HomeView {
	snap, _ := s.Snapshot()
	return HomeView{
		FirstName:   s.session.FirstName(),
		Initials:    s.session.Initials(),
		HomeSummary: analytics.Home(snap.Records, s.Today()),
	}
}

// BudgetView reports the current month's spending against its budget. With
// no budget configured the status is computed against zero limits.
func (s *Service) BudgetView() BudgetView {
	snap, _ := s.Snapshot()
	month := s.Today().FirstOfMonth()

	v := BudgetView{Month: month}
	if snap.HasBudget && snap.Month.Equal(month) {
		v.Budget, v.HasBudget = snap.Budget, true
	}
	v.Status = budget.Compute(store.MonthSpent(snap.Records, month), v.Budget)
	return v
}
