package engine

import (
	"cmp"
	"slices"
	"time"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// KindedPerson is a person tagged with the collection it came from.
type KindedPerson struct {
	model.Person
	Kind model.Kind
}

// DashboardStats is the summary shown after login.
type DashboardStats struct {
	Members  int
	Visitors int
	Events   int

	// VisitorsThisMonth counts visitors registered in now's month and year.
	VisitorsThisMonth int

	// RecentVisitors are the latest registrations, newest first.
	RecentVisitors []model.Person

	// TodayBirthdays spans both collections, members first.
	TodayBirthdays []KindedPerson
}

// Dashboard computes the summary. Registration dates are compared in now's
// location.
func Dashboard(now time.Time, members, visitors []model.Person, events []model.ChurchEvent) DashboardStats {
	stats := DashboardStats{
		Members:  len(members),
		Visitors: len(visitors),
		Events:   len(events),
	}

	type registered struct {
		p  model.Person
		at time.Time
	}
	var dated []registered
	for _, v := range visitors {
		at, ok := v.Registered()
		if !ok {
			continue
		}
		at = at.In(now.Location())
		if at.Year() == now.Year() && at.Month() == now.Month() {
			stats.VisitorsThisMonth++
		}
		dated = append(dated, registered{v, at})
	}
	slices.SortStableFunc(dated, func(a, b registered) int {
		return cmp.Compare(b.at.UnixNano(), a.at.UnixNano())
	})
	for i := 0; i < len(dated) && i < config.RecentVisitorsLimit; i++ {
		stats.RecentVisitors = append(stats.RecentVisitors, dated[i].p)
	}

	for _, p := range FilterToday(now, members) {
		stats.TodayBirthdays = append(stats.TodayBirthdays, KindedPerson{p, model.KindMember})
	}
	for _, p := range FilterToday(now, visitors) {
		stats.TodayBirthdays = append(stats.TodayBirthdays, KindedPerson{p, model.KindVisitor})
	}
	return stats
}
