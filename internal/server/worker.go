package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// PersonLister is satisfied by the store's person collections.
type PersonLister interface {
	All() ([]model.Person, error)
}

// EventLister is satisfied by the store's events collection.
type EventLister interface {
	All() ([]model.ChurchEvent, error)
}

// Refresher regenerates both feeds from the store on a ticker.
type Refresher struct {
	Server    *FeedServer
	Generator *engine.Generator
	Members   PersonLister
	Visitors  PersonLister
	Events    EventLister
	Interval  time.Duration

	trigger chan struct{}
}

// NewRefresher wires a Refresher. A non-positive interval uses the default.
func NewRefresher(srv *FeedServer, gen *engine.Generator, members, visitors PersonLister, events EventLister, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Duration(config.DefaultRefreshMin) * time.Minute
	}
	return &Refresher{
		Server:    srv,
		Generator: gen,
		Members:   members,
		Visitors:  visitors,
		Events:    events,
		Interval:  interval,
		trigger:   make(chan struct{}, config.ChannelBufferSize),
	}
}

// Trigger asks for a refresh without waiting for the ticker. Extra
// requests while one is pending are dropped.
func (w *Refresher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once, then on every tick or trigger until ctx is done.
func (w *Refresher) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	w.refreshLogged(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, w.Interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-w.trigger:
			log.Info(config.MsgRefreshReq)
			w.refreshLogged(ctx)
		case <-ticker.C:
			w.refreshLogged(ctx)
		}
	}
}

// Refresh renders both feeds. On error the previous content stays served.
func (w *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()

	events, err := w.Events.All()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedRefresh, err)
	}
	members, err := w.Members.All()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedRefresh, err)
	}
	visitors, err := w.Visitors.All()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedRefresh, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	agenda, err := w.Generator.AgendaCalendar(events)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedRefresh, err)
	}
	people := make([]model.Person, 0, len(members)+len(visitors))
	people = append(append(people, members...), visitors...)
	birthdays, _, err := w.Generator.BirthdayCalendar(people)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedRefresh, err)
	}

	if err := w.Server.Update(config.FeedAgenda, agenda); err != nil {
		return err
	}
	if err := w.Server.Update(config.FeedBirthdays, birthdays); err != nil {
		return err
	}
	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return nil
}

func (w *Refresher) refreshLogged(ctx context.Context) {
	if err := w.Refresh(ctx); err != nil && ctx.Err() == nil {
		slog.Error(config.ErrFeedRefresh,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err)
	}
}
