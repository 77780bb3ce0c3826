package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"travelcrm/internal/modules/followup"
)

// AgendaJob logs a morning digest of overdue and due-today follow-ups so
// agents start the day with an actionable list in the operational log.
type AgendaJob struct {
	followups *followup.Service
	runner    *cron.Cron
	log       zerolog.Logger
}

func NewAgendaJob(followups *followup.Service, log zerolog.Logger) *AgendaJob {
	return &AgendaJob{followups: followups, runner: cron.New(), log: log}
}

// Start schedules the digest with the given cron spec, e.g. "0 8 * * *".
func (j *AgendaJob) Start(spec string) error {
	_, err := j.runner.AddFunc(spec, j.Run)
	if err != nil {
		return err
	}
	j.runner.Start()
	j.log.Info().Str("spec", spec).Msg("follow-up agenda job scheduled")
	return nil
}

func (j *AgendaJob) Stop() {
	ctx := j.runner.Stop()
	<-ctx.Done()
}

func (j *AgendaJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	agenda, err := j.followups.Agenda(ctx, time.Now())
	if err != nil {
		j.log.Error().Err(err).Msg("failed to build follow-up agenda")
		return
	}

	j.log.Info().
		Int("overdue", len(agenda.Overdue)).
		Int("due_today", len(agenda.DueToday)).
		Int("upcoming", len(agenda.Upcoming)).
		Msg("daily follow-up digest")

	for _, f := range agenda.Overdue {
		j.log.Warn().
			Int64("follow_up_id", f.ID).
			Int64("lead_id", f.LeadID).
			Str("type", string(f.Type)).
			Str("priority", string(f.Priority)).
			Time("scheduled_at", f.ScheduledAt).
			Msg("follow-up overdue")
	}
}
