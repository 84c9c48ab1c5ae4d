/**
 * @description
 * This file contains the benefit-stage reminder scheduler. On a cron cadence it
 * scans every beneficiary timeline for DUE stages and logs a reminder per
 * beneficiary, picking the nudge template family that matches the earliest due
 * stage. Reminders are log-only; the operator sends actual nudges explicitly
 * through the API.
 *
 * @dependencies
 * - github.com/robfig/cron/v3: job scheduling.
 * - internal/store: timeline reads.
 */

package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mchkit/disbursement-service/internal/domain"
	"github.com/mchkit/disbursement-service/internal/store"
)

// Scheduler runs the periodic due-stage reminder scan.
type Scheduler struct {
	cron *cron.Cron
	repo store.Repository
	spec string
}

// New creates a scheduler with the given cron spec (e.g. "@hourly").
func New(repo store.Repository, spec string) *Scheduler {
	return &Scheduler{cron: cron.New(), repo: repo, spec: spec}
}

// Start registers and launches the reminder job. The job also runs once
// immediately so a fresh demo shows reminder activity without waiting a cycle.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.scanDueStages); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("level=info component=scheduler msg=\"reminder job scheduled\" spec=%q", s.spec)
	go s.scanDueStages()
	return nil
}

// Stop halts the cron runner and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Printf("level=info component=scheduler msg=\"reminder job stopped\"")
}

// templateForStage maps a due stage to the nudge template family an operator
// would reach for.
func templateForStage(stage domain.StageName) string {
	switch stage {
	case domain.StageImmunisation1, domain.StageImmunisation2:
		return "immunization"
	default:
		return "hospital-visit"
	}
}

func (s *Scheduler) scanDueStages() {
	beneficiaries, err := s.repo.ListBeneficiaries(context.Background(), store.BeneficiaryListOptions{})
	if err != nil {
		log.Printf("level=error component=scheduler msg=\"due-stage scan failed\" err=%v", err)
		return
	}

	reminders := 0
	for i := range beneficiaries {
		b := &beneficiaries[i]
		for _, stage := range b.Timeline {
			if stage.Status != domain.StageDue {
				continue
			}
			reminders++
			log.Printf("level=info component=scheduler msg=\"benefit stage due\" beneficiary_id=%s stage=%q amount=%d template=%s", b.ID, stage.Stage, stage.Amount, templateForStage(stage.Stage))
			break
		}
	}
	log.Printf("level=info component=scheduler msg=\"due-stage scan complete\" beneficiaries=%d reminders=%d", len(beneficiaries), reminders)
}
