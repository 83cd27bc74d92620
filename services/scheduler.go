// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartCycleScheduler runs the periodic jobs of the weekly cycle: the window
// rollover and the leaderboard recomputes. Rollover is idempotent, so running
// it hourly just catches the Monday boundary promptly.
func (s *TournamentService) StartCycleScheduler(leaderboards *LeaderboardService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every hour: seal ended weeks and open the new window
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if err := s.Rollover(time.Now().UTC()); err != nil {
				log.Printf("[Scheduler] rollover failed: %v", err)
			}
		}),
	)

	// Every 10 minutes: refresh weekly and monthly boards
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			now := time.Now().UTC()
			if err := leaderboards.RecomputeWeekly(now); err != nil {
				log.Printf("[Scheduler] weekly leaderboard failed: %v", err)
			}
			if err := leaderboards.RecomputeMonthly(now); err != nil {
				log.Printf("[Scheduler] monthly leaderboard failed: %v", err)
			}
		}),
	)
}
