package game

import (
	"context"
	"time"
)

const (
	delayTick  = 500 * time.Millisecond
	signalTick = 100 * time.Millisecond
)

// delay blocks for d of unpaused time. Each tick drains pending mailbox
// commands first, so handler mutations (pause, extension, votes) take effect
// within one tick. A pending timer extension is folded into the remaining
// budget and consumed exactly once; paused ticks do not count down.
func (s *Session) delay(ctx context.Context, d time.Duration) error {
	remaining := d
	for remaining > 0 {
		remaining += s.takeExtension()

		step := delayTick
		if remaining < step {
			step = remaining
		}
		tickStart := time.Now()
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case fn := <-s.commands:
			timer.Stop()
			if s.phase == PhasePaused {
				s.shiftDeadlines(time.Since(tickStart))
			}
			fn()
		case <-timer.C:
			if s.phase != PhasePaused {
				remaining -= step
			} else {
				s.shiftDeadlines(time.Since(tickStart))
			}
		}
		s.checkDeadlines(ctx)
	}
	return nil
}

// waitForAnswer blocks like delay but additionally returns early, reporting
// true, the moment the answer signal fires, and early with false once every
// active player holds an outcome for the open question.
func (s *Session) waitForAnswer(ctx context.Context, d time.Duration) (bool, error) {
	remaining := d
	for remaining > 0 {
		if s.phase != PhasePaused {
			if s.answerFired {
				return true, nil
			}
			if s.allAnswered() {
				return false, nil
			}
		}

		remaining += s.takeExtension()

		step := signalTick
		if remaining < step {
			step = remaining
		}
		tickStart := time.Now()
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case fn := <-s.commands:
			timer.Stop()
			if s.phase == PhasePaused {
				s.shiftDeadlines(time.Since(tickStart))
			}
			fn()
		case <-timer.C:
			if s.phase != PhasePaused {
				remaining -= step
			} else {
				s.shiftDeadlines(time.Since(tickStart))
			}
		}
		s.checkDeadlines(ctx)
	}
	return s.answerFired, nil
}

// shiftDeadlines pushes the wall-clock deadlines forward by d. Called for
// every paused tick so the floor hold and open votes keep their remaining
// window across a pause instead of expiring the moment the game resumes.
func (s *Session) shiftDeadlines(d time.Duration) {
	if !s.floorDeadline.IsZero() {
		s.floorDeadline = s.floorDeadline.Add(d)
	}
	if s.dispute != nil {
		s.dispute.deadline = s.dispute.deadline.Add(d)
	}
	if s.kickVote != nil {
		s.kickVote.deadline = s.kickVote.deadline.Add(d)
	}
}

// checkDeadlines enforces the floor-hold timeout and resolves votes whose
// voting window elapsed. Runs on the loop goroutine between ticks; skipped
// while paused so deadlines freeze with the game.
func (s *Session) checkDeadlines(ctx context.Context) {
	if s.phase == PhasePaused {
		return
	}
	now := time.Now()
	if s.phase == PhasePlayerAnswering && !s.floorDeadline.IsZero() && now.After(s.floorDeadline) {
		s.releaseFloor(ctx, s.answering)
	}
	if s.dispute != nil && now.After(s.dispute.deadline) {
		s.resolveDispute(ctx)
	}
	if s.kickVote != nil && now.After(s.kickVote.deadline) {
		s.resolveKick(ctx)
	}
}
