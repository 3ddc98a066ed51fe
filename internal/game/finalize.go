package game

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

// finalize settles a finished or aborted game: standings and ratings, pack
// history for everyone who saw questions, chat teardown, and removal of the
// per-game store state. Runs after the loop goroutine has exited, so it owns
// the session state exclusively.
func (s *Session) finalize(ctx context.Context, aborted bool) error {
	scores, err := s.store.Scores(ctx, s.chatID)
	if err != nil {
		return fmt.Errorf("read final scores: %w", err)
	}

	standings := s.buildStandings(scores)

	if !aborted && len(standings) >= 2 {
		if err := s.applyRatings(ctx, standings, scores); err != nil {
			s.log.Error("apply ratings failed", zap.Error(err))
		}
	}

	for _, p := range s.players {
		if err := s.store.TrackPlayerChat(ctx, p, s.originChatID); err != nil {
			s.log.Warn("track player chat failed", zap.Error(err))
		}
	}

	s.announceStandings(ctx, standings, aborted)
	s.recordPackHistory(ctx, aborted)

	if s.inviteLink != "" {
		if err := s.chat.RevokeInviteLink(ctx, s.chatID, s.inviteLink); err != nil {
			s.log.Warn("revoke invite failed", zap.Error(err))
		}
	}

	cooldown := s.cfg.TeardownCooldown
	if aborted {
		cooldown = s.cfg.AbortCooldown
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cooldown):
	}

	s.evictParticipants(ctx)

	if aborted {
		if err := s.store.SetGameStatus(ctx, s.chatID, domain.StatusAborted); err != nil {
			s.log.Warn("set status aborted failed", zap.Error(err))
		}
	}
	if err := s.store.ReleaseGameChat(ctx, s.chatID); err != nil {
		s.log.Warn("release game chat failed", zap.Error(err))
	}
	if err := s.store.DeleteGame(ctx, s.chatID); err != nil {
		return fmt.Errorf("delete game state: %w", err)
	}
	return nil
}

// buildStandings orders the roster by score, earned points breaking ties,
// and marks the top half (at least one) as winners.
func (s *Session) buildStandings(scores map[uuid.UUID]int) []domain.Standing {
	standings := make([]domain.Standing, 0, len(s.players))
	for _, p := range s.players {
		standings = append(standings, domain.Standing{
			PlayerID: p,
			Score:    scores[p],
			Earned:   s.earned[p],
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].Earned > standings[j].Earned
	})

	winners := len(standings) / 2
	if winners < 1 {
		winners = 1
	}
	for i := 0; i < winners && i < len(standings); i++ {
		standings[i].Winner = true
	}
	return standings
}

// applyRatings computes pairwise rating deltas and writes each player's game
// result in one store call.
func (s *Session) applyRatings(ctx context.Context, standings []domain.Standing, scores map[uuid.UUID]int) error {
	ratings := make(map[uuid.UUID]int, len(s.players))
	for _, p := range s.players {
		stats, err := s.store.PlayerStats(ctx, p)
		if err != nil {
			return fmt.Errorf("player stats %s: %w", p, err)
		}
		if stats.Rating == 0 {
			stats.Rating = domain.DefaultRating
		}
		ratings[p] = stats.Rating
	}

	deltas := RatingDeltas(ratings, scores)

	for i := range standings {
		p := standings[i].PlayerID
		standings[i].RatingDelta = deltas[p]
		standings[i].NewRating = ratings[p] + deltas[p]
		result := domain.GameResult{
			Score:       standings[i].Score,
			Winner:      standings[i].Winner,
			Correct:     s.correct[p],
			Wrong:       s.wrong[p],
			RatingDelta: deltas[p],
		}
		if err := s.store.ApplyGameResult(ctx, p, result); err != nil {
			return fmt.Errorf("apply game result %s: %w", p, err)
		}
	}
	return nil
}

func (s *Session) announceStandings(ctx context.Context, standings []domain.Standing, aborted bool) {
	lines := make([]string, 0, len(standings))
	for i, st := range standings {
		line := fmt.Sprintf("%d. %s: %d", i+1, playerLabel(st.PlayerID), st.Score)
		if st.Winner && !aborted {
			line += " (winner)"
		}
		if st.RatingDelta != 0 {
			line += fmt.Sprintf("  rating %+d -> %d", st.RatingDelta, st.NewRating)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}
	text := msgFinalStandings(lines)
	s.send(ctx, text)
	if s.originChatID != 0 && s.originChatID != s.chatID {
		if _, err := s.chat.SendMessage(ctx, s.originChatID, text); err != nil {
			s.log.Warn("send standings to origin failed", zap.Error(err))
		}
	}
}

// recordPackHistory credits every participant, spectators included, with the
// theme range they actually sat through, so matchmaking can avoid replays.
func (s *Session) recordPackHistory(ctx context.Context, aborted bool) {
	end := len(s.themeOrder)
	if aborted {
		end = s.cursor.Theme + 1
		if end > len(s.themeOrder) {
			end = len(s.themeOrder)
		}
	}

	credit := func(id uuid.UUID) {
		start := s.joinTheme[id]
		if start >= end {
			return
		}
		themes := s.themeOrder[start:end]
		if err := s.store.AppendPackHistory(ctx, id, s.pack.ID, themes); err != nil {
			s.log.Warn("append pack history failed",
				zap.String("player", id.String()), zap.Error(err))
		}
	}

	for _, p := range s.players {
		credit(p)
	}
	for sp := range s.spectators {
		credit(sp)
	}
}

// evictParticipants clears the game chat: regulars are banned and
// immediately unbanned so they can be re-invited later, kicked players only
// get their ban lifted now.
func (s *Session) evictParticipants(ctx context.Context) {
	lift := func(id uuid.UUID) {
		if err := s.chat.UnbanMember(ctx, s.chatID, id); err != nil {
			s.log.Warn("unban failed", zap.String("player", id.String()), zap.Error(err))
		}
	}
	evict := func(id uuid.UUID) {
		if err := s.chat.BanMember(ctx, s.chatID, id); err != nil {
			s.log.Warn("evict failed", zap.String("player", id.String()), zap.Error(err))
		}
		lift(id)
	}

	for _, p := range s.players {
		if _, ok := s.kicked[p]; ok {
			lift(p)
			continue
		}
		evict(p)
	}
	for sp := range s.spectators {
		evict(sp)
	}
}
