package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session exists for a chat.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionClosed is returned when a command reaches a session whose loop already exited.
	ErrSessionClosed = errors.New("game session closed")
	// ErrGameNotFound indicates no game record is registered for the chat.
	ErrGameNotFound = errors.New("game not found")
	// ErrPackNotFound indicates the question pack could not be loaded.
	ErrPackNotFound = errors.New("pack not found")

	// ErrWrongPhase rejects an operation that is invalid in the current game phase.
	ErrWrongPhase = errors.New("not allowed in current game phase")
	// ErrFloorTaken rejects a floor claim while another player is answering.
	ErrFloorTaken = errors.New("another player is answering")
	// ErrNotFloorHolder rejects a submission from anyone but the floor holder.
	ErrNotFloorHolder = errors.New("player does not hold the floor")
	// ErrAlreadyAnswered rejects a second floor claim from the same player this question.
	ErrAlreadyAnswered = errors.New("player already answered this question")
	// ErrSpectator rejects floor claims from spectators and kicked players.
	ErrSpectator = errors.New("spectators cannot answer")
	// ErrNotPlayer rejects commands from users outside the roster.
	ErrNotPlayer = errors.New("not a player of this game")
	// ErrQuestionClaimed rejects submissions after an answer was accepted.
	ErrQuestionClaimed = errors.New("question already claimed")

	// ErrVoteActive rejects opening a vote while one of the same kind is running.
	ErrVoteActive = errors.New("a vote is already in progress")
	// ErrAlreadyDisputed rejects re-disputing the same player within one question.
	ErrAlreadyDisputed = errors.New("player was already disputed this question")
	// ErrNoOutcome rejects corrections for players without an outcome this question.
	ErrNoOutcome = errors.New("player has no recorded answer this question")
	// ErrAlreadyMarked rejects a correction that would not change the outcome.
	ErrAlreadyMarked = errors.New("outcome already set")

	// ErrAlreadyPaused rejects pausing a paused session.
	ErrAlreadyPaused = errors.New("game is already paused")
	// ErrNotPaused rejects resuming a session that is not paused.
	ErrNotPaused = errors.New("game is not paused")
	// ErrPauseBudget rejects a pause from a player with no pauses left.
	ErrPauseBudget = errors.New("no pauses left")

	// ErrDuplicatePlayer rejects adding a player or spectator twice.
	ErrDuplicatePlayer = errors.New("player already in session")
)
