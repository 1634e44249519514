package game

import "errors"

var (
	ErrGameNotStarted      = errors.New("game not started")
	ErrGameFinished        = errors.New("game already finished")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrHandNotFound        = errors.New("player hand not found")
	ErrCardsNotInHand      = errors.New("cards not in hand")
	ErrMustLeadThreeSpades = errors.New("first play must include 3 of spades")
	ErrNotEnoughPlayers    = errors.New("not enough players to start")
)
