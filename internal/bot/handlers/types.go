// Package handlers holds the bot's command, flow-step and callback
// handlers. Each constructor closes over its dependencies and returns a
// plain Handler so the router stays free of business logic.
package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes one incoming update, either a command or a flow reply.
type Handler func(c telebot.Context) error

// Middleware wraps a Handler with cross-cutting behavior. The router applies
// the chain outermost-first.
type Middleware func(Handler) Handler
