// Package state keeps per-chat conversation sessions for Telegram bots.
//
// A Store serializes each session value to bytes and hands it to a Backend
// (in memory or SQL). Store.Update runs read-modify-write under a per-chat
// lock, so two updates for the same chat never interleave while different
// chats proceed in parallel. The package knows nothing about the shape of
// the session value beyond its current State.
package state
