// Package tgui holds small helpers for building Telegram HTML messages.
package tgui
