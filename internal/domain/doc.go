// Package domain holds the shared types of the mail automation engine:
// consent states, webhook payloads, automation settings, scheduled
// campaigns and activity entries. It has no dependencies on other
// internal packages so every layer can import it.
package domain
