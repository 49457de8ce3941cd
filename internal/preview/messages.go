package preview

import "github.com/davka-nysa/davka/internal/models"

// Message types for the Bubble Tea update loop.

// frameMsg wakes the scheduler. Only the latest generation is honored.
type frameMsg struct{ gen int }

// payloadMsg carries one poll result.
type payloadMsg struct {
	payload models.Payload
	err     error
}
