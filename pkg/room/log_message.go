package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const logMessageLimit = 25

// LogMessage is a line in the table log sent to clients
// Seats lists the seats the line is about; an empty list means the line
// is about the game itself.
type LogMessage struct {
	UUID    string    `json:"uuid"`
	Seats   []int     `json:"seats"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// newLogMessage returns a log message about the given seats
func newLogMessage(seats []int, format string, a ...interface{}) *LogMessage {
	return &LogMessage{
		UUID:    uuid.New().String(),
		Seats:   seats,
		Message: fmt.Sprintf(format, a...),
		Time:    time.Now(),
	}
}

// addLogMessage appends a log message, trims the log to the most recent
// entries, and broadcasts the log to connected clients
// Note: this must only be called from within the run loop
func (s *Session) addLogMessage(message *LogMessage) {
	m := append(s.logMessages, message)
	count := len(m)
	if count > logMessageLimit {
		m = m[count-logMessageLimit:]
	}

	s.logMessages = m
	s.sendLogs()
}
