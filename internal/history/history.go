/*
Package history provides functionality to manage bounded conversation history per chat
session, persisted as JSON so sessions survive a restart.
*/
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanehull/stockchat/internal/types"
)

const (
	historyFileName = "conversation_history.json"
	historyDirName  = "stockchat"

	DefaultMaxTurns = 10
	DefaultSession  = "default"
)

type History struct {
	UpdatedAt string                  `json:"updated_at"`
	Sessions  map[string][]types.Turn `json:"sessions"`
}

// Manager owns every session's turns. Each session keeps at most maxTurns, oldest
// dropped first.
type Manager struct {
	history         History
	mutex           sync.Mutex
	historyFilePath string
	maxTurns        int
	log             zerolog.Logger
}

// NewManager loads history from dir, or from a stockchat directory under the system
// temp dir when dir is empty.
func NewManager(dir string, maxTurns int, log zerolog.Logger) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), historyDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	m := &Manager{
		historyFilePath: filepath.Join(dir, historyFileName),
		maxTurns:        maxTurns,
		log:             log,
	}

	m.loadHistory()
	return m, nil
}

func (m *Manager) loadHistory() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.history = History{Sessions: make(map[string][]types.Turn)}

	data, err := os.ReadFile(m.historyFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Info().Str("path", m.historyFilePath).Msg("History file not found. Starting fresh.")
			return
		}
		m.log.Error().Err(err).Str("path", m.historyFilePath).Msg("Error reading history file. Starting fresh.")
		return
	}

	var loaded History
	if err := json.Unmarshal(data, &loaded); err != nil {
		m.log.Error().Err(err).Msg("Error unmarshalling history JSON. Starting fresh.")
		return
	}
	if loaded.Sessions == nil {
		loaded.Sessions = make(map[string][]types.Turn)
	}
	for id, turns := range loaded.Sessions {
		loaded.Sessions[id] = m.trim(turns)
	}

	m.history = loaded
	m.log.Info().Int("sessions", len(m.history.Sessions)).Msg("Loaded conversation history")
}

// saveHistory must be called with the mutex held.
func (m *Manager) saveHistory() {
	m.history.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		m.log.Error().Err(err).Msg("Error marshalling history for save")
		return
	}

	if err := os.WriteFile(m.historyFilePath, data, 0o644); err != nil {
		m.log.Error().Err(err).Str("path", m.historyFilePath).Msg("Error writing history file")
	}
}

func (m *Manager) trim(turns []types.Turn) []types.Turn {
	if len(turns) > m.maxTurns {
		return append([]types.Turn(nil), turns[len(turns)-m.maxTurns:]...)
	}
	return turns
}

func sessionKey(session string) string {
	if session == "" {
		return DefaultSession
	}
	return session
}

// Append records one exchange for session.
func (m *Manager) Append(session string, turn types.Turn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := sessionKey(session)
	m.history.Sessions[key] = m.trim(append(m.history.Sessions[key], turn))
	m.saveHistory()
}

// Turns returns a copy of all retained turns for session, oldest first.
func (m *Manager) Turns(session string) []types.Turn {
	return m.Recent(session, 0)
}

// Recent returns up to n of the latest turns, oldest first. n <= 0 returns all of them.
func (m *Manager) Recent(session string, n int) []types.Turn {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	turns := m.history.Sessions[sessionKey(session)]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return append([]types.Turn{}, turns...)
}

// Last returns the most recent turn for session.
func (m *Manager) Last(session string) (types.Turn, bool) {
	recent := m.Recent(session, 1)
	if len(recent) == 0 {
		return types.Turn{}, false
	}
	return recent[0], true
}

// Clear forgets session.
func (m *Manager) Clear(session string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.history.Sessions, sessionKey(session))
	m.saveHistory()
	m.log.Info().Str("session", sessionKey(session)).Msg("Conversation history cleared")
}

func (m *Manager) HistoryFilePath() string {
	return m.historyFilePath
}
