package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nlpodyssey/openai-agents-go/memory"
)

// TranscriptDB is the SQLite file holding agent conversations of all runs.
const TranscriptDB = "transcripts.db"

// TranscriptEntry is one message of a task conversation.
type TranscriptEntry struct {
	Role string
	Text string
}

// TranscriptPath returns the transcript database path for this store.
func (s *Store) TranscriptPath() string {
	return filepath.Join(s.baseDir, TranscriptDB)
}

// OpenSession opens the SQLite-backed conversation session sessionID.
// The caller closes the returned session.
func (s *Store) OpenSession(ctx context.Context, sessionID string) (*memory.SQLiteSession, error) {
	if err := os.MkdirAll(s.baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	session, err := memory.NewSQLiteSession(ctx, memory.SQLiteSessionParams{
		SessionID:        sessionID,
		DBDataSourceName: "file:" + s.TranscriptPath(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	return session, nil
}

// Transcript returns the conversation recorded for one task of a kickoff.
// Tool calls and other non-message items are skipped.
func (s *Store) Transcript(ctx context.Context, kickoffID, task string) ([]TranscriptEntry, error) {
	if _, err := os.Stat(s.TranscriptPath()); os.IsNotExist(err) {
		return nil, nil
	}

	session, err := s.OpenSession(ctx, kickoffID+"/"+task)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	items, err := session.GetItems(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var entries []TranscriptEntry
	for _, item := range items {
		switch {
		case item.OfMessage != nil:
			entries = append(entries, TranscriptEntry{
				Role: string(item.OfMessage.Role),
				Text: item.OfMessage.Content.OfString.Or(""),
			})
		case item.OfOutputMessage != nil:
			var sb strings.Builder
			for _, part := range item.OfOutputMessage.Content {
				if part.OfOutputText != nil {
					sb.WriteString(part.OfOutputText.Text)
				}
			}
			entries = append(entries, TranscriptEntry{Role: "assistant", Text: sb.String()})
		}
	}
	return entries, nil
}
