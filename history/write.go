package history

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/ocm"
)

// Record implements ocm.Recorder: it inserts one completed invocation,
// successful or failed, under a fresh id.
func (s *Store) Record(ctx context.Context, inv ocm.Invocation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations
		(id, schema_name, rendered, exit_code, stdout, stderr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		s.ids.Generate(),
		inv.Schema,
		inv.Rendered,
		inv.ExitCode,
		inv.Stdout,
		inv.Stderr,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record invocation: %w", err)
	}

	return nil
}
