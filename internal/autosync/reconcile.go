package autosync

import (
	"context"
	"log/slog"
)

// Reconcile walks the vault and brings the ledger's tracked set up to date:
//   - notes with a gist_id that the ledger does not know are recorded
//   - ledger rows whose file is gone or lost its gist_id are removed
//
// Nothing is published.
func (s *Syncer) Reconcile(ctx context.Context) error {
	metas, err := s.vault.Store().List("")
	if err != nil {
		return err
	}

	checksums, err := s.ledger.AllChecksums(ctx)
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if _, known := checksums[m.Path]; known {
			disk[m.Path] = struct{}{}
			continue
		}
		data, err := s.vault.Store().Read(m.Path)
		if err != nil {
			s.logger.Warn("reconcile: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		id, _, err := trackingInfo(data)
		if err != nil {
			s.logger.Warn("reconcile: bad frontmatter", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if id == "" {
			continue
		}
		if _, err := s.SyncPath(ctx, m.Path); err != nil {
			s.logger.Warn("reconcile: track failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			if data, err := s.vault.Store().Read(p); err == nil {
				if id, _, err := trackingInfo(data); err == nil && id != "" {
					continue
				}
			}
		}
		if err := s.untrack(ctx, p); err != nil {
			s.logger.Warn("reconcile: untrack failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			s.logger.Debug("reconcile: removed stale", slog.String("path", p))
		}
	}

	return nil
}
