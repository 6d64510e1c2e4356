package cmd

import (
	"github.com/chris-regnier/focusflow/internal/shell"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// invalidateCachePostRun drops the prompt cache after a command that changed
// tasks, sessions, settings or events. A failure is logged, never returned.
func invalidateCachePostRun(cmd *cobra.Command, _ []string) error {
	if appConfig == nil || appConfig.DataDir == "" {
		return nil
	}
	if err := shell.InvalidateCache(appConfig.DataDir); err != nil && logger != nil {
		logger.Warn("prompt cache invalidation failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
	}
	return nil
}
