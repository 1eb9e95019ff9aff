package main

import (
	"context"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/badmusic/internal/tasks"
)

// Export writes the selected collections and prints progress as it goes.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range prog {
			_ = r.writePlain("%s\n", u.Message)
		}
	}()

	result, err := tasks.NewExporter(r.library, r.logger).Run(ctx, prog, tasks.ExportOpts{
		Format:      cmd.String("format"),
		OutputDir:   cmd.String("dir"),
		NumWorkers:  cmd.Int("workers"),
		Collections: cmd.StringSlice("only"),
	})
	close(prog)
	wg.Wait()
	if err != nil {
		return err
	}

	r.logger.Info("export finished", "ok", result.Successful, "failed", result.Failed, "dir", result.OutputDirectory)
	return r.writePlainln("✓ Exported %d of %d collections to %s", result.Successful, result.Total, result.OutputDirectory)
}
