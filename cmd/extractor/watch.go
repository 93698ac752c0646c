package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/watch"
	"github.com/FACorreiaa/statement-extractor/pkg/cron"
	"github.com/FACorreiaa/statement-extractor/pkg/storage"
)

const scanJob = "inbox-scan"

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process statements dropped into an inbox directory",
		Long: `Scan the inbox on a schedule and process every PDF not seen before. Each scan
that finds new documents stores one export under the export directory. Documents
are recognized by content, so a renamed copy is not processed again.

Examples:
  extractor watch
  extractor watch --inbox ~/statements --schedule "@every 1m"
  extractor watch --once`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().String("inbox", "", "directory to scan (default from WATCH_INBOX_DIR)")
	cmd.Flags().String("schedule", "", "cron schedule (default from WATCH_SCHEDULE)")
	cmd.Flags().String("format", "", "export format (csv, xlsx)")
	cmd.Flags().Bool("once", false, "scan once and exit")
	cmd.Flags().Duration("timeout", 30*time.Minute, "maximum duration of one scan")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	inbox := cfg.Watch.InboxDir
	if v, _ := cmd.Flags().GetString("inbox"); v != "" {
		inbox = v
	}
	schedule := cfg.Watch.Schedule
	if v, _ := cmd.Flags().GetString("schedule"); v != "" {
		schedule = v
	}
	flag, _ := cmd.Flags().GetString("format")
	format, err := exportFormat(flag, "", cfg.Export.Format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(inbox, 0o755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}
	store, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	watcher := watch.New(deps.Processor, store, inbox, deps.Logger).WithFormat(format)
	scan := func(ctx context.Context) error {
		res, err := watcher.Scan(ctx)
		if err != nil {
			return err
		}
		if res.Export != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d new documents (%d failed), export %s\n",
				time.Now().Format(time.DateTime), res.Processed, res.Failed, res.Export.Path)
		}
		return nil
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	scheduler := cron.NewScheduler(timeout, deps.Logger)
	if err := scheduler.Add(scanJob, schedule, scan); err != nil {
		return err
	}

	if err := scheduler.RunNow(ctx, scanJob); err != nil {
		return err
	}
	if once, _ := cmd.Flags().GetBool("once"); once {
		return nil
	}

	scheduler.Start()
	if next, ok := scheduler.Next(scanJob); ok {
		deps.Logger.Info("watching inbox", "inbox", inbox, "schedule", schedule, "next", next)
	}

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}
