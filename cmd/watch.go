package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/fairflowapp/fairflow/store"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the store and reprint badge counts on every change",
	Long: `Follows the data file and reprints the per-tab badge line whenever
another process changes it. Useful on a shared terminal next to the till.`,
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		counter := NewCounter(data)
		fmt.Println(ui.BadgeLine(counter.Counts()))

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			HandleFatalError("Error: Could not start the file watcher.", err)
		}
		defer func() { _ = watcher.Close() }()

		// Watch the directory, not the file: the store saves via a temp
		// file rename, which replaces the watched inode.
		dataFile := GetDataFilePath()
		if fileStore, ok := kv.(*store.FileKVStore); ok {
			dataFile = fileStore.FilePath()
		}
		if err := watcher.Add(filepath.Dir(dataFile)); err != nil {
			HandleFatalError(fmt.Sprintf("Error: Could not watch %s.", filepath.Dir(dataFile)), err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("Watching for changes. Press Ctrl+C to stop.")

		// Renames and writes arrive in bursts; debounce before recomputing.
		var debounce *time.Timer
		recompute := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				fmt.Println("Watch stopped.")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(dataFile) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					select {
					case recompute <- struct{}{}:
					default:
					}
				})
			case <-recompute:
				fmt.Println(ui.BadgeLine(counter.Counts()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				LogError("watcher error", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
