package cmd

import (
	"fmt"
	"os"

	"github.com/fairflowapp/fairflow/internal/badge"
	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
	"github.com/spf13/viper"
)

// presenter is the console implementation of the engine's renderer and
// badge-updater collaborators. Output is verbose-gated so mutating
// commands stay quiet by default.
type presenter struct {
	data    *store.Data
	counter *badge.Counter
}

func newPresenter(data *store.Data) *presenter {
	return &presenter{data: data, counter: badge.NewCounter(data)}
}

// RenderTab prints the tab's roster table in verbose mode.
func (p *presenter) RenderTab(tab models.Tab) {
	if !viper.GetBool("verbose") {
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n", ui.StyleTitle.Render(tab.Label()))
	fmt.Fprint(os.Stderr, ui.TaskTable(p.data.ReadList(tab, store.BucketActive)))
}

// UpdateBadges recomputes and prints the badge line in verbose mode.
func (p *presenter) UpdateBadges() {
	if !viper.GetBool("verbose") {
		return
	}
	fmt.Fprintln(os.Stderr, ui.BadgeLine(p.counter.Counts()))
}
