package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairflowapp/fairflow/internal/auth"
	"github.com/fairflowapp/fairflow/internal/badge"
	"github.com/fairflowapp/fairflow/internal/history"
	"github.com/fairflowapp/fairflow/internal/lifecycle"
	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
	"github.com/fairflowapp/fairflow/types"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// ErrNoTasksFound is returned when an interactive selection is attempted but no tasks are available.
	ErrNoTasksFound = errors.New("no tasks found matching your criteria")
	// version is the application version.
	version = "0.4.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fairflow",
	Short: "Fair Flow manages recurring opening, closing, weekly, monthly and yearly checklists.",
	Long: `Fair Flow is the task/checklist tool for a small business: staff claim
tasks from per-tab lists, mark them done behind a shared PIN, and the
scheduler resets or rolls each list over once per day.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.fairflow.yaml or ./.fairflow.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetDataFilePath returns the full path to the key-value store file.
func GetDataFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Data.File)
}

// GetArchivePath returns the directory of the SQLite history archive.
func GetArchivePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Project.ArchiveDir)
}

// GetStore initializes and returns the key-value store.
func GetStore() (store.KVStore, error) {
	s := store.NewFileKVStore()
	config := GetConfig()

	dataFilePath := GetDataFilePath()

	err := s.Initialize(map[string]string{
		"dataFile":       dataFilePath,
		"dataFileFormat": config.Data.Format,
	})
	if err != nil {
		return nil, types.NewFlowError("STORE_INIT_FAILED",
			fmt.Sprintf("failed to initialize store: %v", err),
			map[string]interface{}{"path": dataFilePath, "format": config.Data.Format})
	}
	return s, nil
}

// GetData returns the typed data layer over a freshly opened store.
func GetData() (*store.Data, store.KVStore, error) {
	kv, err := GetStore()
	if err != nil {
		return nil, nil, err
	}
	return store.NewData(kv), kv, nil
}

// NewEngine wires the lifecycle engine with the console presenter and the
// history log.
func NewEngine(data *store.Data) *lifecycle.Engine {
	presenter := newPresenter(data)
	return lifecycle.NewEngine(data, lifecycle.Collaborators{
		Renderer: presenter,
		Badges:   presenter,
		History:  history.NewLog(data.KV()),
	})
}

// NewCounter returns a badge counter over the data layer.
func NewCounter(data *store.Data) *badge.Counter {
	return badge.NewCounter(data)
}

// resolveTab picks the target tab: flag value first, then the configured
// current tab, then the opening default.
func resolveTab(flagValue string) (models.Tab, error) {
	if flagValue != "" {
		return models.ParseTab(flagValue)
	}
	if current := GetConfig().Project.CurrentTab; current != "" {
		return models.ParseTab(current)
	}
	return models.TabOpening, nil
}

// resolveActor determines who is acting: an explicit --actor name, or the
// identity behind --pin. With neither, the PIN is prompted without echo.
func resolveActor(actorFlag, pinFlag string, data *store.Data) (string, error) {
	if name := strings.TrimSpace(actorFlag); name != "" {
		return name, nil
	}
	pin := strings.TrimSpace(pinFlag)
	if pin == "" {
		entered, err := promptPin("Enter PIN")
		if err != nil {
			return "", err
		}
		pin = entered
	}
	identity, err := auth.NewValidator(data).ValidatePin(pin)
	if err != nil {
		return "", err
	}
	return identity.Name, nil
}

// pickItem is one row in the interactive task picker.
type pickItem struct {
	ID     string
	Title  string
	Tab    models.Tab
	Status string
}

// selectTaskInteractive presents a prompt to pick a task across all tabs.
// filterFn limits the candidates; nil keeps everything.
func selectTaskInteractive(data *store.Data, filterFn func(pickItem) bool, label string) (pickItem, error) {
	var items []pickItem
	catalog := data.ReadCatalog()
	for _, tab := range models.AllTabs() {
		seen := map[string]bool{}
		for _, t := range data.ReadList(tab, store.BucketActive) {
			seen[t.KeyID()] = true
			items = append(items, pickItem{ID: t.KeyID(), Title: t.Title, Tab: tab, Status: string(t.Status)})
		}
		for _, entry := range catalog[tab] {
			if seen[entry.KeyID()] || !entry.IsInitial() {
				continue
			}
			items = append(items, pickItem{ID: entry.KeyID(), Title: entry.Title, Tab: tab, Status: "catalog"})
		}
	}

	if filterFn != nil {
		filtered := items[:0]
		for _, it := range items {
			if filterFn(it) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	if len(items) == 0 {
		return pickItem{}, ErrNoTasksFound
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Title | cyan }} ({{ .Tab }}, ID: {{ .ID }})`,
		Inactive: `  {{ .Title | faint }} ({{ .Tab }}, ID: {{ .ID }})`,
		Selected: `{{ "✔" | green }} {{ .Title | faint }} (ID: {{ .ID }})`,
	}

	searcher := func(input string, index int) bool {
		item := items[index]
		name := strings.ToLower(item.Title)
		input = strings.ToLower(input)
		return strings.Contains(name, input) || strings.Contains(item.ID, input)
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return pickItem{}, err // includes promptui.ErrInterrupt
	}

	return items[i], nil
}
