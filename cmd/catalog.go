package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fairflowapp/fairflow/internal/ui"
	"github.com/fairflowapp/fairflow/models"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// catalogFs allows tests to swap the filesystem for imports.
var catalogFs = afero.NewOsFs()

// catalogCmd groups the catalog commands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the owner-curated task catalog",
	Long: `The catalog holds the task templates for every tab. Lifecycle
operations (claim, done, reset, rollover) read it but never change it;
only these commands write it.`,
}

var catalogListTab string

// catalogListCmd prints the catalog entries of one or all tabs.
var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Run: func(cmd *cobra.Command, args []string) {
		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		tabs := models.AllTabs()
		if catalogListTab != "" {
			tab, err := models.ParseTab(catalogListTab)
			if err != nil {
				HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
			}
			tabs = []models.Tab{tab}
		}

		catalog := data.ReadCatalog()
		for _, tab := range tabs {
			entries := catalog[tab]
			fmt.Printf("%s (%d entr%s)\n", ui.StyleTitle.Render(tab.Label()), len(entries), plural(len(entries), "y", "ies"))
			if len(entries) == 0 {
				fmt.Println("  (empty)")
				continue
			}
			table := ui.Table{Headers: []string{"ID", "Title", "Schedule"}, MaxWidth: 40}
			for _, e := range entries {
				table.Rows = append(table.Rows, []string{e.KeyID(), e.Title, describeSchedule(tab, e)})
			}
			fmt.Print(table.Render())
		}
	},
}

var (
	catalogAddTab          string
	catalogAddInstructions string
	catalogAddWeekdays     string
	catalogAddDayOfMonth   string
	catalogAddMonth        int
	catalogAddDay          int
)

// catalogAddCmd adds one catalog entry.
var catalogAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a catalog entry to a tab",
	Example: `  # Opening task, no schedule
  fairflow catalog add "Unlock front door" --tab opening

  # Weekly task for Monday and Thursday (0=Sunday)
  fairflow catalog add "Deep clean stations" --tab weekly --weekdays 1,4

  # Monthly task on the 15th
  fairflow catalog add "Order supplies" --tab monthly --day-of-month 15

  # Yearly task active from June 1st
  fairflow catalog add "Renew license" --tab yearly --month 6 --day 1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tab, err := models.ParseTab(catalogAddTab)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		entry := models.CatalogEntry{
			ID:           uuid.NewString(),
			Title:        strings.TrimSpace(args[0]),
			Instructions: catalogAddInstructions,
		}
		if err := applySchedule(&entry, tab); err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}
		if err := models.ValidateStruct(entry); err != nil {
			HandleFatalError("Error: Invalid catalog entry.", err)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		catalog := data.ReadCatalog()
		catalog[tab] = append(catalog[tab], entry)
		if err := data.WriteCatalog(catalog); err != nil {
			HandleFatalError("Error: Failed to save the catalog.", err)
		}

		fmt.Printf("Added '%s' to the %s catalog (ID: %s).\n", entry.Title, tab.Label(), entry.ID)
	},
}

var catalogRemoveTab string

// catalogRemoveCmd removes a catalog entry by id.
var catalogRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a catalog entry",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tab, err := models.ParseTab(catalogRemoveTab)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		catalog := data.ReadCatalog()
		entries := catalog[tab]
		kept := entries[:0]
		removed := false
		for _, e := range entries {
			if e.KeyID() == args[0] {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		if !removed {
			HandleFatalError(fmt.Sprintf("Error: No catalog entry with ID '%s' on the %s list.", args[0], tab.Label()), nil)
		}
		catalog[tab] = kept
		if err := data.WriteCatalog(catalog); err != nil {
			HandleFatalError("Error: Failed to save the catalog.", err)
		}

		fmt.Printf("Removed catalog entry '%s' from the %s list.\n", args[0], tab.Label())
	},
}

// catalogSeed is the YAML shape accepted by catalog import.
type catalogSeed map[string][]models.CatalogEntry

var catalogImportReplace bool

// catalogImportCmd loads catalog entries from a YAML seed file.
var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import catalog entries from a YAML file",
	Long: `The file maps tab names to entry lists:

  opening:
    - id: t1
      title: Unlock front door
  weekly:
    - id: t9
      title: Deep clean stations
      scheduleWeekdays: [1, 4]

Entries missing an id get one generated. By default imported entries are
appended; --replace swaps each named tab's catalog wholesale.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := afero.ReadFile(catalogFs, args[0])
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: Could not read '%s'.", args[0]), err)
		}

		seed, err := parseCatalogSeed(raw)
		if err != nil {
			HandleFatalError(fmt.Sprintf("Error: '%s' is not a valid catalog file.", args[0]), err)
		}

		data, kv, err := GetData()
		if err != nil {
			HandleFatalError("Error: Could not initialize the store.", err)
		}
		defer func() { _ = kv.Close() }()

		catalog := data.ReadCatalog()
		total := 0
		for tabName, entries := range seed {
			tab, err := models.ParseTab(tabName)
			if err != nil {
				HandleFatalError(fmt.Sprintf("Error: %v.", err), err)
			}
			for i := range entries {
				if entries[i].ID == "" && entries[i].TaskID == "" {
					entries[i].ID = uuid.NewString()
				}
				if err := models.ValidateStruct(entries[i]); err != nil {
					HandleFatalError(fmt.Sprintf("Error: Invalid entry in tab '%s'.", tabName), err)
				}
			}
			if catalogImportReplace {
				catalog[tab] = entries
			} else {
				catalog[tab] = append(catalog[tab], entries...)
			}
			total += len(entries)
		}
		if err := data.WriteCatalog(catalog); err != nil {
			HandleFatalError("Error: Failed to save the catalog.", err)
		}

		fmt.Printf("Imported %d catalog entr%s from '%s'.\n", total, plural(total, "y", "ies"), args[0])
	},
}

// parseCatalogSeed decodes the YAML seed by way of JSON so the entries'
// tolerant schedule-field decoding applies to YAML input too.
func parseCatalogSeed(raw []byte) (catalogSeed, error) {
	var generic map[string]interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	bridged, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}
	var seed catalogSeed
	if err := json.Unmarshal(bridged, &seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// applySchedule translates the add-command flags into the entry's schedule
// fields for the target tab. Unset flags leave the rule open.
func applySchedule(entry *models.CatalogEntry, tab models.Tab) error {
	switch tab {
	case models.TabWeekly:
		if catalogAddWeekdays == "" || strings.EqualFold(catalogAddWeekdays, "any") {
			return nil
		}
		var days []int
		for _, part := range strings.Split(catalogAddWeekdays, ",") {
			d, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || d < 0 || d > 6 {
				return fmt.Errorf("weekdays must be 0-6 (0=Sunday), got %q", part)
			}
			days = append(days, d)
		}
		entry.ScheduleWeekdays = &models.Weekdays{Days: days}
	case models.TabMonthly:
		if catalogAddDayOfMonth == "" || strings.EqualFold(catalogAddDayOfMonth, "any") {
			return nil
		}
		d, err := strconv.Atoi(catalogAddDayOfMonth)
		if err != nil || d < 1 || d > 31 {
			return fmt.Errorf("day-of-month must be 1-31 or 'any', got %q", catalogAddDayOfMonth)
		}
		entry.ScheduleDayOfMonth = &models.FlexNumber{Num: d, IsNum: true}
	case models.TabYearly:
		if catalogAddMonth == 0 && catalogAddDay == 0 {
			return nil
		}
		if catalogAddMonth < 1 || catalogAddMonth > 12 || catalogAddDay < 1 || catalogAddDay > 31 {
			return fmt.Errorf("yearly schedule needs --month 1-12 and --day 1-31")
		}
		entry.ScheduleMonth = &models.FlexNumber{Num: catalogAddMonth, IsNum: true}
		entry.ScheduleDay = &models.FlexNumber{Num: catalogAddDay, IsNum: true}
	}
	return nil
}

// describeSchedule renders the schedule rule for display.
func describeSchedule(tab models.Tab, e models.CatalogEntry) string {
	switch tab {
	case models.TabWeekly:
		if e.ScheduleWeekdays == nil || e.ScheduleWeekdays.Any || len(e.ScheduleWeekdays.Days) == 0 {
			return "any day"
		}
		names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
		parts := make([]string, 0, len(e.ScheduleWeekdays.Days))
		for _, d := range e.ScheduleWeekdays.Days {
			if d >= 0 && d < len(names) {
				parts = append(parts, names[d])
			}
		}
		return strings.Join(parts, ",")
	case models.TabMonthly:
		if e.ScheduleDayOfMonth == nil || e.ScheduleDayOfMonth.IsAny() {
			return "any day"
		}
		if d, ok := e.ScheduleDayOfMonth.Int(); ok {
			return fmt.Sprintf("day %d", d)
		}
		return "any day"
	case models.TabYearly:
		m, mok := monthDay(e.ScheduleMonth)
		d, dok := monthDay(e.ScheduleDay)
		if !mok || !dok {
			return "unscheduled"
		}
		return fmt.Sprintf("from %02d-%02d", m, d)
	default:
		return "daily"
	}
}

func monthDay(f *models.FlexNumber) (int, bool) {
	if f == nil {
		return 0, false
	}
	return f.Int()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	catalogListCmd.Flags().StringVarP(&catalogListTab, "tab", "t", "", "limit to one tab")

	catalogAddCmd.Flags().StringVarP(&catalogAddTab, "tab", "t", "", "tab the entry belongs to (required)")
	catalogAddCmd.Flags().StringVarP(&catalogAddInstructions, "instructions", "i", "", "free-text instructions")
	catalogAddCmd.Flags().StringVar(&catalogAddWeekdays, "weekdays", "", "weekly: comma-separated weekdays 0-6, or 'any'")
	catalogAddCmd.Flags().StringVar(&catalogAddDayOfMonth, "day-of-month", "", "monthly: day 1-31, or 'any'")
	catalogAddCmd.Flags().IntVar(&catalogAddMonth, "month", 0, "yearly: start month 1-12")
	catalogAddCmd.Flags().IntVar(&catalogAddDay, "day", 0, "yearly: start day 1-31")
	_ = catalogAddCmd.MarkFlagRequired("tab")

	catalogRemoveCmd.Flags().StringVarP(&catalogRemoveTab, "tab", "t", "", "tab the entry belongs to (required)")
	_ = catalogRemoveCmd.MarkFlagRequired("tab")

	catalogImportCmd.Flags().BoolVar(&catalogImportReplace, "replace", false, "replace each named tab's catalog instead of appending")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}
