package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	Tasks   TasksConfig   `mapstructure:"tasks"`
}

// ProjectConfig holds project-related settings
type ProjectConfig struct {
	RootDir    string `mapstructure:"rootDir" validate:"required"`
	ArchiveDir string `mapstructure:"archiveDir" validate:"required"`
	CurrentTab string `mapstructure:"currentTab" validate:"omitempty,oneof=opening closing weekly monthly yearly"`
}

// DataConfig holds data storage configuration
type DataConfig struct {
	File   string `mapstructure:"file" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
}

// TasksConfig holds lifecycle behavior settings.
type TasksConfig struct {
	// AutoResetIntervalSeconds controls the scheduler cadence in daemon
	// mode. The default mirrors the original 30-second page timer.
	AutoResetIntervalSeconds int `mapstructure:"autoResetIntervalSeconds" validate:"omitempty,min=1,max=3600"`
}
