package projects

const (
	configurationBaseDirectoryKeyConstant        = "base_directory"
	configurationStagingDirectoryKeyConstant     = "staging_directory"
	configurationOutputDirectoryKeyConstant      = "output_directory"
	configurationTemplatesDirectoryKeyConstant   = "templates_directory"
	configurationSiteDomainKeyConstant           = "site_domain"
	configurationGitHubOwnerKeyConstant          = "github_owner"
	configurationRepositoryVisibilityKeyConstant = "repository_visibility"
	configurationWorkerCountKeyConstant          = "worker_count"
	configurationWebsiteKeyConstant              = "website"
	configurationTasksKeyConstant                = "tasks"
	configurationPDFKeyConstant                  = "pdf"
	configurationWebsiteRepositoryKeyConstant    = "repository_path"
	configurationWebsitePostsKeyConstant         = "posts_directory"
	configurationWebsitePagesKeyConstant         = "pages_directory"
	configurationWebsiteMediaKeyConstant         = "media_directory"
	configurationTasksEnabledKeyConstant         = "enabled"
	configurationTasksAreaKeyConstant            = "area"
	configurationPDFOperatorKeyConstant          = "operator_name"

	defaultBaseDirectoryConstant        = "~/projects"
	defaultStagingDirectoryConstant     = "~/projects/.staging"
	defaultOutputDirectoryConstant      = "~/projects/.published"
	defaultTemplatesDirectoryConstant   = "~/projects/.templates"
	defaultRepositoryVisibilityConstant = "private"
	defaultWorkerCountConstant          = 4
)

// CommandConfiguration captures the settings shared by every project command.
type CommandConfiguration struct {
	BaseDirectory        string               `mapstructure:"base_directory"`
	StagingDirectory     string               `mapstructure:"staging_directory"`
	OutputDirectory      string               `mapstructure:"output_directory"`
	TemplatesDirectory   string               `mapstructure:"templates_directory"`
	SiteDomain           string               `mapstructure:"site_domain"`
	GitHubOwner          string               `mapstructure:"github_owner"`
	RepositoryVisibility string               `mapstructure:"repository_visibility"`
	WorkerCount          int                  `mapstructure:"worker_count"`
	Website              WebsiteConfiguration `mapstructure:"website"`
	Tasks                TasksConfiguration   `mapstructure:"tasks"`
	PDF                  PDFConfiguration     `mapstructure:"pdf"`
}

// WebsiteConfiguration describes the live site tree the website channel targets.
type WebsiteConfiguration struct {
	RepositoryPath     string            `mapstructure:"repository_path"`
	PostsDirectory     string            `mapstructure:"posts_directory"`
	PagesDirectory     string            `mapstructure:"pages_directory"`
	MediaDirectory     string            `mapstructure:"media_directory"`
	EmptyStateMessages map[string]string `mapstructure:"empty_state_messages"`
}

// TasksConfiguration describes the task list integration toggle and target area.
type TasksConfiguration struct {
	Enabled bool   `mapstructure:"enabled"`
	Area    string `mapstructure:"area"`
}

// PDFConfiguration describes the document channel settings.
type PDFConfiguration struct {
	OutputDirectory string `mapstructure:"output_directory"`
	OperatorName    string `mapstructure:"operator_name"`
}

// DefaultCommandConfiguration returns baseline configuration values for project commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BaseDirectory:        defaultBaseDirectoryConstant,
		StagingDirectory:     defaultStagingDirectoryConstant,
		OutputDirectory:      defaultOutputDirectoryConstant,
		TemplatesDirectory:   defaultTemplatesDirectoryConstant,
		RepositoryVisibility: defaultRepositoryVisibilityConstant,
		WorkerCount:          defaultWorkerCountConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for project commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationBaseDirectoryKeyConstant:        defaults.BaseDirectory,
		rootKey + "." + configurationStagingDirectoryKeyConstant:     defaults.StagingDirectory,
		rootKey + "." + configurationOutputDirectoryKeyConstant:      defaults.OutputDirectory,
		rootKey + "." + configurationTemplatesDirectoryKeyConstant:   defaults.TemplatesDirectory,
		rootKey + "." + configurationRepositoryVisibilityKeyConstant: defaults.RepositoryVisibility,
		rootKey + "." + configurationWorkerCountKeyConstant:          defaults.WorkerCount,
	}
}
