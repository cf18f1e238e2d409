package config

const (
	defaultResultsDir     = "~/.local/share/azus/results"
	defaultAuditDir       = "~/.local/share/azus/audit"
	defaultLogDir         = "~/.local/share/azus/logs"
	defaultTrackerFile    = "~/.local/share/azus/uploaded_files.txt"
	defaultLockFile       = "~/.local/share/azus/azus.lock"
	defaultSuccessResults = "successful_results.csv"
	defaultFailureResults = "failed_results.csv"
	defaultRequestTimeout = 60
	defaultResourceType   = "dataset"
	defaultPublisher      = "Zenodo"
	defaultLicense        = "cc-by-4.0"
	defaultLanguage       = "eng"
	defaultAccess         = "public"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// defaultUploadFiles is the advisory file list used when a dataset directory
// carries no upload manifest. Missing entries are logged, not fatal.
var defaultUploadFiles = []string{
	"README.html",
	"README.md",
	"CONFIG.TXT",
	"CONFIG_data_dict.csv",
	"WAV_data_dict.csv",
	"file_list.csv",
	"file_list_data_dict.csv",
	"License.txt",
	"AudioMoth_Operation_Manual.pdf",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ResultsDir:  defaultResultsDir,
			AuditDir:    defaultAuditDir,
			LogDir:      defaultLogDir,
			TrackerFile: defaultTrackerFile,
			LockFile:    defaultLockFile,
		},
		Uploads: Uploads{
			SuccessResultsFile: defaultSuccessResults,
			FailureResultsFile: defaultFailureResults,
			DefaultFiles:       append([]string(nil), defaultUploadFiles...),
		},
		API: API{
			RequestTimeout: defaultRequestTimeout,
		},
		Identity: Identity{
			ResourceType: defaultResourceType,
			Publisher:    defaultPublisher,
			License:      defaultLicense,
			Language:     defaultLanguage,
			AccessRecord: defaultAccess,
			AccessFiles:  defaultAccess,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
