// Package exitcode provides standardized exit codes for fcman
package exitcode

// Exit codes for the fcman CLI. Drift findings and failed structural
// operations exit GeneralError; configuration and manifest problems get
// their own codes so wrappers can tell them apart.
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	DataError       = 3
	FileSystemError = 4
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case DataError:
		return "Manifest or rule data error"
	case FileSystemError:
		return "File system error"
	default:
		return "Unknown error"
	}
}
