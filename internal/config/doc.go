// Package config loads the console configuration.
//
// # Resolution
//
//  1. Defaults
//  2. ~/.config/prms/config.toml (or the path given with --config); a
//     missing file is fine, invalid TOML is an error
//  3. Environment: PRMS_API_URL, PRMS_TIMEOUT, PRMS_LOG_LEVEL, PRMS_TOKEN
//
// LoadEnvFile can populate the environment from a .env file first; variables
// already set in the process win.
//
// # Defaults
//
//   - API URL: http://127.0.0.1:5000/api
//   - Request timeout: 10s
//   - Poll interval: 15s
//   - Log directory: ~/.local/share/prms/logs (log file prms.log)
//   - Log level: info
//
// # File Format
//
//	api_url = "https://prms.example.com/api"
//	timeout = "10s"
//	poll_interval = "15s"
//	log_dir = "~/.local/share/prms/logs"
//	log_level = "info"
package config
