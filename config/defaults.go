package config

import "time"

const (
	DefaultBackendURL      = "http://localhost:8000"
	DefaultDevServerAddr   = "127.0.0.1:8000"
	DefaultHistoryDebounce = 150 * time.Millisecond
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/pdfchat",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Backend: BackendConfig{
			URL:               DefaultBackendURL,
			HistoryDebounceMS: int(DefaultHistoryDebounce / time.Millisecond),
		},
		DevServer: DevServerConfig{
			Addr:     DefaultDevServerAddr,
			Provider: "echo",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# pdfchat System Configuration
# Location: ~/.config/pdfchat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the identity file, user config and debug log are stored
data_directory = "~/.local/share/pdfchat"
`
}

func GenerateUserConfigTemplate() string {
	return `# pdfchat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[backend]
# Base URL of the PDF question-answering service
url = "http://localhost:8000"

# Delay before a selected conversation's history is fetched
history_debounce_ms = 150

[chat]
# Create a conversation named after the first question when none is selected
auto_create = true

# Wait for the whole reply instead of streaming it
blocking_replies = false

# Keep the text received before a failed reply instead of replacing it
preserve_partial = false

[identity]
# Sent as X-User-Id with every request. Leave empty to use the generated
# id stored in <data_directory>/identity.id
user_id = ""

[devserver]
# Listen address of pdfchat-devserver
addr = "127.0.0.1:8000"

# Answer provider: "echo", "ollama", "openai" or "anthropic"
provider = "echo"
model = ""
base_url = ""
api_key = ""
`
}
