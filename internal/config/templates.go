package config

import (
	"fmt"
	"os"
)

// Template returns an annotated starter file with the default values.
func Template() string {
	return clientTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(clientTemplate), 0o600)
}

const clientTemplate = `# rgbclient configuration. Flags given on the command line win.
server = "127.0.0.1"
port = 3500

# Rectangles are "sx,sy-dx,dy" with exclusive end coordinates.
source = "0,0-64,32"
dest = "0,0-64,32"
content = "0,0-64,32"

# -1 retries forever, 0 makes a single attempt.
retry_count = 0
retry_delay_ms = 500
retry_backoff = 1.0
retry_max_delay_ms = 0
reconnect = false
connect_timeout_ms = 5000

show_server_fps = false
max_buffer_bytes = 67108864

# terminal or memory
display = "terminal"
width = 0
height = 0

# host:port for /healthz, /status and /metrics; empty disables it.
metrics_addr = ""
cors_origins = []
`
