package config

// ServerConfig holds per-server settings for a single backend deployment.
// This allows pinning a session cookie or extra headers for backends that
// sit behind a reverse proxy or require authentication.
type ServerConfig struct {
	// Cookie is an HTTP cookie to send with every request to this server.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this server.
	Headers map[string]string `yaml:"headers,omitempty"`

	// PollIntervalSeconds overrides the global poll interval for this server.
	// If zero, the global PollInterval is used.
	PollIntervalSeconds int `yaml:"pollIntervalSeconds,omitempty"`
}

// File represents the structure of the .trafficlens configuration file.
type File struct {
	// Servers maps backend base URLs (or bare host:port) to their
	// server-specific configurations.
	Servers map[string]ServerConfig `yaml:"servers,omitempty"`

	// Defaults contains settings applied to all servers unless overridden
	// in the server-specific configuration.
	Defaults ServerConfig `yaml:"defaults,omitempty"`
}

// GetServerConfig returns the configuration for a specific backend.
// It merges the server-specific configuration with defaults.
func (cf *File) GetServerConfig(baseURL string) ServerConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with server-specific configuration if present
	if serverConfig, ok := cf.Servers[baseURL]; ok {
		if serverConfig.Cookie != "" {
			result.Cookie = serverConfig.Cookie
		}
		if serverConfig.PollIntervalSeconds != 0 {
			result.PollIntervalSeconds = serverConfig.PollIntervalSeconds
		}
		if len(serverConfig.Headers) > 0 {
			// Merge into a fresh map; result.Headers still aliases the
			// shared Defaults map at this point, and writing through it
			// would leak one server's headers into every other lookup.
			merged := make(map[string]string, len(result.Headers)+len(serverConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range serverConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
