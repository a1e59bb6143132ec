package config

const (
	defaultDataDir    = "~/.local/share/hirepay/data"
	defaultStorageDir = "~/.local/share/hirepay/documents"
	defaultLogDir     = "~/.local/share/hirepay/logs"
	defaultAPIBind    = "127.0.0.1:7319"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultMaxUploadMiB = 10
)

func defaultAllowedContentTypes() []string {
	return []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StorageDir: defaultStorageDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Uploads: Uploads{
			MaxSizeMiB:          defaultMaxUploadMiB,
			AllowedContentTypes: defaultAllowedContentTypes(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
