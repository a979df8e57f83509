package storage

import "yaomexi/internal/pkg/config"

// ConfigFromEnv reads the STORAGE_* variables both entry points share.
func ConfigFromEnv() Config {
	return Config{
		Provider:  config.Env("STORAGE_PROVIDER", "localfs"),
		LocalRoot: config.Env("STORAGE_LOCAL_ROOT", "/data"),

		GDriveClientID:     config.Env("GDRIVE_CLIENT_ID", ""),
		GDriveClientSecret: config.Env("GDRIVE_CLIENT_SECRET", ""),
		GDriveRefreshToken: config.Env("GDRIVE_REFRESH_TOKEN", ""),
		GDriveFolderID:     config.Env("GDRIVE_FOLDER_ID", ""),
	}
}
