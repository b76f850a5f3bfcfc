package logging

const (
	// KeyAppName represents the key for the application name.
	KeyAppName = `app`

	// KeyError represents the key for the error.
	KeyError = `err`

	// KeyTable represents the key for the table a dump targets.
	KeyTable = `table`

	// KeyCondition represents the key for the condition a dump selects with.
	KeyCondition = `condition`

	// KeyFile represents the key for a generated file.
	KeyFile = `file`

	// KeyManifest represents the key for the manifest directory.
	KeyManifest = `manifest`
)
