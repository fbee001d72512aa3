package constant

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// SchemeSeparator splits an identifier into scheme and key path.
	SchemeSeparator = "://"

	DefaultScheme       = "temp"
	DefaultSubjectTopic = "kvstream.written"

	// FileModeRegular is the mode bits reported for every stream (regular file, rwx owner).
	FileModeRegular = 0o100700
)
