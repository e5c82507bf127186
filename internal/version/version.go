package version

// Version is the current version of the sync tool.
// Can be overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "1.4.0"

// Name is the application name.
const Name = "mysql-to-bq"

// Description is a short description of the application.
const Description = "MySQL to BigQuery table synchronization"
