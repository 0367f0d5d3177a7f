package main

// Exit codes
const (
	ExitSuccess     = 0   // Success
	ExitError       = 1   // General error (invalid arguments, runtime failure)
	ExitConfigError = 2   // Configuration error (missing repository, invalid config)
	ExitDataError   = 3   // Data error (malformed catalog, unusable index)
	ExitNotFound    = 4   // Requested work does not exist
	ExitRetryable   = 5   // Phase finished but some records failed transiently
	ExitInterrupted = 130 // Cancelled by signal; partial progress was saved
)
