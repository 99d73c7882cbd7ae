package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all connection parameters of a document store client.
type ClientConfig struct {
	// URL is the base address of the document store service (e.g. http://localhost:8080)
	URL string
	// Database is the default logical database of the store
	Database string
	// Credential is an optional access token sent with every request
	Credential string

	// TimeoutSecond is the per-request timeout. Zero means no timeout.
	TimeoutSecond int
	// RetryCount is how many times a request is attempted before giving up
	RetryCount int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("URL", c.URL)
	addField("Default Database", c.Database)
	addField("Credential", credentialHint(c.Credential))
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	return sb.String()
}

// credentialHint never prints the credential itself
func credentialHint(credential string) string {
	if credential == "" {
		return "(none)"
	}
	return fmt.Sprintf("(set, %d chars)", len(credential))
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the development server.
type ServerConfig struct {
	// Endpoint is the address on which the HTTP API will listen
	Endpoint string

	// Credential is an optional access token the server requires from clients.
	// Empty means no authentication.
	Credential string

	// HiLoCapacity is the default range size handed out per HiLoNext request
	// when the client does not ask for a specific amount
	HiLoCapacity uint64

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Document Server")
	addField("Endpoint", c.Endpoint)
	addField("Credential", credentialHint(c.Credential))
	addField("HiLo Capacity", strconv.FormatUint(c.HiLoCapacity, 10))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
