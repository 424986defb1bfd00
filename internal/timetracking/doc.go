// Package timetracking looks up the editor time recorded for a project during
// a reporting window.
//
// Client talks to the WakaTime summaries API. Credentials come from a
// CredentialProvider; FileCredentialStore reads the api_key from an INI file
// and asks a Prompter for it on first use. LazyLookup defers client
// construction until a lookup is actually requested.
package timetracking
