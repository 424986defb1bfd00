package timetracking

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	credentialsSectionConstant              = "settings"
	credentialsKeyConstant                  = "api_key"
	credentialsPromptConstant               = "Enter your WakaTime API key: "
	credentialsDirectoryPermissionsConstant = 0o700
	credentialsFilePermissionsConstant      = 0o600
	credentialUnavailableMessageConstant    = "time tracking API key unavailable"
	credentialsPathMissingMessageConstant   = "credentials path not configured"
	credentialsLoadErrorTemplateConstant    = "unable to read credentials from %s: %w"
	credentialsSaveErrorTemplateConstant    = "unable to store credentials in %s: %w"
	credentialsPromptErrorTemplateConstant  = "unable to read API key: %w"
)

// ErrCredentialUnavailable indicates no API key is stored and none could be obtained.
var ErrCredentialUnavailable = errors.New(credentialUnavailableMessageConstant)

// ErrCredentialsPathNotConfigured indicates the credential store has no file path.
var ErrCredentialsPathNotConfigured = errors.New(credentialsPathMissingMessageConstant)

// CredentialProvider supplies the API key used to authenticate lookups.
type CredentialProvider interface {
	APIKey() (string, error)
}

// Prompter asks the user for a single line of input.
type Prompter interface {
	Prompt(message string) (string, error)
}

// FileCredentialStore reads the API key from an INI file and persists a prompted key on first use.
type FileCredentialStore struct {
	path     string
	prompter Prompter
}

// NewFileCredentialStore constructs a store for the INI file at path. A nil prompter disables prompting.
func NewFileCredentialStore(path string, prompter Prompter) (*FileCredentialStore, error) {
	if len(strings.TrimSpace(path)) == 0 {
		return nil, ErrCredentialsPathNotConfigured
	}
	return &FileCredentialStore{path: path, prompter: prompter}, nil
}

// APIKey returns the stored key, prompting for and saving one when the file holds none.
func (store *FileCredentialStore) APIKey() (string, error) {
	credentialsFile, loadError := store.load()
	if loadError != nil {
		return "", loadError
	}

	storedKey := strings.TrimSpace(credentialsFile.Section(credentialsSectionConstant).Key(credentialsKeyConstant).String())
	if len(storedKey) > 0 {
		return storedKey, nil
	}

	if store.prompter == nil {
		return "", ErrCredentialUnavailable
	}
	response, promptError := store.prompter.Prompt(credentialsPromptConstant)
	if promptError != nil {
		return "", fmt.Errorf(credentialsPromptErrorTemplateConstant, promptError)
	}
	promptedKey := strings.TrimSpace(response)
	if len(promptedKey) == 0 {
		return "", ErrCredentialUnavailable
	}

	credentialsFile.Section(credentialsSectionConstant).Key(credentialsKeyConstant).SetValue(promptedKey)
	if saveError := store.save(credentialsFile); saveError != nil {
		return "", saveError
	}
	return promptedKey, nil
}

func (store *FileCredentialStore) load() (*ini.File, error) {
	if _, statError := os.Stat(store.path); errors.Is(statError, fs.ErrNotExist) {
		return ini.Empty(), nil
	}
	credentialsFile, loadError := ini.Load(store.path)
	if loadError != nil {
		return nil, fmt.Errorf(credentialsLoadErrorTemplateConstant, store.path, loadError)
	}
	return credentialsFile, nil
}

func (store *FileCredentialStore) save(credentialsFile *ini.File) error {
	if directoryError := os.MkdirAll(filepath.Dir(store.path), credentialsDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(credentialsSaveErrorTemplateConstant, store.path, directoryError)
	}
	if saveError := credentialsFile.SaveTo(store.path); saveError != nil {
		return fmt.Errorf(credentialsSaveErrorTemplateConstant, store.path, saveError)
	}
	if chmodError := os.Chmod(store.path, credentialsFilePermissionsConstant); chmodError != nil {
		return fmt.Errorf(credentialsSaveErrorTemplateConstant, store.path, chmodError)
	}
	return nil
}

// StaticCredentialProvider returns a fixed API key.
type StaticCredentialProvider string

// APIKey returns the fixed key or ErrCredentialUnavailable when it is blank.
func (provider StaticCredentialProvider) APIKey() (string, error) {
	trimmedKey := strings.TrimSpace(string(provider))
	if len(trimmedKey) == 0 {
		return "", ErrCredentialUnavailable
	}
	return trimmedKey, nil
}
