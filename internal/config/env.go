package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials matches any *MissingEnvError.
var ErrMissingCredentials = errors.New("required environment variables are missing")

// Environment variable names. Each credential also accepts a legacy alias.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

var legacyEnv = map[string]string{
	EnvPracticumToken: "PR_TOKEN",
	EnvTelegramToken:  "TOKEN",
	EnvTelegramChatID: "CHAT_ID",
}

// Credentials are the three secrets the bot needs. They are read once at
// startup and never logged.
type Credentials struct {
	PracticumToken string
	TelegramToken  string
	ChatID         string
}

// MissingEnvError lists every absent credential, not just the first one.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Names, ", "))
}

func (e *MissingEnvError) Is(target error) bool { return target == ErrMissingCredentials }

// LoadDotEnv loads path into the process environment if the file exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// CredentialsFromEnv reads the credentials through getenv (os.Getenv when nil).
func CredentialsFromEnv(getenv func(string) string) (Credentials, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(name string) string {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
		return strings.TrimSpace(getenv(legacyEnv[name]))
	}

	c := Credentials{
		PracticumToken: lookup(EnvPracticumToken),
		TelegramToken:  lookup(EnvTelegramToken),
		ChatID:         lookup(EnvTelegramChatID),
	}

	var missing []string
	if c.PracticumToken == "" {
		missing = append(missing, EnvPracticumToken)
	}
	if c.TelegramToken == "" {
		missing = append(missing, EnvTelegramToken)
	}
	if c.ChatID == "" {
		missing = append(missing, EnvTelegramChatID)
	}
	if len(missing) > 0 {
		return Credentials{}, &MissingEnvError{Names: missing}
	}
	return c, nil
}
