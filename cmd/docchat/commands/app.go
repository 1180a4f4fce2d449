// ABOUTME: Shared wiring for commands: config, logger, providers, sessions and the record store
// ABOUTME: Also resolves the corpus a command was asked to index
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harper/docchat/internal/auth"
	"github.com/harper/docchat/internal/config"
	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/extract"
	"github.com/harper/docchat/internal/llm"
	"github.com/harper/docchat/internal/models"
	"github.com/harper/docchat/internal/storage/sqlite"
)

// cliSessionID names the single session a CLI process drives
const cliSessionID = "cli"

type app struct {
	cfg    *config.Config
	logger *log.Logger
}

// loadApp reads .env, the config file and the environment
func loadApp(logOut io.Writer) (*app, error) {
	// .env is optional
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: newLogger(logOut)}, nil
}

// newLogger builds a leveled logger honoring --verbose and --quiet
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "docchat"})
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

func (a *app) client() (*llm.OpenAIClient, error) {
	if err := a.cfg.RequireOpenAIKey(); err != nil {
		return nil, err
	}
	return llm.NewOpenAIClientWithConfig(a.cfg.ClientConfig())
}

// newSession creates a session backed by the OpenAI client
func (a *app) newSession(id string) (*core.Session, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	opts := append(a.cfg.SessionOptions(), core.WithSessionID(id), core.WithLogger(a.logger))
	return core.NewSession(client, client, opts...)
}

func (a *app) recordsPath() string {
	if a.cfg.RecordsDB != "" {
		return a.cfg.RecordsDB
	}
	return sqlite.DefaultDBPath()
}

func (a *app) openRecords() (*sqlite.DB, error) {
	db, err := sqlite.Open(a.recordsPath())
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	return db, nil
}

// gate returns the auth gate for this configuration
func (a *app) gate() auth.Gate {
	return auth.FromToken(a.cfg.AccessToken)
}

// authorize logs the CLI session in when an access token is configured
func (a *app) authorize(token string) error {
	gate := a.gate()
	if tg, ok := gate.(*auth.TokenGate); ok {
		if err := tg.Login(cliSessionID, token); err != nil {
			return fmt.Errorf("%w: pass the access token with --token", err)
		}
	}
	return auth.Require(gate, cliSessionID)
}

// corpusSource describes what a command should index
type corpusSource struct {
	files   []string
	text    string
	record  string
	chapter string
}

func (s corpusSource) empty() bool {
	return len(s.files) == 0 && strings.TrimSpace(s.text) == "" && s.record == ""
}

// loadCorpus extracts and normalizes every source into one text blob
func (a *app) loadCorpus(ctx context.Context, src corpusSource) (string, error) {
	docs, err := extract.Files(ctx, src.files)
	if err != nil {
		return "", err
	}
	if src.text != "" {
		docs = append(docs, models.Document{Name: "text", Text: src.text})
	}

	if src.record != "" {
		board, class, subject, err := parseRecordKey(src.record)
		if err != nil {
			return "", err
		}
		db, err := a.openRecords()
		if err != nil {
			return "", err
		}
		defer func() { _ = db.Close() }()

		rec, err := db.Records().GetRecord(ctx, board, class, subject)
		if err != nil {
			return "", err
		}
		text, err := core.NormalizeRecord(*rec, src.chapter)
		if err != nil {
			return "", err
		}
		docs = append(docs, models.Document{Name: rec.Key(), Text: text})
	}

	return core.NormalizeDocuments(docs), nil
}
