package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/store"
	"github.com/cesargomez89/synqed/internal/ytdlp"
)

// MetadataService looks up what a URL points to before it is queued. Results
// are cached in the database.
type MetadataService struct {
	Repo     *store.DB
	Settings *Settings
	Tools    ToolResolver
	Logger   *logger.Logger
}

func NewMetadataService(repo *store.DB, settings *Settings, tools ToolResolver, log *logger.Logger) *MetadataService {
	if log == nil {
		log = logger.Default()
	}
	return &MetadataService{
		Repo:     repo,
		Settings: settings,
		Tools:    tools,
		Logger:   log.WithComponent("metadata"),
	}
}

// Lookup returns one entry per item; playlists yield several.
func (s *MetadataService) Lookup(ctx context.Context, rawURL string) ([]domain.Metadata, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	key := constants.MetadataCacheKey + u
	if data, err := s.Repo.GetCache(key); err == nil && data != nil {
		var cached []domain.Metadata
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	bin, err := s.Tools.Ensure(ctx, constants.ToolYtDlp, s.Settings.YtDlpVersion())
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, bin, ytdlp.MetadataArgs(u)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	entries, err := ytdlp.ParseMetadata(&stdout)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := s.Repo.SetCache(key, data, constants.DefaultCacheTTL); err != nil {
			s.Logger.Warn("Failed to cache metadata", "url", u, "error", err)
		}
	}
	return entries, nil
}
