package usecase

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/crossforge/xcodemcp/config"
	domainPersistence "github.com/crossforge/xcodemcp/domains/persistence"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	"github.com/crossforge/xcodemcp/infrastructure/settingstore"
)

type persistenceService struct {
	manager  *cachestore.PersistenceManager
	settings *settingstore.Store
}

func NewPersistenceService(manager *cachestore.PersistenceManager, settings *settingstore.Store) domainPersistence.IPersistenceUsecase {
	return &persistenceService{manager: manager, settings: settings}
}

func (s *persistenceService) Enable(ctx context.Context, cacheDir string) (domainPersistence.Status, error) {
	if cacheDir == "" {
		cacheDir = config.PersistenceCacheDir
	}
	if err := s.manager.Enable(cacheDir); err != nil {
		return domainPersistence.Status{}, err
	}
	s.saveSettings(ctx)
	return s.Status(ctx, false)
}

func (s *persistenceService) Disable(ctx context.Context, clearData bool) (domainPersistence.Status, error) {
	err := s.manager.Disable(clearData)
	s.saveSettings(ctx)
	if err != nil {
		// Persistence is disabled regardless; the caller still learns about
		// the failed cleanup.
		return domainPersistence.Status{}, err
	}
	return s.Status(ctx, false)
}

func (s *persistenceService) Status(ctx context.Context, includeStorageInfo bool) (domainPersistence.Status, error) {
	status := domainPersistence.Status{
		Enabled:       s.manager.IsEnabled(),
		SchemaVersion: s.manager.SchemaVersion(),
		CacheDir:      s.manager.CacheDir(),
	}
	if includeStorageInfo {
		info := s.manager.StorageInfo()
		storageInfo := &domainPersistence.StorageInfo{
			SizeBytes:      info.SizeBytes,
			HumanSize:      humanize.Bytes(uint64(info.SizeBytes)),
			FileCount:      info.FileCount,
			Writable:       info.Writable,
			LastWriteError: info.LastWriteError,
		}
		if !info.LastSaveAt.IsZero() {
			saveAt := info.LastSaveAt
			storageInfo.LastSaveAt = &saveAt
		}
		status.StorageInfo = storageInfo
	}
	return status, nil
}

func (s *persistenceService) saveSettings(ctx context.Context) {
	if s.settings == nil {
		return
	}
	current, err := s.settings.Load(ctx, settingstore.Settings{})
	if err != nil {
		logrus.WithError(err).Debug("[PERSIST] Failed to load settings before save")
	}
	current.PersistenceEnabled = s.manager.IsEnabled()
	current.PersistenceCacheDir = s.manager.CacheDir()
	if err := s.settings.Save(ctx, current); err != nil {
		logrus.WithError(err).Warn("[PERSIST] Failed to save persistence settings")
	}
}
