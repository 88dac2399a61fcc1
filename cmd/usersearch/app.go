package main

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/usersearch/internal/adapters/driven/config/env"
	"github.com/custodia-labs/usersearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/usersearch/internal/adapters/driven/identity"
	"github.com/custodia-labs/usersearch/internal/adapters/driven/matrix"
	"github.com/custodia-labs/usersearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
	"github.com/custodia-labs/usersearch/internal/core/services"
	"github.com/custodia-labs/usersearch/internal/logger"
)

// app owns the adapters shared by every command.
type app struct {
	store    *sqlite.Store
	watcher  *file.Watcher
	services cli.Services
}

func newApp() (*app, error) {
	envCfg, err := env.Load()
	if err != nil {
		return nil, err
	}

	fileStore, err := file.NewConfigStore(envCfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config := env.NewOverlayStore(fileStore, envCfg)

	store, err := sqlite.NewStore(config.GetString("storage.data_dir"))
	if err != nil {
		return nil, fmt.Errorf("opening known users: %w", err)
	}

	homeserver := matrix.NewClient(
		config.GetString("directory.base_url"),
		envCfg.AccessToken,
		matrix.WithTimeout(envCfg.RequestTimeout),
	)

	identityOpts := []identity.Option{
		identity.WithClientOptions(matrix.WithTimeout(envCfg.RequestTimeout)),
	}
	if envCfg.IdentityToken != "" {
		identityOpts = append(identityOpts, identity.WithAccessToken(envCfg.IdentityToken))
	}
	identityService := identity.NewService(config, homeserver, identityOpts...)

	a := &app{store: store}

	watcher, err := file.NewWatcher(fileStore)
	if err != nil {
		logger.Warn("config changes will not be picked up: %v", err)
	} else {
		watcher.OnChange(identityService.Reload)
		a.watcher = watcher
	}

	collaborators := services.Collaborators{
		Known:     store,
		Directory: homeserver,
		Profiles:  homeserver,
		Identity:  identityService,
	}

	a.services = cli.Services{
		Settings:   services.NewSettingsService(config),
		KnownUsers: services.NewKnownUserService(store, homeserver),
		NewUserSearch: func() (driving.UserSearch, error) {
			return newUserSearch(collaborators, config)
		},
	}
	return a, nil
}

func newUserSearch(collaborators services.Collaborators, config driven.ConfigStore) (driving.UserSearch, error) {
	c, err := services.NewCoordinator(collaborators, services.LoadSearchSettings(config), nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the watcher and the database.
func (a *app) Close() error {
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
