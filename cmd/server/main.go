// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package main is the entry point for the Vigil show-control runtime.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults -> file -> environment (Koanf v2)
//  2. Logging: zerolog at info level with console output (fixed values,
//     not taken from the loaded settings)
//  3. Show document: the event/scene/status/group graph and item index,
//     loaded from disk and, if a backup store is configured, reconciled
//     against the last crash-recovery snapshot
//  4. Event Queue, DMX/Media clients and their optional process
//     supervisors, the Event Handler orchestrating all of it
//  5. System Interface: the single front door for façade requests
//  6. Façade: the thin HTTP/WebSocket control surface
//  7. Audit log (optional, requires -tags=nats): a durable record of
//     every executed action
//
// All long-running components are registered on a three-layer suture
// supervision tree (see internal/supervisor) and run until SIGINT/SIGTERM.
//
// # Build Tags
//
//	go build -tags nats ./cmd/server   # enable the durable audit log
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/vigil/internal/audit"
	"github.com/tomtom215/vigil/internal/backup"
	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/dmx"
	"github.com/tomtom215/vigil/internal/eventhandler"
	"github.com/tomtom215/vigil/internal/facade"
	"github.com/tomtom215/vigil/internal/itemindex"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/media"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/queue"
	"github.com/tomtom215/vigil/internal/showconfig"
	"github.com/tomtom215/vigil/internal/supervisor"
	"github.com/tomtom215/vigil/internal/systeminterface"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: "info", Format: "console"})
	log := logging.Logger().With().Str("instance", cfg.Instance).Logger()
	log.Info().Str("show_config", cfg.ShowConfigPath).Msg("starting vigil")

	showCfg := showconfig.New(log)
	index := itemindex.New(log)
	persister := config.FilePersister{}

	if snap, err := persister.Load(cfg.ShowConfigPath); err != nil {
		log.Warn().Err(err).Str("path", cfg.ShowConfigPath).Msg("no show document loaded, starting empty")
	} else {
		loadShowDocument(showCfg, index, snap)
	}

	if warnings := showCfg.Verify(index.Exists); len(warnings) > 0 {
		for _, w := range warnings {
			log.Warn().Uint32("item_id", uint32(w.ItemID)).Msg(w.Message)
		}
	}

	var db *badger.DB
	if cfg.Backup.Dir != "" {
		opts := badger.DefaultOptions(cfg.Backup.Dir)
		opts.Logger = nil
		db, err = badger.Open(opts)
		if err != nil {
			log.Error().Err(err).Msg("failed to open backup store, continuing without crash recovery")
		} else {
			defer db.Close()
		}
	}
	backupMgr := backup.New(log, db, cfg.Instance)

	var h *eventhandler.Handler
	q := queue.New(log, func(id model.ItemID) { h.FireDelayedEvent(id) }, func(entries []queue.QueuedEvent) {
		backupMgr.BackupEvents(entries)
	})

	dmxClient, dmxSvc := buildDMXClient(log, cfg.DMX)
	mediaClient, mediaSvc := buildMediaClient(log, cfg.Media)

	if snap, ok := backupMgr.Reload(); ok {
		reconcileFromBackup(context.Background(), showCfg, q, dmxClient, mediaClient, log, snap)
		log.Info().Msg("reconciled runtime state from crash-recovery snapshot")
	}

	opts := []eventhandler.Option{
		eventhandler.WithBackup(backupMgr),
		eventhandler.WithPersister(persister),
		eventhandler.WithRPCTimeout(cfg.RPCTimeout),
	}
	if dmxClient != nil {
		opts = append(opts, eventhandler.WithDMXClients(dmxClient))
	}
	if mediaClient != nil {
		opts = append(opts, eventhandler.WithMediaClients(mediaClient))
	}

	auditPublisher, auditFn := buildAudit(log, cfg.Audit, cfg.Backup.Dir)
	if auditFn != nil {
		opts = append(opts, eventhandler.WithAudit(auditFn))
	}

	h = eventhandler.New(log, showCfg, index, q, opts...)
	si := systeminterface.New(log, h, showCfg, index)
	h.SetNotify(si.NotifyFunc())
	h.SetBroadcast(si.BroadcastFunc())

	hub := facade.NewHub(log)
	updates, unsubscribe := si.Subscribe()
	defer unsubscribe()

	facadeServer := facade.NewServer(log, si, hub)
	facadeSvc := facade.NewService(log, cfg.Facade.ListenAddr, facadeServer, hub, updates, 10*time.Second)

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build supervisor tree")
	}

	tree.AddDataService(q)
	if dmxSvc != nil {
		tree.AddMessagingService(dmxSvc)
	}
	if mediaSvc != nil {
		tree.AddMessagingService(mediaSvc)
	}
	tree.AddMessagingService(si)
	tree.AddAPIService(facadeSvc)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	log.Info().Str("listen_addr", cfg.Facade.ListenAddr).Msg("supervisor tree starting")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		log.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		log.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
	}

	if auditPublisher != nil {
		if err := auditPublisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close audit publisher")
		}
	}

	if err := persister.Save(cfg.ShowConfigPath, snapshotOf(showCfg, index)); err != nil {
		log.Error().Err(err).Msg("failed to save show document on shutdown")
	}

	log.Info().Msg("vigil stopped gracefully")
}

func loadShowDocument(cfg *showconfig.Config, index *itemindex.Index, snap eventhandler.ConfigSnapshot) {
	index.SetAll(snap.Items)
	for _, ev := range snap.Events {
		cfg.UpsertEvent(ev)
	}
	for _, sc := range snap.Scenes {
		cfg.UpsertScene(sc)
	}
	for _, st := range snap.Statuses {
		cfg.UpsertStatus(st)
	}
	for _, g := range snap.Groups {
		cfg.UpsertGroup(g)
	}
	if snap.DefaultScene != 0 {
		cfg.ChooseScene(snap.DefaultScene)
	}
}

// snapshotOf rebuilds a ConfigSnapshot for persistence, sharing the walk
// with Handler.SaveConfig so the two never drift apart.
func snapshotOf(cfg *showconfig.Config, index *itemindex.Index) eventhandler.ConfigSnapshot {
	return eventhandler.ExportSnapshot(cfg, index)
}

// reconcileFromBackup restores scene/status/queue state from a
// crash-recovery snapshot, and, when the respective client is present,
// pushes the DMX universe and media playlist back out to the
// controllers so live output matches the reconciled runtime state.
func reconcileFromBackup(ctx context.Context, cfg *showconfig.Config, q *queue.Queue, dmxClient *dmx.Client, mediaClient *media.Client, log zerolog.Logger, snap backup.Snapshot) {
	if snap.CurrentScene != 0 {
		cfg.RestoreCurrentScene(snap.CurrentScene)
	}
	for statusID, state := range snap.Statuses {
		cfg.RestoreStatusState(statusID, state)
	}
	q.Restore(snap.Queue)

	if dmxClient != nil {
		restoreCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := dmxClient.RestoreUniverse(restoreCtx, snap.DMX); err != nil {
			log.Warn().Err(err).Msg("failed to restore dmx universe from crash-recovery snapshot")
		}
		cancel()
	}
	if mediaClient != nil && len(snap.Media) > 0 {
		restoreCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := mediaClient.RestorePlaylist(restoreCtx, snap.Media); err != nil {
			log.Warn().Err(err).Msg("failed to restore media playlist from crash-recovery snapshot")
		}
		cancel()
	}
}

func buildDMXClient(log zerolog.Logger, cfg config.DMXConfig) (*dmx.Client, suture.Service) {
	if cfg.URL == "" {
		return nil, nil
	}
	client := dmx.NewClient(cfg.URL, nil, dmx.DefaultBreakerConfig("dmx"))
	if !cfg.Supervise {
		return client, nil
	}
	return client, dmx.NewSupervisor(log, cfg.SpawnCmd, cfg.SpawnArgs, client)
}

func buildMediaClient(log zerolog.Logger, cfg config.MediaConfig) (*media.Client, suture.Service) {
	if cfg.URL == "" {
		return nil, nil
	}
	windows := make([]media.WindowDefinition, 0, len(cfg.Windows))
	for _, w := range cfg.Windows {
		windows = append(windows, media.WindowDefinition{ID: w.ID, Width: w.Width, Height: w.Height})
	}
	channels := make([]media.ChannelDefinition, 0, len(cfg.Channels))
	for _, c := range cfg.Channels {
		channels = append(channels, media.ChannelDefinition{Channel: c.Channel, Window: c.Window})
	}
	client := media.NewClient(cfg.URL, nil, media.DefaultBreakerConfig("media"), windows, channels)
	if !cfg.Supervise {
		return client, nil
	}
	return client, media.NewSupervisor(log, cfg.SpawnCmd, cfg.SpawnArgs, client, cfg.URL+"/close")
}

// buildAudit wires the optional durable audit log. Built without
// -tags=nats, NewPublisher/NewEmbeddedServer always fail and this
// function logs once and returns a nil hook, leaving the Event Handler's
// audit sink unset.
func buildAudit(log zerolog.Logger, cfg config.AuditConfig, backupDir string) (*audit.Publisher, func(eventhandler.AuditRecord)) {
	if !cfg.Enabled {
		return nil, nil
	}

	natsURL := cfg.NATSURL
	if natsURL == "" {
		storeDir := filepath.Join(backupDir, "audit")
		if backupDir == "" {
			storeDir = "vigil-audit"
		}
		embedded, err := audit.NewEmbeddedServer(audit.DefaultEmbeddedServerConfig(storeDir))
		if err != nil {
			log.Warn().Err(err).Msg("audit log disabled: embedded nats server unavailable (build with -tags=nats)")
			return nil, nil
		}
		natsURL = embedded.ClientURL()
	}

	pub, err := audit.NewPublisher(audit.DefaultPublisherConfig(natsURL))
	if err != nil {
		log.Warn().Err(err).Msg("audit log disabled: publisher unavailable")
		return nil, nil
	}

	return pub, func(r eventhandler.AuditRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		record := audit.ProcessedAction{
			EventID:   r.EventID,
			Action:    r.Action,
			Succeeded: r.Succeeded,
			Detail:    r.Detail,
			Timestamp: time.Now(),
		}
		if err := pub.Publish(ctx, record); err != nil {
			log.Warn().Err(err).Str("action", r.Action).Msg("failed to publish audit record")
		}
	}
}
