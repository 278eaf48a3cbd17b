// Package ota runs firmware updates requested over MQTT.
package ota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrInProgress = errors.New("ota already in progress")

// Updater fetches and installs an image.
type Updater interface {
	Update(ctx context.Context, runID string) error
}

type Poster interface {
	PostOTAStarted() bool
	PostOTADoneOK() bool
	PostOTADoneFail() bool
}

type Restarter interface {
	Restart()
}

const (
	DefaultRestartDelay = 500 * time.Millisecond
	DefaultTimeout      = 5 * time.Minute
)

type Controller struct {
	updater   Updater
	poster    Poster
	restarter Restarter
	log       zerolog.Logger

	RestartDelay time.Duration
	Timeout      time.Duration

	mu      sync.Mutex
	running bool
	lastID  string
}

func NewController(u Updater, p Poster, r Restarter, log zerolog.Logger) *Controller {
	return &Controller{
		updater:      u,
		poster:       p,
		restarter:    r,
		log:          log,
		RestartDelay: DefaultRestartDelay,
		Timeout:      DefaultTimeout,
	}
}

func (c *Controller) begin() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return "", ErrInProgress
	}
	c.running = true
	c.lastID = uuid.NewString()
	return c.lastID, nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Start runs one update and blocks until it completes.
func (c *Controller) Start(ctx context.Context) error {
	id, err := c.begin()
	if err != nil {
		return err
	}
	return c.run(ctx, id)
}

// Trigger starts an update in the background.
func (c *Controller) Trigger() error {
	id, err := c.begin()
	if err != nil {
		return err
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		_ = c.run(ctx, id)
	}()
	return nil
}

func (c *Controller) run(ctx context.Context, id string) error {
	defer c.end()
	log := c.log.With().Str("run_id", id).Logger()
	log.Info().Msg("ota started")
	c.poster.PostOTAStarted()

	if err := c.updater.Update(ctx, id); err != nil {
		log.Error().Err(err).Msg("ota failed")
		c.poster.PostOTADoneFail()
		return fmt.Errorf("ota %s: %w", id, err)
	}
	log.Info().Dur("restart_in", c.RestartDelay).Msg("ota done, restarting")
	c.poster.PostOTADoneOK()
	if c.restarter != nil {
		time.AfterFunc(c.RestartDelay, c.restarter.Restart)
	}
	return nil
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// LastRunID is the ID of the most recent update, empty if none ran.
func (c *Controller) LastRunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastID
}
