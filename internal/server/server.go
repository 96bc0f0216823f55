// Package server wires the pieces into the embeddable fixture: it
// validates the requested models, loads them, runs the HTTP listener on a
// background goroutine, and hands the caller a ready, addressable server.
// Construction is all-or-nothing; a caller never sees a half-initialized
// instance.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fakellm/internal/alias"
	"fakellm/internal/engine"
	"fakellm/internal/httpapi"
	"fakellm/internal/modelset"
	"fakellm/internal/startup"
)

// PlaceholderAPIKey is the credential handed to clients. The fixture does
// not authenticate; the key only satisfies SDKs that require one.
const PlaceholderAPIKey = "fake-key"

// DefaultStartupTimeout bounds the wait for the listener to come up. Model
// loading happens before the listener starts, so the bind itself is fast;
// the generous bound only guards against a wedged host.
const DefaultStartupTimeout = 5 * time.Minute

// DefaultModel is the model the standalone daemon serves when none is
// configured. Library callers must always name their models.
const DefaultModel = "gemma-3-270m"

// Options configures a server instance.
type Options struct {
	// Models are names or hub repository references to load. At least one
	// is required.
	Models []string
	// Aliases are extra alias -> target mappings layered over the
	// built-in table for this instance only.
	Aliases map[string]string
	// Host to bind; defaults to 127.0.0.1.
	Host string
	// Port to bind; 0 picks an ephemeral port.
	Port int
	// Engine overrides the inference engine (tests inject fakes here).
	// Defaults to the llama.cpp engine with the default hub cache.
	Engine engine.Engine
	// CacheDir overrides the hub download cache when Engine is nil.
	CacheDir string
	// StartupTimeout bounds the readiness wait; defaults to
	// DefaultStartupTimeout.
	StartupTimeout time.Duration
	// Logger receives structured logs; nil disables logging.
	Logger *zerolog.Logger
}

// ClientArgs is what an OpenAI SDK needs to talk to the instance.
type ClientArgs struct {
	BaseURL string
	APIKey  string
}

// Server is a running fixture instance.
type Server struct {
	log   zerolog.Logger
	coord *startup.Coordinator
	set   *modelset.Set

	host    string
	port    int
	httpSrv *http.Server
	served  chan struct{}

	shutdownOnce sync.Once
	shutdownErr  error
}

// New constructs and starts a server. The steps run in a fixed order:
// validate the requested list, build the alias overlay, load every model
// (the slow part), then bind the listener on a background goroutine and
// wait for it to publish readiness. Any failure tears everything down and
// returns an error.
func New(ctx context.Context, opts Options) (*Server, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	host := opts.Host
	if host == "" {
		host = "127.0.0.1"
	}
	timeout := opts.StartupTimeout
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}
	base := alias.NewRegistry()
	requested, err := modelset.ParseRequested(base, opts.Models)
	if err != nil {
		return nil, err
	}

	reg, err := base.Extend(opts.Aliases)
	if err != nil {
		return nil, err
	}
	if err := validateAliasTargets(reg, opts.Aliases, requested); err != nil {
		return nil, err
	}

	eng := opts.Engine
	if eng == nil {
		eng = engine.NewLlamaEngine(engine.NewHub(opts.CacheDir, engine.WithHubLogger(log)))
	}
	set, err := modelset.Build(ctx, eng, requested)
	if err != nil {
		return nil, err
	}

	mux := httpapi.NewMux(httpapi.NewRouter(reg, set), log)
	coord := startup.NewCoordinator()
	served := make(chan struct{})

	// The background goroutine owns the listener for its entire lifetime;
	// the foreground only ever talks to the coordinator.
	go func() {
		defer close(served)
		coord.Starting()
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(opts.Port)))
		if err != nil {
			_ = coord.Fail(err)
			return
		}
		srv := &http.Server{Handler: mux}
		port := ln.Addr().(*net.TCPAddr).Port
		if err := coord.Publish(port, srv); err != nil {
			// A waiter already gave up; nobody will use this listener.
			_ = ln.Close()
			return
		}
		log.Info().Str("host", host).Int("port", port).Int("models", set.Len()).Msg("fakellm listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("serve loop ended")
		}
	}()

	port, httpSrv, err := coord.WaitUntilReady(timeout)
	if err != nil {
		// Late publishes after a timeout still get torn down.
		go func() {
			if _, srv, werr := coord.WaitUntilReady(time.Hour); werr == nil {
				_ = srv.Close()
			}
		}()
		_ = set.Close()
		return nil, err
	}

	return &Server{
		log:     log,
		coord:   coord,
		set:     set,
		host:    host,
		port:    port,
		httpSrv: httpSrv,
		served:  served,
	}, nil
}

// validateAliasTargets enforces that every extension resolves into the
// built-in canonical value set or a requested model's canonical form.
func validateAliasTargets(reg *alias.Registry, extensions map[string]string, requested []modelset.Requested) error {
	if len(extensions) == 0 {
		return nil
	}
	requestedSet := make(map[string]bool, len(requested))
	for _, r := range requested {
		requestedSet[r.Canonical] = true
	}
	for a := range extensions {
		canonical, err := reg.Resolve(a)
		if err != nil {
			return err
		}
		if requestedSet[canonical] {
			continue
		}
		if _, ok := alias.SpecForRepo(canonical); ok {
			continue
		}
		return alias.ErrInvalidAlias(
			"alias " + strconv.Quote(a) + " targets " + strconv.Quote(canonical) +
				", which is neither a built-in model nor a requested one")
	}
	return nil
}

// Port returns the bound listener port.
func (s *Server) Port() int { return s.port }

// BaseURL returns the OpenAI-compatible endpoint root.
func (s *Server) BaseURL() string {
	return "http://" + net.JoinHostPort(s.host, strconv.Itoa(s.port)) + "/v1"
}

// OpenAIClientArgs returns connection arguments for an OpenAI API client.
func (s *Server) OpenAIClientArgs() ClientArgs {
	return ClientArgs{BaseURL: s.BaseURL(), APIKey: PlaceholderAPIKey}
}

// Models lists the canonical identifiers this instance serves.
func (s *Server) Models() []string { return s.set.Canonicals() }

// StartupSnapshot exposes the coordinator state for diagnostics.
func (s *Server) StartupSnapshot() startup.Snapshot { return s.coord.Snapshot() }

// Shutdown stops the listener, waits for in-flight requests to finish
// (bounded by ctx), and releases the loaded models. Model release is
// unconditional even when the listener fails to stop cleanly. Calling
// Shutdown again is a no-op returning the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		err := s.httpSrv.Shutdown(ctx)
		select {
		case <-s.served:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
		if cerr := s.set.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("shutdown finished with error")
		}
		s.shutdownErr = err
	})
	return s.shutdownErr
}
