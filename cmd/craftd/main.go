package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/twetzel59/craftd/pkg/hub"
	"github.com/twetzel59/craftd/pkg/nick"
	"github.com/twetzel59/craftd/pkg/store"
	"github.com/twetzel59/craftd/pkg/world"
)

func main() {
	addr := flag.String("address", hub.ListenAddr, "Server address to listen on")
	dbPath := flag.String("db", "world.db", "Path to the SQLite world database")
	nicksPath := flag.String("nicks", "nicks.txt", "Path to the nickname registry file")
	flag.Parse()

	cc := zap.NewDevelopmentConfig()
	cc.DisableStacktrace = true
	zlog, err := cc.Build()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()
	log := zlog.Sugar()

	nicks, err := nick.Open(*nicksPath)
	if err != nil {
		log.Fatalf("failed to open nickname registry: %v", err)
	}

	st, err := store.Open(*dbPath, log)
	if err != nil {
		log.Fatalf("failed to open world database: %v", err)
	}
	defer st.Close()

	w := world.New()
	if err := st.Load(w); err != nil {
		log.Fatalf("failed to load world from database: %v", err)
	}

	h := hub.New(w, st, nicks, log)
	acceptor := hub.NewAcceptor(h, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return st.Run(gctx)
	})
	g.Go(func() error {
		return acceptor.Run(gctx, *addr)
	})

	log.Infow("craftd server started", "address", *addr, "db", *dbPath, "nicks", *nicksPath)

	waitErr := g.Wait()

	if err := st.Drain(); err != nil {
		log.Errorw("final drain before shutdown failed", "err", err)
	}

	if waitErr != nil {
		log.Fatalf("server stopped with error: %v", waitErr)
	}
	log.Info("server stopped")
}
