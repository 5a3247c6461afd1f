package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/peterkuimelis/shardwars/internal/app"
	"github.com/peterkuimelis/shardwars/internal/config"
	"github.com/peterkuimelis/shardwars/internal/log"
	swnet "github.com/peterkuimelis/shardwars/internal/net"
	"github.com/peterkuimelis/shardwars/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  shardwars-cli play [--config FILE] [--mode solo|tutorial|campaign] [--node ID] [--deck N] [--opp-deck N]")
	fmt.Println("  shardwars-cli host [--config FILE] [--port P] [--log]")
	fmt.Println("  shardwars-cli join [--addr ADDR] [--mode solo|tutorial|campaign] [--node ID] [--deck NAME] [--opp-deck NAME]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play in this terminal against the computer")
	fmt.Println("  host    Start a match server and wait for a player to join")
	fmt.Println("  join    Connect to a match server and play")
}

type startFlags struct {
	mode    *string
	node    *string
	deck    *string
	oppDeck *string
}

func addStartFlags(fs *flag.FlagSet, deckUsage string) startFlags {
	return startFlags{
		mode:    fs.String("mode", string(session.ModeSolo), "match mode: solo, tutorial or campaign"),
		node:    fs.String("node", "act1_node1", "campaign node id (campaign mode)"),
		deck:    fs.String("deck", "", "your deck "+deckUsage+" (empty = sample deck)"),
		oppDeck: fs.String("opp-deck", "", "opponent deck "+deckUsage+" (empty = same as yours)"),
	}
}

// message builds the opening intent. With env, decks are given by number in
// the local decks file; without it they are names the host resolves.
func (f startFlags) message(env *app.Env) (swnet.ClientMessage, error) {
	msg := swnet.ClientMessage{Type: swnet.MsgStart, Mode: *f.mode}
	if session.Mode(*f.mode) == session.ModeCampaign {
		msg.Node = *f.node
	}
	if *f.deck == "" {
		return msg, nil
	}
	msg.Deck, msg.OpponentDeck = *f.deck, *f.oppDeck
	if msg.OpponentDeck == "" {
		msg.OpponentDeck = msg.Deck
	}
	if env == nil {
		return msg, nil
	}
	for _, name := range []*string{&msg.Deck, &msg.OpponentDeck} {
		n, err := strconv.Atoi(*name)
		if err != nil {
			return msg, fmt.Errorf("deck must be a number: %q", *name)
		}
		if *name, err = env.DeckName(n); err != nil {
			return msg, err
		}
	}
	return msg, nil
}

func openEnv(path string) (*app.Env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return app.Open(cfg)
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cfgPath := fs.String("config", "config.toml", "path to config file")
	start := addStartFlags(fs, "number from the decks file")
	fs.Parse(args)

	env, err := openEnv(*cfgPath)
	if err != nil {
		return err
	}
	defer env.Close()

	msg, err := start.message(env)
	if err != nil {
		return err
	}
	opts := env.Session
	opts.Autopilot = true
	srv := &swnet.Server{
		Session:   session.New(opts),
		Autopilot: true,
	}
	return srv.PlayLocal(ctx, msg)
}

func runHost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	cfgPath := fs.String("config", "config.toml", "path to config file")
	port := fs.Int("port", 0, "TCP port to listen on (default from config)")
	verbose := fs.Bool("log", true, "print the match log on this terminal")
	fs.Parse(args)

	env, err := openEnv(*cfgPath)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.Config
	if *port == 0 {
		*port = cfg.Server.TCPPort
	}
	opts := env.Session
	if *verbose {
		opts.Logger = log.NewTextLogger(os.Stdout)
	}
	srv := &swnet.Server{
		Session:       session.New(opts),
		Port:          strconv.Itoa(*port),
		Autopilot:     opts.Autopilot,
		IntentsPerSec: cfg.Server.IntentsPerSec,
		IntentBurst:   cfg.Server.IntentBurst,
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:7777", "server address to connect to")
	start := addStartFlags(fs, "name on the host")
	fs.Parse(args)

	msg, err := start.message(nil)
	if err != nil {
		return err
	}
	return swnet.Connect(ctx, *addr, msg)
}
