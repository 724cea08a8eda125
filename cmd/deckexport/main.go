package main

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"slidecast-go/internal/config"
	"slidecast-go/internal/deck"
	store "slidecast-go/internal/storage"
)

var (
	configPath string
	deckID     string
	inputPath  string
	outputPath string
	format     string
)

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "Render a stored deck as PDF or markdown",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the server configuration file (for storage access)",
			Aliases:     []string{"c"},
			Destination: &configPath,
			Value:       "config.yaml",
		},
		&cli.StringFlag{
			Name:        "deck",
			Usage:       "Deck id to load from the configured storage backend",
			Aliases:     []string{"d"},
			Destination: &deckID,
		},
		&cli.StringFlag{
			Name:        "input",
			Usage:       "Path to a deck JSON file (alternative to --deck)",
			Aliases:     []string{"i"},
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Output file path. Defaults to <deck-id>.<format>",
			Aliases:     []string{"o"},
			Destination: &outputPath,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "Output format: pdf or markdown",
			Aliases:     []string{"f"},
			Destination: &format,
			Value:       "pdf",
		},
	},
	Action: runExport,
}

func runExport(ctx *cli.Context) error {
	if (deckID == "") == (inputPath == "") {
		return fmt.Errorf("exactly one of --deck or --input is required")
	}
	if format != "pdf" && format != "markdown" {
		return fmt.Errorf("unsupported format %q", format)
	}

	d, err := loadDeck(ctx)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("deck is not exportable: %w", err)
	}

	out := outputPath
	if out == "" {
		ext := "pdf"
		if format == "markdown" {
			ext = "md"
		}
		out = d.ID + "." + ext
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "pdf":
		err = deck.WritePDF(d, f)
	case "markdown":
		err = deck.WriteMarkdown(d, f)
	}
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"deck": d.ID, "output": out, "slides": len(d.Slides)}).Info("deck exported")
	return nil
}

func loadDeck(ctx *cli.Context) (*deck.Deck, error) {
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		var d deck.Deck
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse deck file: %w", err)
		}
		return &d, nil
	}

	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, err
	}
	backend, _, err := store.BuildWithFallback(ctx.Context, &mgr.Config().Storage)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	return backend.GetDeck(ctx.Context, deckID)
}

func main() {
	app := &cli.App{
		Name:     "deckexport",
		Usage:    "Export slidecast decks without running the server",
		Commands: []*cli.Command{exportCommand},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
