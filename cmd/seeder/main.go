package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/simcheck"
	"github.com/poiesic/simcheck/config"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/ingest"
)

// sampleDocuments is a small reference corpus used when no -src file is given.
var sampleDocuments = []*ingest.Document{
	{
		Type:       core.SourceTypeArticle,
		Title:      "The Quiet Rise of Urban Beekeeping",
		Identifier: "https://example.com/articles/urban-beekeeping",
		Text: "Across rooftops and community gardens, city dwellers have taken up beekeeping " +
			"in numbers that would have seemed improbable a decade ago. Municipal registries in " +
			"several large cities now list thousands of managed hives, tended by hobbyists who trade " +
			"frames, queens, and advice through neighborhood associations. Researchers credit the " +
			"trend with modest but measurable gains in pollinator diversity, though they caution " +
			"that honey bees can crowd out native species when hive densities climb too high. " +
			"City councils have responded with permit schemes and minimum spacing rules, trying to " +
			"balance enthusiasm against ecology. For many keepers the harvest is almost beside the " +
			"point; the appeal lies in tending something wild in a landscape of concrete.",
	},
	{
		Type:       core.SourceTypeArticle,
		Title:      "How Tidal Lagoons Could Reshape Coastal Power",
		Identifier: "https://example.com/articles/tidal-lagoons",
		Text: "Tidal lagoon generation works by enclosing a stretch of coastal water behind a " +
			"breakwater fitted with turbines, capturing energy twice a day as the tide fills and " +
			"drains the basin. Unlike wind or solar output, the schedule is predictable years in " +
			"advance, which makes lagoons attractive to grid planners wrestling with intermittency. " +
			"The engineering is conservative, borrowing from harbor construction, but the capital " +
			"costs are formidable and environmental reviews move slowly. Proponents argue that a " +
			"first full-scale lagoon would drive costs down the way early offshore wind farms did. " +
			"Skeptics point to decades of proposals that never left the drawing board. Both sides " +
			"agree the tides themselves are not going anywhere.",
	},
	{
		Type:            core.SourceTypeYouTube,
		Title:           "Restoring a 1962 Tube Radio, Part 1",
		Identifier:      "dQw4w9WgXcQ",
		DurationSeconds: 240,
		Cues: []ingest.Cue{
			{
				StartSeconds: 0,
				Text: "Welcome back to the workshop. Today we are opening up a tube radio from " +
					"nineteen sixty two that I found at an estate sale last month for eight dollars.",
			},
			{
				StartSeconds: 45,
				Text: "First thing we always do with these old sets is check the power supply " +
					"capacitors, because after sixty years the electrolyte has almost certainly dried out.",
			},
			{
				StartSeconds: 120,
				Text: "With the chassis out of the cabinet you can see the original wax paper " +
					"capacitors, and every single one of these is going to need replacement before " +
					"we even think about applying power to the set.",
			},
		},
	},
}

var (
	srcFileName = flag.String("src", "", "YAML file of corpus documents")
	configPath  = flag.String("config", "simcheck.yaml", "path to configuration file")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

type seedCue struct {
	Start int    `yaml:"start"`
	Text  string `yaml:"text"`
}

type seedDocument struct {
	Type            string    `yaml:"type"`
	Title           string    `yaml:"title"`
	Identifier      string    `yaml:"identifier"`
	Text            string    `yaml:"text"`
	DurationSeconds int       `yaml:"duration_seconds"`
	Cues            []seedCue `yaml:"cues"`
}

// documentsFromFile loads a YAML corpus file and converts it to ingestable documents.
func documentsFromFile(filename string) ([]*ingest.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var seeds []seedDocument
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	docs := make([]*ingest.Document, 0, len(seeds))
	for i, seed := range seeds {
		sourceType, err := core.ParseSourceType(seed.Type)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		doc := &ingest.Document{
			Type:            sourceType,
			Title:           seed.Title,
			Identifier:      seed.Identifier,
			Text:            seed.Text,
			DurationSeconds: seed.DurationSeconds,
		}
		for _, cue := range seed.Cues {
			doc.Cues = append(doc.Cues, ingest.Cue{StartSeconds: cue.Start, Text: cue.Text})
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func main() {
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	svc, err := simcheck.Open(cfg)
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	if err := svc.ConnectEmbedder(); err != nil {
		panic(err)
	}

	pipeline, err := svc.NewIngestPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Determine source of corpus documents
	docs := sampleDocuments
	if srcFileName != nil && *srcFileName != "" {
		docs, err = documentsFromFile(*srcFileName)
		if err != nil {
			panic(err)
		}
	}

	ingested, err := pipeline.IngestAll(ctx, docs)
	if err != nil {
		panic(err)
	}

	if err := svc.PersistIndexes(); err != nil {
		panic(err)
	}

	slog.Info("corpus seeded", "documents", ingested, "of", len(docs))
}
